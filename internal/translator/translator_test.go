package translator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nikhilbhutani/voicebridge/internal/config"
	"github.com/nikhilbhutani/voicebridge/internal/speech"
)

func TestNewSelectsBackend(t *testing.T) {
	client := speech.New(speech.Config{APIKey: "sk"})

	tr, err := New(config.TranslatorConfig{Backend: "openai"}, client)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "openai" {
		t.Errorf("name = %q", tr.Name())
	}

	tr, err = New(config.TranslatorConfig{Backend: "anthropic", AnthropicKey: "ak"}, client)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "anthropic" {
		t.Errorf("name = %q", tr.Name())
	}

	if _, err := New(config.TranslatorConfig{Backend: "anthropic"}, client); err == nil {
		t.Error("expected error without anthropic key")
	}
	if _, err := New(config.TranslatorConfig{Backend: "deepl"}, client); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func newAnthropicServer(t *testing.T, status int, reply string) (*Anthropic, *[]byte) {
	t.Helper()
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return NewAnthropic(AnthropicConfig{APIKey: "ak", BaseURL: srv.URL, HTTPClient: srv.Client()}), &body
}

func TestAnthropicTranslate(t *testing.T) {
	reply := `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",
		"content":[{"type":"text","text":"Good morning"}],"stop_reason":"end_turn",
		"usage":{"input_tokens":10,"output_tokens":3}}`
	a, body := newAnthropicServer(t, http.StatusOK, reply)

	res, err := a.Translate(context.Background(), speech.TranslationRequest{Text: "おはよう"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "Good morning" {
		t.Errorf("Text = %q", res.Text)
	}

	var sent struct {
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(*body, &sent); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if len(sent.Messages) != 1 || len(sent.Messages[0].Content) != 1 {
		t.Fatalf("messages = %+v", sent.Messages)
	}
	if got, want := sent.Messages[0].Content[0].Text, speech.BidirectionalInstruction+"おはよう"; got != want {
		t.Errorf("prompt = %q, want %q", got, want)
	}
}

func TestAnthropicErrors(t *testing.T) {
	a, _ := newAnthropicServer(t, http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	_, err := a.Translate(context.Background(), speech.TranslationRequest{Text: "hi"})
	var ae *speech.APIError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want *speech.APIError", err)
	}
	if ae.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", ae.StatusCode)
	}

	_, err = a.Translate(context.Background(), speech.TranslationRequest{Text: ""})
	var ie *speech.InvalidInputError
	if !errors.As(err, &ie) {
		t.Errorf("err = %v, want *speech.InvalidInputError", err)
	}
}

func TestAnthropicEmptyReply(t *testing.T) {
	reply := `{"id":"msg_2","type":"message","role":"assistant","model":"m","content":[],
		"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`
	a, _ := newAnthropicServer(t, http.StatusOK, reply)
	_, err := a.Translate(context.Background(), speech.TranslationRequest{Text: "hi"})
	var pe *speech.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *speech.ParseError", err)
	}
}
