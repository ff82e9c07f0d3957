package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultSpeechContentType is assumed when the upstream omits Content-Type.
const DefaultSpeechContentType = "audio/mpeg"

// SynthesisRequest holds the parameters for text-to-speech generation.
// Voice and Model fall back to the client defaults ("alloy", "tts-1").
type SynthesisRequest struct {
	Input string `json:"input"`
	Voice string `json:"voice,omitempty"`
	Model string `json:"model,omitempty"`
}

// SynthesisResult holds the generated audio and its content type. The audio
// is opaque; playing or persisting it is up to the caller.
type SynthesisResult struct {
	Audio       []byte
	ContentType string
}

// speechPayload is the exact wire body: {model, voice, input}.
type speechPayload struct {
	Model openai.SpeechModel `json:"model"`
	Voice openai.SpeechVoice `json:"voice"`
	Input string             `json:"input"`
}

// Synthesize converts text to audio and returns the raw response bytes.
func (c *Client) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	const op = "synthesize"
	if strings.TrimSpace(req.Input) == "" {
		return nil, &InvalidInputError{Op: op, Reason: "no text to speak"}
	}

	model := req.Model
	if model == "" {
		model = c.cfg.SpeechModel
	}
	voice := req.Voice
	if voice == "" {
		voice = c.cfg.Voice
	}

	data, err := json.Marshal(speechPayload{
		Model: openai.SpeechModel(model),
		Voice: openai.SpeechVoice(voice),
		Input: req.Input,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", op, err)
	}

	resp, err := c.transport.Post(ctx, op, pathSpeech, "application/json; charset=utf-8", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 {
		return nil, &ParseError{Op: op, Field: "audio"}
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = DefaultSpeechContentType
	}
	return &SynthesisResult{
		Audio:       resp.Body,
		ContentType: contentType,
	}, nil
}
