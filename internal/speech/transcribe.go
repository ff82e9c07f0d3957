package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	DefaultAudioMediaType = "audio/m4a"
	DefaultAudioFilename  = "audio_record.m4a"
)

// AudioPayload is a recorded clip handed to Transcribe.
type AudioPayload struct {
	Data      []byte
	Filename  string // default: "audio_record.m4a"
	MediaType string // default: "audio/m4a"
}

// TranscriptionResult holds the recognised text, verbatim.
type TranscriptionResult struct {
	Text string `json:"text"`
}

// AudioFromFile loads an AudioPayload from disk. A missing, non-regular or
// empty file is reported as *InvalidInputError.
func AudioFromFile(path string) (AudioPayload, error) {
	const op = "transcribe"
	if path == "" {
		return AudioPayload{}, &InvalidInputError{Op: op, Reason: "no audio recorded"}
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return AudioPayload{}, &InvalidInputError{Op: op, Reason: "audio file not found: " + path}
	}
	if err != nil {
		return AudioPayload{}, fmt.Errorf("stat audio file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return AudioPayload{}, &InvalidInputError{Op: op, Reason: "audio path is not a file: " + path}
	}
	if info.Size() == 0 {
		return AudioPayload{}, &InvalidInputError{Op: op, Reason: "audio file is empty: " + path}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return AudioPayload{}, fmt.Errorf("read audio file: %w", err)
	}
	return AudioPayload{
		Data:      data,
		Filename:  filepath.Base(path),
		MediaType: DefaultAudioMediaType,
	}, nil
}

// Transcribe uploads the audio to the transcription endpoint and returns
// the `text` field of the reply.
func (c *Client) Transcribe(ctx context.Context, audio AudioPayload) (*TranscriptionResult, error) {
	const op = "transcribe"
	if len(audio.Data) == 0 {
		return nil, &InvalidInputError{Op: op, Reason: "no audio recorded"}
	}

	body, contentType, err := c.transcriptionForm(audio)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.transport.Post(ctx, op, pathTranscriptions, contentType, body)
	if err != nil {
		return nil, err
	}
	respBody := resp.Body

	if !gjson.ValidBytes(respBody) {
		return nil, &ParseError{Op: op, Field: "text", Err: errors.New("malformed JSON")}
	}
	text := gjson.GetBytes(respBody, "text")
	if text.Type != gjson.String {
		return nil, &ParseError{Op: op, Field: "text"}
	}
	return &TranscriptionResult{Text: text.Str}, nil
}

func (c *Client) transcriptionForm(audio AudioPayload) (*bytes.Buffer, string, error) {
	filename := audio.Filename
	if filename == "" {
		filename = DefaultAudioFilename
	}
	mediaType := audio.MediaType
	if mediaType == "" {
		mediaType = DefaultAudioMediaType
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	h.Set("Content-Type", mediaType)
	fw, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(audio.Data); err != nil {
		return nil, "", fmt.Errorf("copy audio data: %w", err)
	}

	if err := mw.WriteField("model", c.cfg.TranscribeModel); err != nil {
		return nil, "", fmt.Errorf("write model field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &body, mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
