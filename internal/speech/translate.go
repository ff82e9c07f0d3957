package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	openai "github.com/sashabaranov/go-openai"
)

// BidirectionalInstruction is the fixed English<->Japanese policy: translate
// English into Japanese and Japanese into English, replying with the
// translation only. The input text is appended to it verbatim.
const BidirectionalInstruction = "これが英語の場合は日本語に、日本語の場合は英語に翻訳してくださいレスポンスは翻訳した言葉のみでお願いします。: "

// LanguagePair fixes the translation direction explicitly.
type LanguagePair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Instruction renders the directional prompt prefix for the pair.
func (p LanguagePair) Instruction() string {
	if p.Source == "" {
		return fmt.Sprintf("Translate the following text into %s. Respond with only the translated text.: ", p.Target)
	}
	return fmt.Sprintf("Translate the following text from %s into %s. Respond with only the translated text.: ", p.Source, p.Target)
}

// TranslationRequest is the text to translate. Languages overrides the
// client-wide direction; when both are nil the bidirectional
// instruction applies.
type TranslationRequest struct {
	Text      string        `json:"text"`
	Languages *LanguagePair `json:"languages,omitempty"`
}

// TranslationResult holds the content of the first completion choice.
type TranslationResult struct {
	Text string `json:"text"`
}

// Prompt returns the exact user message content sent for req.
func (c *Client) Prompt(req TranslationRequest) string {
	return BuildPrompt(req, c.cfg.Languages)
}

// BuildPrompt concatenates the instruction for req with its text.
func BuildPrompt(req TranslationRequest, fallback *LanguagePair) string {
	pair := req.Languages
	if pair == nil {
		pair = fallback
	}
	if pair == nil || pair.Target == "" {
		return BidirectionalInstruction + req.Text
	}
	return pair.Instruction() + req.Text
}

// Translate sends a single-turn chat completion and returns
// choices[0].message.content.
func (c *Client) Translate(ctx context.Context, req TranslationRequest) (*TranslationResult, error) {
	const op = "translate"
	if strings.TrimSpace(req.Text) == "" {
		return nil, &InvalidInputError{Op: op, Reason: "no text to translate"}
	}

	payload := openai.ChatCompletionRequest{
		Model: c.cfg.TranslateModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: c.Prompt(req)},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", op, err)
	}

	resp, err := c.transport.Post(ctx, op, pathChat, "application/json; charset=utf-8", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	respBody := resp.Body

	const field = "choices.0.message.content"
	if !gjson.ValidBytes(respBody) {
		return nil, &ParseError{Op: op, Field: field, Err: errors.New("malformed JSON")}
	}
	content := gjson.GetBytes(respBody, field)
	if content.Type != gjson.String {
		return nil, &ParseError{Op: op, Field: field}
	}
	return &TranslationResult{Text: content.Str}, nil
}
