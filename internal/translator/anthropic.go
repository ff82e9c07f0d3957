package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nikhilbhutani/voicebridge/internal/speech"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicConfig holds configuration for the Anthropic translator.
type AnthropicConfig struct {
	APIKey     string
	BaseURL    string // default: SDK default
	Model      string // default: "claude-3-5-haiku-latest"
	MaxTokens  int64  // default: 1024
	Languages  *speech.LanguagePair
	HTTPClient *http.Client
}

// Anthropic translates through the Messages API using the same
// instruction template as the chat-completion backend.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	languages *speech.LanguagePair
}

// NewAnthropic creates an Anthropic translator. SDK retries are disabled.
func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	if cfg.Model == "" {
		cfg.Model = defaultAnthropicModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		languages: cfg.Languages,
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Translate(ctx context.Context, req speech.TranslationRequest) (*speech.TranslationResult, error) {
	const op = "translate"
	if strings.TrimSpace(req.Text) == "" {
		return nil, &speech.InvalidInputError{Op: op, Reason: "no text to translate"}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(speech.BuildPrompt(req, a.languages))),
		},
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &speech.APIError{
				Op:         op,
				StatusCode: apiErr.StatusCode,
				Status:     fmt.Sprintf("%d %s", apiErr.StatusCode, http.StatusText(apiErr.StatusCode)),
				Message:    apiErr.Error(),
			}
		}
		return nil, &speech.ConnectionError{Op: op, Err: err}
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, &speech.ParseError{Op: op, Field: "content.text"}
	}
	return &speech.TranslationResult{Text: sb.String()}, nil
}
