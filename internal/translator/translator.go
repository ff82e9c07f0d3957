package translator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nikhilbhutani/voicebridge/internal/config"
	"github.com/nikhilbhutani/voicebridge/internal/speech"
)

// Translator turns text into its translation.
type Translator interface {
	Translate(ctx context.Context, req speech.TranslationRequest) (*speech.TranslationResult, error)
	Name() string
}

// New picks the backend named in cfg. The "openai" backend is the speech
// client itself.
func New(cfg config.TranslatorConfig, client *speech.Client) (Translator, error) {
	switch cfg.Backend {
	case "", "openai":
		return client, nil
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic translator requires ANTHROPIC_API_KEY")
		}
		slog.Info("using anthropic translator", "model", cfg.AnthropicModel)
		return NewAnthropic(AnthropicConfig{
			APIKey:    cfg.AnthropicKey,
			Model:     cfg.AnthropicModel,
			Languages: cfg.Languages,
		}), nil
	default:
		return nil, fmt.Errorf("unknown translator backend %q", cfg.Backend)
	}
}
