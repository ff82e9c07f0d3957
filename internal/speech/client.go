package speech

import (
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL         = "https://api.openai.com"
	DefaultTranscribeModel = openai.Whisper1
	DefaultTranslateModel  = openai.GPT4oMini
	DefaultSpeechModel     = string(openai.TTSModel1)
	DefaultVoice           = string(openai.VoiceAlloy)

	pathTranscriptions = "/v1/audio/transcriptions"
	pathChat           = "/v1/chat/completions"
	pathSpeech         = "/v1/audio/speech"
)

// Config holds the settings of a Client. Zero values fall back to defaults.
type Config struct {
	APIKey          string
	BaseURL         string // default: "https://api.openai.com"
	TranscribeModel string // default: "whisper-1"
	TranslateModel  string // default: "gpt-4o-mini"
	SpeechModel     string // default: "tts-1"
	Voice           string // default: "alloy"
	Timeouts        Timeouts

	// Languages, when set, replaces the fixed bidirectional instruction
	// for every Translate call that does not carry its own pair.
	Languages *LanguagePair
}

// Client talks to the remote transcription, chat-completion and speech
// endpoints. It holds only immutable configuration and a shared Transport,
// so one Client may serve concurrent calls.
type Client struct {
	cfg       Config
	transport *Transport
	logger    *slog.Logger
}

// Option customises a Client.
type Option func(*clientOptions)

type clientOptions struct {
	doer   Doer
	logger *slog.Logger
}

// WithDoer injects the HTTP executor, typically a shared *http.Client.
func WithDoer(d Doer) Option {
	return func(o *clientOptions) { o.doer = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// New creates a Client with defaults applied.
func New(cfg Config, opts ...Option) *Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TranscribeModel == "" {
		cfg.TranscribeModel = DefaultTranscribeModel
	}
	if cfg.TranslateModel == "" {
		cfg.TranslateModel = DefaultTranslateModel
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = DefaultSpeechModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	cfg.Timeouts = cfg.Timeouts.withDefaults()
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.doer == nil {
		o.doer = NewHTTPClient(cfg.Timeouts)
	}

	return &Client{
		cfg:       cfg,
		transport: NewTransport(cfg.BaseURL, cfg.APIKey, o.doer, o.logger),
		logger:    o.logger,
	}
}

func (c *Client) Name() string { return "openai" }
