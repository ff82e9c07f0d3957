package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nikhilbhutani/voicebridge/internal/speech"
)

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	Speech     speech.Config
	Translator TranslatorConfig
	Queue      QueueConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	APIKey         string // optional static key for the gateway itself
	RateLimitRPM   int
	MaxUploadBytes int64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type TranslatorConfig struct {
	Backend        string // "openai" or "anthropic"
	AnthropicKey   string
	AnthropicModel string
	Languages      *speech.LanguagePair
}

type QueueConfig struct {
	Concurrency int
	JobTTL      time.Duration
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	rpm, err := getEnvInt("RATE_LIMIT_RPM", 120)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPM: %w", err)
	}

	maxUpload, err := getEnvInt("MAX_UPLOAD_BYTES", 25<<20)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	concurrency, err := getEnvInt("WORKER_CONCURRENCY", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_CONCURRENCY: %w", err)
	}

	jobTTL, err := getEnvDuration("JOB_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_TTL: %w", err)
	}

	defaults := speech.DefaultTimeouts()
	connectTimeout, err := getEnvDuration("SPEECH_CONNECT_TIMEOUT", defaults.Connect)
	if err != nil {
		return nil, fmt.Errorf("invalid SPEECH_CONNECT_TIMEOUT: %w", err)
	}
	readTimeout, err := getEnvDuration("SPEECH_READ_TIMEOUT", defaults.Read)
	if err != nil {
		return nil, fmt.Errorf("invalid SPEECH_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := getEnvDuration("SPEECH_WRITE_TIMEOUT", defaults.Write)
	if err != nil {
		return nil, fmt.Errorf("invalid SPEECH_WRITE_TIMEOUT: %w", err)
	}

	var languages *speech.LanguagePair
	if target := getEnv("TRANSLATE_TARGET_LANG", ""); target != "" {
		languages = &speech.LanguagePair{
			Source: getEnv("TRANSLATE_SOURCE_LANG", ""),
			Target: target,
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			APIKey:         getEnv("GATEWAY_API_KEY", ""),
			RateLimitRPM:   rpm,
			MaxUploadBytes: int64(maxUpload),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Speech: speech.Config{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			BaseURL:         getEnv("OPENAI_BASE_URL", speech.DefaultBaseURL),
			TranscribeModel: getEnv("SPEECH_TRANSCRIBE_MODEL", speech.DefaultTranscribeModel),
			TranslateModel:  getEnv("SPEECH_TRANSLATE_MODEL", speech.DefaultTranslateModel),
			SpeechModel:     getEnv("SPEECH_TTS_MODEL", speech.DefaultSpeechModel),
			Voice:           getEnv("SPEECH_TTS_VOICE", speech.DefaultVoice),
			Timeouts: speech.Timeouts{
				Connect: connectTimeout,
				Read:    readTimeout,
				Write:   writeTimeout,
			},
			Languages: languages,
		},
		Translator: TranslatorConfig{
			Backend:        getEnv("TRANSLATOR_BACKEND", "openai"),
			AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel: getEnv("ANTHROPIC_MODEL", ""),
			Languages:      languages,
		},
		Queue: QueueConfig{
			Concurrency: concurrency,
			JobTTL:      jobTTL,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Speech.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.Translator.Backend == "anthropic" && c.Translator.AnthropicKey == "" {
		missing = append(missing, "ANTHROPIC_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	switch c.Translator.Backend {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("invalid TRANSLATOR_BACKEND %q (want openai or anthropic)", c.Translator.Backend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
