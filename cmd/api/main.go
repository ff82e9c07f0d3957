package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/voicebridge/internal/api"
	"github.com/nikhilbhutani/voicebridge/internal/cache"
	"github.com/nikhilbhutani/voicebridge/internal/config"
	"github.com/nikhilbhutani/voicebridge/internal/jobs"
	"github.com/nikhilbhutani/voicebridge/internal/queue"
	"github.com/nikhilbhutani/voicebridge/internal/speech"
	"github.com/nikhilbhutani/voicebridge/internal/translator"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	client := speech.New(cfg.Speech, speech.WithLogger(logger))
	tr, err := translator.New(cfg.Translator, client)
	if err != nil {
		slog.Error("failed to create translator", "error", err)
		os.Exit(1)
	}

	deps := api.Deps{Speech: client, Translator: tr}

	// Redis backs async jobs (optional)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, async jobs disabled", "error", err)
	} else {
		kv := cache.NewCache(rdb, "voicebridge:")
		qc := queue.NewClient(cfg.Redis)
		defer qc.Close()

		deps.Redis = kv
		deps.Jobs = jobs.NewStore(kv, cfg.Queue.JobTTL)
		deps.Queue = qc
	}

	router := api.NewRouter(cfg, deps)
	handler := router.Setup()

	// Upstream calls may take up to the speech read+write budget.
	writeTimeout := cfg.Speech.Timeouts.Connect + cfg.Speech.Timeouts.Write + cfg.Speech.Timeouts.Read + 10*time.Second
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr(), "translator", tr.Name())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
