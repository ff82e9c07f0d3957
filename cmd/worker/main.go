package main

import (
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/voicebridge/internal/cache"
	"github.com/nikhilbhutani/voicebridge/internal/config"
	"github.com/nikhilbhutani/voicebridge/internal/jobs"
	"github.com/nikhilbhutani/voicebridge/internal/pipeline"
	"github.com/nikhilbhutani/voicebridge/internal/queue"
	"github.com/nikhilbhutani/voicebridge/internal/queue/workers"
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

	client := speech.New(cfg.Speech, speech.WithLogger(logger))
	tr, err := translator.New(cfg.Translator, client)
	if err != nil {
		slog.Error("failed to create translator", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	store := jobs.NewStore(cache.NewCache(rdb, "voicebridge:"), cfg.Queue.JobTTL)

	srv := asynq.NewServer(
		queue.RedisOpt(cfg.Redis),
		asynq.Config{
			Concurrency: cfg.Queue.Concurrency,
			Logger:      newAsynqLogger(logger),
		},
	)

	registry := queue.NewHandlersRegistry()

	pipelineWorker := workers.NewPipelineWorker(pipeline.New(client, tr, client), store)
	registry.Register(queue.TypePipelineRun, pipelineWorker)

	slog.Info("starting worker", "concurrency", cfg.Queue.Concurrency, "translator", tr.Name())
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
