package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/voicebridge/internal/pipeline"
	"github.com/nikhilbhutani/voicebridge/internal/queue"
	"github.com/nikhilbhutani/voicebridge/internal/speech"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, audio speech.AudioPayload, opts pipeline.Options) (*pipeline.Result, error)
}

// JobTracker records job progress.
type JobTracker interface {
	MarkRunning(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID, res *pipeline.Result) error
	Fail(ctx context.Context, id uuid.UUID, err error) error
}

type PipelineWorker struct {
	runner Runner
	jobs   JobTracker
}

func NewPipelineWorker(runner Runner, jobs JobTracker) *PipelineWorker {
	return &PipelineWorker{runner: runner, jobs: jobs}
}

func (w *PipelineWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.PipelineRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("parse job ID: %w: %w", err, asynq.SkipRetry)
	}

	if err := w.jobs.MarkRunning(ctx, jobID); err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}

	slog.Info("running pipeline", "job_id", jobID, "audio_bytes", len(payload.Audio))

	opts := pipeline.Options{
		Synthesize: payload.Synthesize,
		Voice:      payload.Voice,
	}
	if payload.Target != "" {
		opts.Languages = &speech.LanguagePair{Source: payload.Source, Target: payload.Target}
	}

	res, runErr := w.runner.Run(ctx, speech.AudioPayload{
		Data:      payload.Audio,
		Filename:  payload.Filename,
		MediaType: payload.MediaType,
	}, opts)
	if runErr != nil {
		if err := w.jobs.Fail(ctx, jobID, runErr); err != nil {
			slog.Error("failed to record job failure", "job_id", jobID, "error", err)
		}
		// The failure is recorded on the job; no retry policy applies.
		return fmt.Errorf("pipeline job %s: %w: %w", jobID, runErr, asynq.SkipRetry)
	}

	if err := w.jobs.Complete(ctx, jobID, res); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}

	slog.Info("pipeline job done", "job_id", jobID, "summary", res.Describe())
	return nil
}
