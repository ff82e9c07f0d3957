package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/voicebridge/internal/jobs"
	"github.com/nikhilbhutani/voicebridge/internal/queue"
)

// JobStore creates and reads job records.
type JobStore interface {
	Create(ctx context.Context) (*jobs.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*jobs.Job, error)
	Fail(ctx context.Context, id uuid.UUID, err error) error
}

// PipelineEnqueuer schedules a background pipeline run.
type PipelineEnqueuer interface {
	EnqueuePipelineRun(payload queue.PipelineRunPayload) error
}

type JobHandler struct {
	store     JobStore
	queue     PipelineEnqueuer
	maxUpload int64
}

func NewJobHandler(store JobStore, q PipelineEnqueuer, maxUpload int64) *JobHandler {
	if maxUpload <= 0 {
		maxUpload = 25 << 20
	}
	return &JobHandler{store: store, queue: q, maxUpload: maxUpload}
}

// Create accepts the same form as the pipeline endpoint and returns a job id.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	audio, err := readAudio(w, r, h.maxUpload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if len(audio.Data) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no audio recorded"})
		return
	}
	opts := pipelineOptions(r)

	job, err := h.store.Create(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	payload := queue.PipelineRunPayload{
		JobID:      job.ID.String(),
		Audio:      audio.Data,
		Filename:   audio.Filename,
		MediaType:  audio.MediaType,
		Synthesize: opts.Synthesize,
		Voice:      opts.Voice,
	}
	if opts.Languages != nil {
		payload.Source = opts.Languages.Source
		payload.Target = opts.Languages.Target
	}

	if err := h.queue.EnqueuePipelineRun(payload); err != nil {
		h.store.Fail(r.Context(), job.ID, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "failed to enqueue job"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID.String(),
		"status": string(job.Status),
	})
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid job ID"})
		return
	}

	job, err := h.store.Get(r.Context(), id)
	if errors.Is(err, jobs.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, job)
}
