package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/voicebridge/internal/cache"
	"github.com/nikhilbhutani/voicebridge/internal/pipeline"
)

// ErrNotFound is returned when a job id is unknown or has expired.
var ErrNotFound = errors.New("job not found")

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Job is the ephemeral record of one asynchronous pipeline run.
type Job struct {
	ID        uuid.UUID        `json:"id"`
	Status    Status           `json:"status"`
	Result    *pipeline.Result `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	Stage     string           `json:"stage,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// KV is the key/value backend. *cache.Cache satisfies it.
type KV interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Store keeps job records under "job:<id>" until they expire.
type Store struct {
	kv  KV
	ttl time.Duration
	now func() time.Time
}

func NewStore(kv KV, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{kv: kv, ttl: ttl, now: time.Now}
}

func key(id uuid.UUID) string { return "job:" + id.String() }

// Create registers a new pending job.
func (s *Store) Create(ctx context.Context) (*Job, error) {
	now := s.now().UTC()
	job := &Job{
		ID:        uuid.New(),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.kv.Set(ctx, key(job.ID), job, s.ttl); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	var job Job
	if err := s.kv.Get(ctx, key(id), &job); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return &job, nil
}

func (s *Store) MarkRunning(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, id, func(j *Job) {
		j.Status = StatusRunning
	})
}

func (s *Store) Complete(ctx context.Context, id uuid.UUID, res *pipeline.Result) error {
	return s.update(ctx, id, func(j *Job) {
		j.Status = StatusDone
		j.Result = res
		j.Error = ""
	})
}

// Fail records err; a pipeline stage name is kept when present.
func (s *Store) Fail(ctx context.Context, id uuid.UUID, err error) error {
	return s.update(ctx, id, func(j *Job) {
		j.Status = StatusFailed
		j.Error = err.Error()
		var se *pipeline.StageError
		if errors.As(err, &se) {
			j.Stage = se.Stage
		}
	})
}

func (s *Store) update(ctx context.Context, id uuid.UUID, fn func(*Job)) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	fn(job)
	job.UpdatedAt = s.now().UTC()
	if err := s.kv.Set(ctx, key(id), job, s.ttl); err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	return nil
}
