package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/voicebridge/internal/cache"
	"github.com/nikhilbhutani/voicebridge/internal/pipeline"
	"github.com/nikhilbhutani/voicebridge/internal/speech"
)

// memKV mimics cache.Cache with JSON round trips.
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(b, dest)
}

func (m *memKV) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = b
	m.ttls[key] = ttl
	return nil
}

func TestJobLifecycle(t *testing.T) {
	kv := newMemKV()
	store := NewStore(kv, 10*time.Minute)
	ctx := context.Background()

	job, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.Status != StatusPending {
		t.Errorf("status = %s", job.Status)
	}
	if kv.ttls["job:"+job.ID.String()] != 10*time.Minute {
		t.Errorf("ttl = %v", kv.ttls["job:"+job.ID.String()])
	}

	if err := store.MarkRunning(ctx, job.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := store.Get(ctx, job.ID)
	if got.Status != StatusRunning {
		t.Errorf("status = %s, want running", got.Status)
	}

	res := &pipeline.Result{Transcript: "hello", Translation: "こんにちは", Audio: []byte{1, 2, 3}}
	if err := store.Complete(ctx, job.ID, res); err != nil {
		t.Fatal(err)
	}
	got, err = store.Get(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusDone || got.Result == nil || got.Result.Translation != "こんにちは" {
		t.Errorf("job = %+v", got)
	}
	if string(got.Result.Audio) != "\x01\x02\x03" {
		t.Errorf("audio = %v", got.Result.Audio)
	}
}

func TestJobFailRecordsStage(t *testing.T) {
	store := NewStore(newMemKV(), 0)
	ctx := context.Background()
	job, _ := store.Create(ctx)

	err := &pipeline.StageError{Stage: "translate", Err: &speech.ParseError{Op: "translate", Field: "choices.0.message.content"}}
	if err := store.Fail(ctx, job.ID, err); err != nil {
		t.Fatal(err)
	}
	got, _ := store.Get(ctx, job.ID)
	if got.Status != StatusFailed || got.Stage != "translate" || got.Error == "" {
		t.Errorf("job = %+v", got)
	}
}

func TestJobNotFound(t *testing.T) {
	store := NewStore(newMemKV(), time.Minute)
	_, err := store.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := store.MarkRunning(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkRunning err = %v, want ErrNotFound", err)
	}
}
