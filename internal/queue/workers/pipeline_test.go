package workers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/voicebridge/internal/pipeline"
	"github.com/nikhilbhutani/voicebridge/internal/queue"
	"github.com/nikhilbhutani/voicebridge/internal/speech"
)

type fakeRunner struct {
	audio speech.AudioPayload
	opts  pipeline.Options
	err   error
}

func (f *fakeRunner) Run(_ context.Context, audio speech.AudioPayload, opts pipeline.Options) (*pipeline.Result, error) {
	f.audio, f.opts = audio, opts
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.Result{Transcript: "hi", Translation: "やあ"}, nil
}

type fakeTracker struct {
	running  []uuid.UUID
	done     map[uuid.UUID]*pipeline.Result
	failures map[uuid.UUID]error
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{done: map[uuid.UUID]*pipeline.Result{}, failures: map[uuid.UUID]error{}}
}

func (f *fakeTracker) MarkRunning(_ context.Context, id uuid.UUID) error {
	f.running = append(f.running, id)
	return nil
}

func (f *fakeTracker) Complete(_ context.Context, id uuid.UUID, res *pipeline.Result) error {
	f.done[id] = res
	return nil
}

func (f *fakeTracker) Fail(_ context.Context, id uuid.UUID, err error) error {
	f.failures[id] = err
	return nil
}

func task(t *testing.T, p queue.PipelineRunPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	return asynq.NewTask(queue.TypePipelineRun, data)
}

func TestPipelineWorkerCompletesJob(t *testing.T) {
	runner := &fakeRunner{}
	tracker := newFakeTracker()
	w := NewPipelineWorker(runner, tracker)
	id := uuid.New()

	err := w.ProcessTask(context.Background(), task(t, queue.PipelineRunPayload{
		JobID:      id.String(),
		Audio:      []byte("m4a"),
		Filename:   "clip.m4a",
		MediaType:  "audio/m4a",
		Synthesize: true,
		Voice:      "echo",
		Target:     "Korean",
	}))
	if err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	if len(tracker.running) != 1 || tracker.running[0] != id {
		t.Errorf("running = %v", tracker.running)
	}
	if res := tracker.done[id]; res == nil || res.Translation != "やあ" {
		t.Errorf("done = %+v", tracker.done)
	}
	if string(runner.audio.Data) != "m4a" || runner.audio.Filename != "clip.m4a" {
		t.Errorf("audio = %+v", runner.audio)
	}
	if !runner.opts.Synthesize || runner.opts.Voice != "echo" || runner.opts.Languages == nil || runner.opts.Languages.Target != "Korean" {
		t.Errorf("opts = %+v", runner.opts)
	}
}

func TestPipelineWorkerRecordsFailure(t *testing.T) {
	runErr := &pipeline.StageError{Stage: "transcribe", Err: &speech.ConnectionError{Op: "transcribe", Err: errors.New("timeout")}}
	tracker := newFakeTracker()
	w := NewPipelineWorker(&fakeRunner{err: runErr}, tracker)
	id := uuid.New()

	err := w.ProcessTask(context.Background(), task(t, queue.PipelineRunPayload{JobID: id.String(), Audio: []byte("x")}))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("err = %v, want SkipRetry", err)
	}
	var ce *speech.ConnectionError
	if !errors.As(tracker.failures[id], &ce) {
		t.Errorf("recorded failure = %v", tracker.failures[id])
	}
	if len(tracker.done) != 0 {
		t.Error("failed job marked done")
	}
}

func TestPipelineWorkerBadPayload(t *testing.T) {
	w := NewPipelineWorker(&fakeRunner{}, newFakeTracker())
	err := w.ProcessTask(context.Background(), asynq.NewTask(queue.TypePipelineRun, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("err = %v, want SkipRetry", err)
	}
	err = w.ProcessTask(context.Background(), task(t, queue.PipelineRunPayload{JobID: "not-a-uuid"}))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("err = %v, want SkipRetry", err)
	}
}
