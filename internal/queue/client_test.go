package queue

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{ID: "t1", Type: task.Type()}, nil
}

func TestEnqueuePipelineRun(t *testing.T) {
	fe := &fakeEnqueuer{}
	c := NewClientWith(fe)

	p := PipelineRunPayload{JobID: "j1", Audio: []byte("abc"), Synthesize: true}
	if err := c.EnqueuePipelineRun(p); err != nil {
		t.Fatalf("EnqueuePipelineRun: %v", err)
	}
	if len(fe.tasks) != 1 || fe.tasks[0].Type() != TypePipelineRun {
		t.Fatalf("tasks = %+v", fe.tasks)
	}
	var got PipelineRunPayload
	if err := json.Unmarshal(fe.tasks[0].Payload(), &got); err != nil {
		t.Fatal(err)
	}
	if got.JobID != "j1" || string(got.Audio) != "abc" || !got.Synthesize {
		t.Errorf("payload = %+v", got)
	}

	maxRetry := -1
	for _, o := range fe.opts[0] {
		if o.Type() == asynq.MaxRetryOpt {
			maxRetry = o.Value().(int)
		}
	}
	if maxRetry != 0 {
		t.Errorf("max retry = %d, want 0", maxRetry)
	}
}

func TestEnqueueError(t *testing.T) {
	c := NewClientWith(&fakeEnqueuer{err: errors.New("redis down")})
	if err := c.EnqueuePipelineRun(PipelineRunPayload{JobID: "j"}); err == nil {
		t.Error("expected error")
	}
}
