package speech

import (
	"context"
	"sync"
)

// Dispatcher runs completion callbacks on the context the caller expects
// updates on. Dispatch reports whether fn was accepted; a rejected fn never
// runs.
type Dispatcher interface {
	Dispatch(fn func()) bool
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func()) bool

func (f DispatcherFunc) Dispatch(fn func()) bool { return f(fn) }

// Immediate runs callbacks on the goroutine that finished the request.
var Immediate Dispatcher = DispatcherFunc(func(fn func()) bool {
	fn()
	return true
})

// Loop serialises callbacks onto the single goroutine that calls Run,
// the way a UI thread drains its message queue. Once stopped, queued and
// later callbacks are discarded.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a Loop with the given queue capacity.
func NewLoop(size int) *Loop {
	if size <= 0 {
		size = 16
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Dispatch enqueues fn, blocking while the queue is full. It returns false
// once the loop is stopped.
func (l *Loop) Dispatch(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Done is closed when the loop stops.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Stop discards pending callbacks and rejects new ones.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-l.queue:
		default:
			return
		}
	}
}

// Run executes queued callbacks until ctx is done or Stop is called, then
// stops the loop.
func (l *Loop) Run(ctx context.Context) {
	defer l.Stop()
	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// RunOnce executes exactly one queued callback, waiting for it if needed.
// It returns false when ctx ends or the loop is stopped first.
func (l *Loop) RunOnce(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-l.done:
		return false
	case fn := <-l.queue:
		fn()
		return true
	}
}

// AsyncClient exposes the Client operations as fire-and-forget calls whose
// results are delivered through a Dispatcher.
type AsyncClient struct {
	client     *Client
	dispatcher Dispatcher
	wg         sync.WaitGroup
}

// NewAsync wraps client. A nil dispatcher means Immediate.
func NewAsync(client *Client, dispatcher Dispatcher) *AsyncClient {
	if dispatcher == nil {
		dispatcher = Immediate
	}
	return &AsyncClient{client: client, dispatcher: dispatcher}
}

// TranscribeAsync starts a transcription; done receives the result or error.
func (a *AsyncClient) TranscribeAsync(ctx context.Context, audio AudioPayload, done func(*TranscriptionResult, error)) {
	a.wg.Add(1)
	go func() {
		res, err := a.client.Transcribe(ctx, audio)
		a.deliver(func() { done(res, err) })
	}()
}

// TranslateAsync starts a translation; done receives the result or error.
func (a *AsyncClient) TranslateAsync(ctx context.Context, req TranslationRequest, done func(*TranslationResult, error)) {
	a.wg.Add(1)
	go func() {
		res, err := a.client.Translate(ctx, req)
		a.deliver(func() { done(res, err) })
	}()
}

// SynthesizeAsync starts a speech synthesis; done receives the result or error.
func (a *AsyncClient) SynthesizeAsync(ctx context.Context, req SynthesisRequest, done func(*SynthesisResult, error)) {
	a.wg.Add(1)
	go func() {
		res, err := a.client.Synthesize(ctx, req)
		a.deliver(func() { done(res, err) })
	}()
}

// Wait blocks until every started call has run its callback or had it
// discarded by a stopped dispatcher.
func (a *AsyncClient) Wait() { a.wg.Wait() }

// stopper is implemented by dispatchers that can discard accepted callbacks.
type stopper interface {
	Done() <-chan struct{}
}

func (a *AsyncClient) deliver(fn func()) {
	defer a.wg.Done()
	ran := make(chan struct{})
	if !a.dispatcher.Dispatch(func() {
		defer close(ran)
		fn()
	}) {
		return
	}
	var stopped <-chan struct{}
	if s, ok := a.dispatcher.(stopper); ok {
		stopped = s.Done()
	}
	select {
	case <-ran:
	case <-stopped:
	}
}
