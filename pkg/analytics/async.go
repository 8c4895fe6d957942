package analytics

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// DefaultBuffer is the queue size used when none is configured.
const DefaultBuffer = 256

// Async forwards events to an inner emitter from a single worker goroutine.
// Record* never blocks: when the buffer is full the event is dropped and a
// warning logged. Close drains the queue and stops the worker.
type Async struct {
	inner  ports.AnalyticsEmitter
	queue  chan func(context.Context)
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}

	droppedMu sync.Mutex
	dropped   int
}

// AsyncOption configures Async.
type AsyncOption func(*Async)

// WithBuffer sets the queue size.
func WithBuffer(n int) AsyncOption {
	return func(a *Async) {
		if n > 0 {
			a.queue = make(chan func(context.Context), n)
		}
	}
}

// WithLogger sets the logger used to report dropped events.
func WithLogger(logger *slog.Logger) AsyncOption {
	return func(a *Async) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAsync starts the worker.
func NewAsync(inner ports.AnalyticsEmitter, opts ...AsyncOption) *Async {
	a := &Async{
		inner:  inner,
		queue:  make(chan func(context.Context), DefaultBuffer),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for job := range a.queue {
		a.safely(job)
	}
}

func (a *Async) safely(job func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("analytics sink panicked", "panic", r)
		}
	}()
	// Request contexts are usually cancelled by the time the worker runs.
	job(context.Background())
}

func (a *Async) enqueue(kind domain.EventType, job func(context.Context)) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}
	select {
	case a.queue <- job:
	default:
		a.droppedMu.Lock()
		a.dropped++
		a.droppedMu.Unlock()
		a.logger.Warn("analytics buffer full, dropping event", "type", kind)
	}
}

func (a *Async) RecordStateHit(_ context.Context, e domain.StateHitEvent) {
	a.enqueue(e.Type, func(ctx context.Context) { a.inner.RecordStateHit(ctx, e) })
}

func (a *Async) RecordAnswerSubmitted(_ context.Context, e domain.AnswerSubmittedEvent) {
	a.enqueue(e.Type, func(ctx context.Context) { a.inner.RecordAnswerSubmitted(ctx, e) })
}

func (a *Async) RecordFeedback(_ context.Context, e domain.FeedbackEvent) {
	a.enqueue(e.Type, func(ctx context.Context) { a.inner.RecordFeedback(ctx, e) })
}

// Dropped returns how many events were discarded because the buffer was full.
func (a *Async) Dropped() int {
	a.droppedMu.Lock()
	defer a.droppedMu.Unlock()
	return a.dropped
}

// Close stops accepting events, delivers the queued ones and waits for the
// worker, or for ctx to be done.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
