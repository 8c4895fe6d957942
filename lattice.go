package lattice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/lattice/internal/runtime"
	"github.com/aretw0/lattice/pkg/adapters/loam"
	"github.com/aretw0/lattice/pkg/analytics"
	"github.com/aretw0/lattice/pkg/content"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/widgets"
)

// Engine is the high-level entry point for the Lattice library.
// It wires a store, the built-in widgets and analytics into the runtime and
// exposes the request-scoped engine API.
type Engine struct {
	runtime *runtime.Engine
	store   ports.ExplorationStore
	async   *analytics.Async
	logger  *slog.Logger
}

var _ ports.Engine = (*Engine)(nil)

type options struct {
	store       ports.ExplorationStore
	dir         string
	widgets     ports.WidgetRegistry
	emitters    []ports.AnalyticsEmitter
	evaluator   ports.ExpressionEvaluator
	format      content.Format
	asyncBuffer int
	logger      *slog.Logger
}

// Option configures New.
type Option func(*options)

// WithStore serves explorations from store.
func WithStore(store ports.ExplorationStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithDir reads explorations from a directory of Markdown, YAML or JSON documents.
func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithWidgets replaces the built-in widget registry.
func WithWidgets(r ports.WidgetRegistry) Option {
	return func(o *options) {
		o.widgets = r
	}
}

// WithEmitter adds an analytics sink. Several sinks all receive every event.
func WithEmitter(e ports.AnalyticsEmitter) Option {
	return func(o *options) {
		o.emitters = append(o.emitters, e)
	}
}

// WithEvaluator replaces the goja expression evaluator.
func WithEvaluator(ev ports.ExpressionEvaluator) Option {
	return func(o *options) {
		o.evaluator = ev
	}
}

// WithContentFormat selects HTML (default) or Markdown output.
func WithContentFormat(f content.Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithAsyncBuffer delivers analytics from a background goroutine with a
// queue of n events. Zero delivers synchronously.
func WithAsyncBuffer(n int) Option {
	return func(o *options) {
		o.asyncBuffer = n
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New builds an engine. Exactly one of WithStore or WithDir is required.
func New(opts ...Option) (*Engine, error) {
	o := &options{format: content.FormatHTML}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	switch {
	case o.store != nil && o.dir != "":
		return nil, errors.New("WithStore and WithDir are mutually exclusive")
	case o.store == nil && o.dir == "":
		return nil, errors.New("an exploration store is required: use WithStore or WithDir")
	case o.dir != "":
		store, err := loam.Open(o.dir)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", o.dir, err)
		}
		o.store = store
	}
	if o.widgets == nil {
		o.widgets = widgets.Default()
	}

	eng := &Engine{store: o.store, logger: o.logger}

	var emitter ports.AnalyticsEmitter = analytics.Nop{}
	switch len(o.emitters) {
	case 0:
	case 1:
		emitter = o.emitters[0]
	default:
		emitter = analytics.Multi(o.emitters)
	}
	if o.asyncBuffer > 0 && len(o.emitters) > 0 {
		eng.async = analytics.NewAsync(emitter,
			analytics.WithBuffer(o.asyncBuffer),
			analytics.WithLogger(o.logger),
		)
		emitter = eng.async
	}

	rtOpts := []runtime.EngineOption{
		runtime.WithEmitter(emitter),
		runtime.WithRenderer(content.NewRenderer(content.WithFormat(o.format))),
		runtime.WithLogger(o.logger),
	}
	if o.evaluator != nil {
		rtOpts = append(rtOpts, runtime.WithEvaluator(o.evaluator))
	}
	eng.runtime = runtime.NewEngine(o.store, o.widgets, rtOpts...)
	return eng, nil
}

// Start delivers the initial state of an exploration.
func (e *Engine) Start(ctx context.Context, explorationID string) (*domain.InitialView, error) {
	return e.runtime.Start(ctx, explorationID)
}

// Submit resolves one answer into the next state.
func (e *Engine) Submit(ctx context.Context, req domain.Request) (*domain.Outcome, error) {
	return e.runtime.Submit(ctx, req)
}

// RecordFeedback forwards reader feedback about a state to analytics.
func (e *Engine) RecordFeedback(ctx context.Context, explorationID, stateID, feedback string, history domain.History) error {
	return e.runtime.RecordFeedback(ctx, explorationID, stateID, feedback, history)
}

// ListExplorations returns the public explorations.
func (e *Engine) ListExplorations(ctx context.Context) ([]domain.ExplorationSummary, error) {
	return e.runtime.ListExplorations(ctx)
}

// InitParams returns the parameter context an exploration starts with.
func (e *Engine) InitParams(ctx context.Context, explorationID string) (domain.Params, error) {
	return e.runtime.InitParams(ctx, explorationID)
}

// Exploration loads an exploration definition.
func (e *Engine) Exploration(ctx context.Context, id string) (*domain.Exploration, error) {
	return e.runtime.Exploration(ctx, id)
}

// Store returns the exploration store the engine reads from.
func (e *Engine) Store() ports.ExplorationStore {
	return e.store
}

// Close drains pending analytics events. It is a no-op for synchronous delivery.
func (e *Engine) Close(ctx context.Context) error {
	if e.async == nil {
		return nil
	}
	return e.async.Close(ctx)
}
