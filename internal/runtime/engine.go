package runtime

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/lattice/pkg/content"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/expr"
	"github.com/aretw0/lattice/pkg/ports"
)

// Engine resolves exploration transitions. It keeps no per-session state:
// everything a session needs arrives with the request and leaves with the outcome.
type Engine struct {
	store     ports.ExplorationStore
	widgets   ports.WidgetRegistry
	emitter   ports.AnalyticsEmitter
	evaluator ports.ExpressionEvaluator
	renderer  *content.Renderer
	scope     string
	logger    *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithEmitter sets the analytics emitter. Defaults to a no-op.
func WithEmitter(e ports.AnalyticsEmitter) EngineOption {
	return func(eng *Engine) {
		if e != nil {
			eng.emitter = e
		}
	}
}

// WithEvaluator sets the expression evaluator used by expr predicates and parameter changes.
func WithEvaluator(ev ports.ExpressionEvaluator) EngineOption {
	return func(eng *Engine) {
		if ev != nil {
			eng.evaluator = ev
		}
	}
}

// WithRenderer sets the content renderer.
func WithRenderer(r *content.Renderer) EngineOption {
	return func(eng *Engine) {
		if r != nil {
			eng.renderer = r
		}
	}
}

// WithScope sets the widget registry scope. Defaults to domain.InteractiveScope.
func WithScope(scope string) EngineOption {
	return func(eng *Engine) {
		eng.scope = scope
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(eng *Engine) {
		if logger != nil {
			eng.logger = logger
		}
	}
}

// NewEngine creates an engine over the given store and widget registry.
func NewEngine(store ports.ExplorationStore, widgets ports.WidgetRegistry, opts ...EngineOption) *Engine {
	eng := &Engine{
		store:     store,
		widgets:   widgets,
		emitter:   nopEmitter{},
		evaluator: expr.New(),
		renderer:  content.NewRenderer(),
		scope:     domain.InteractiveScope,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// Exploration loads an exploration from the store.
func (e *Engine) Exploration(ctx context.Context, id string) (*domain.Exploration, error) {
	return e.store.Get(ctx, id)
}
