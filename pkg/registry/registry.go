// Package registry maps (scope, kind) pairs to widget implementations.
package registry

import (
	"sort"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

type key struct {
	scope string
	kind  string
}

// Registry manages the available widgets. It is injected into the engine;
// there is no package-level instance.
type Registry struct {
	mu      sync.RWMutex
	widgets map[key]ports.Widget
}

var _ ports.WidgetRegistry = (*Registry)(nil)

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		widgets: make(map[key]ports.Widget),
	}
}

// Register adds a widget under scope, keyed by its Kind.
// If a widget with the same kind exists in that scope, it is overwritten.
func (r *Registry) Register(scope string, w ports.Widget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.widgets[key{scope, w.Kind()}] = w
}

// Get looks up a widget. Unknown kinds yield *domain.UnknownWidgetError.
func (r *Registry) Get(scope, kind string) (ports.Widget, error) {
	r.mu.RLock()
	w, ok := r.widgets[key{scope, kind}]
	r.mu.RUnlock()

	if !ok {
		return nil, &domain.UnknownWidgetError{Scope: scope, Kind: kind}
	}
	return w, nil
}

// Kinds lists the registered kinds of a scope, sorted.
func (r *Registry) Kinds(scope string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var kinds []string
	for k := range r.widgets {
		if k.scope == scope {
			kinds = append(kinds, k.kind)
		}
	}
	sort.Strings(kinds)
	return kinds
}
