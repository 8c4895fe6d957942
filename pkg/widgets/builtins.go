package widgets

import (
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/registry"
)

// Builtins returns the built-in interactive widgets.
func Builtins() []ports.Widget {
	return []ports.Widget{
		TextInput{},
		NumericInput{},
		MultipleChoiceInput{},
		Continue{},
	}
}

// Register adds the built-ins to r under the interactive scope.
func Register(r *registry.Registry) {
	for _, w := range Builtins() {
		r.Register(domain.InteractiveScope, w)
	}
}

// Default returns a fresh registry holding the built-ins.
func Default() *registry.Registry {
	r := registry.New()
	Register(r)
	return r
}
