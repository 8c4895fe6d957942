package dsl

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/domain"
)

// End is the terminal destination.
const End = domain.EndDest

// Builder manages the exploration construction.
type Builder struct {
	exp    domain.Exploration
	order  []string
	states map[string]*StateBuilder
}

// New creates a new exploration builder.
func New(id string) *Builder {
	return &Builder{
		exp:    domain.Exploration{ID: id, IsPublic: true},
		states: make(map[string]*StateBuilder),
	}
}

// Title sets the exploration title.
func (b *Builder) Title(title string) *Builder {
	b.exp.Title = title
	return b
}

// Init sets the initial state. Defaults to the first state added.
func (b *Builder) Init(stateID string) *Builder {
	b.exp.InitStateID = stateID
	return b
}

// Private hides the exploration from listings, visible only to the given editors.
func (b *Builder) Private(editorIDs ...string) *Builder {
	b.exp.IsPublic = false
	b.exp.EditorIDs = editorIDs
	return b
}

// Param declares an exploration-level initial parameter.
func (b *Builder) Param(name string, value any) *Builder {
	b.exp.Params = append(b.exp.Params, domain.ParamChange{Name: name, Value: value})
	return b
}

// ParamExpr declares an initial parameter computed by an expression.
func (b *Builder) ParamExpr(name, expr string) *Builder {
	b.exp.Params = append(b.exp.Params, domain.ParamChange{Name: name, Expr: expr})
	return b
}

// Add creates a new state in the exploration.
// If the state already exists, it returns the existing builder.
func (b *Builder) Add(id string) *StateBuilder {
	if sb, ok := b.states[id]; ok {
		return sb
	}
	sb := &StateBuilder{
		state:   domain.State{ID: id},
		builder: b,
	}
	b.states[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Build returns the exploration, states in insertion order.
func (b *Builder) Build() (*domain.Exploration, error) {
	if len(b.order) == 0 {
		return nil, fmt.Errorf("exploration %q has no states", b.exp.ID)
	}
	exp := b.exp
	if exp.InitStateID == "" {
		exp.InitStateID = b.order[0]
	}
	exp.States = make([]domain.State, 0, len(b.order))
	for _, id := range b.order {
		exp.States = append(exp.States, b.states[id].Build())
	}
	return exp.Clone(), nil
}

// MustBuild is Build for tests and package-level fixtures.
func (b *Builder) MustBuild() *domain.Exploration {
	exp, err := b.Build()
	if err != nil {
		panic(err)
	}
	return exp
}

// Store builds the exploration into a fresh memory store.
func (b *Builder) Store() (*memory.ExplorationStore, error) {
	exp, err := b.Build()
	if err != nil {
		return nil, err
	}
	return memory.NewExplorationStore(exp)
}
