package registry_test

import (
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWidget struct{ kind, label string }

func (s stubWidget) Kind() string { return s.kind }
func (s stubWidget) RenderPrompt(map[string]any, domain.Params) (string, error) {
	return s.label, nil
}
func (s stubWidget) RenderResponse(map[string]any, domain.Params, any) (string, string, error) {
	return "", "", nil
}
func (s stubWidget) SummarizeAnswer(map[string]any, domain.Params, any) (string, error) {
	return "", nil
}

func TestRegistry(t *testing.T) {
	r := registry.New()
	r.Register(domain.InteractiveScope, stubWidget{kind: "B", label: "b1"})
	r.Register(domain.InteractiveScope, stubWidget{kind: "A", label: "a"})
	r.Register("noninteractive", stubWidget{kind: "C"})

	w, err := r.Get(domain.InteractiveScope, "A")
	require.NoError(t, err)
	assert.Equal(t, "A", w.Kind())

	r.Register(domain.InteractiveScope, stubWidget{kind: "B", label: "b2"})
	w, err = r.Get(domain.InteractiveScope, "B")
	require.NoError(t, err)
	out, _ := w.RenderPrompt(nil, nil)
	assert.Equal(t, "b2", out, "re-registering overwrites")

	_, err = r.Get(domain.InteractiveScope, "C")
	assert.ErrorIs(t, err, domain.ErrConfigurationDefect, "kinds are scoped")

	var unknown *domain.UnknownWidgetError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "C", unknown.Kind)

	assert.Equal(t, []string{"A", "B"}, r.Kinds(domain.InteractiveScope))
}
