package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/lattice/internal/presentation/graph"
	"github.com/aretw0/lattice/pkg/dsl"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	b := dsl.New("tour")
	b.Add("intro-1").Widget("TextInput").
		When(dsl.Equals("yes"), "path/next").
		Otherwise("intro-1").
		On("skip").Otherwise(dsl.End)
	b.Add("path/next").Widget("Continue").Otherwise(dsl.End)
	b.Add("note.md")
	exp := b.MustBuild()

	out := graph.GenerateMermaid(exp, nil)

	for _, want := range []string{
		"graph TD\n",
		`intro_1(("intro-1 <br/> TextInput"))`,
		`path_next[/"path/next <br/> Continue"/]`,
		`note_md["note.md"]`,
		`intro_1 -- "Equals(yes)" --> path_next`,
		`intro_1 --> intro_1`,
		`intro_1 -- "skip: Default" --> lattice_END`,
		`path_next --> lattice_END`,
		`lattice_END((("END")))`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	b := dsl.New("x")
	b.Add("A").Widget("Continue").Otherwise("B")
	b.Add("B").Widget("Continue").Otherwise(dsl.End)

	out := graph.GenerateMermaid(b.MustBuild(), &graph.Overlay{
		Visited: []string{"A", "B", "A", "END"},
		Current: "END",
	})

	assert.Contains(t, out, "classDef visited")
	assert.Equal(t, 1, strings.Count(out, "class A visited;"))
	assert.Contains(t, out, "class lattice_END visited;")
	assert.Contains(t, out, "class lattice_END current;")
}
