package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer renders markdown for the terminal player.
type Renderer func(string) (string, error)

// NewRenderer returns a glamour renderer that adapts to the terminal
// background. When glamour cannot be set up it falls back to plain text.
func NewRenderer(width int) Renderer {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return Plain
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Plain returns markdown untouched, for pipes and tests.
func Plain(markdown string) (string, error) {
	return strings.TrimSpace(markdown) + "\n", nil
}
