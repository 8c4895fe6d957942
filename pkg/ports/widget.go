package ports

import "github.com/aretw0/lattice/pkg/domain"

// Widget renders and summarizes one interactive widget kind.
// Implementations must be pure: identical inputs give identical outputs.
type Widget interface {
	// Kind is the widget identifier referenced by Prompt.WidgetID.
	Kind() string

	// RenderPrompt builds the interactive prompt markup.
	RenderPrompt(args map[string]any, params domain.Params) (string, error)

	// RenderResponse echoes the participant's answer. The second value is an
	// auxiliary fragment for embedding and may be empty.
	RenderResponse(args map[string]any, params domain.Params, answer any) (string, string, error)

	// SummarizeAnswer returns a stable, loggable representation of the answer.
	SummarizeAnswer(args map[string]any, params domain.Params, answer any) (string, error)
}

// WidgetRegistry resolves widgets by (scope, kind).
type WidgetRegistry interface {
	// Get returns domain.UnknownWidgetError for unregistered kinds.
	Get(scope, kind string) (Widget, error)
}
