package ports

import (
	"context"

	"github.com/aretw0/lattice/pkg/domain"
)

// Engine is the request-scoped interaction engine consumed by transports (HTTP, MCP, websocket, CLI).
// It holds no per-session state: everything a session needs travels in the request and outcome.
type Engine interface {
	// Start delivers the initial state of an exploration.
	Start(ctx context.Context, explorationID string) (*domain.InitialView, error)

	// Submit resolves one answer into the next state.
	Submit(ctx context.Context, req domain.Request) (*domain.Outcome, error)

	// RecordFeedback forwards free-text reader feedback to analytics.
	RecordFeedback(ctx context.Context, explorationID, stateID, feedback string, history domain.History) error

	// ListExplorations returns the public explorations.
	ListExplorations(ctx context.Context) ([]domain.ExplorationSummary, error)
}
