package ports

import (
	"context"

	"github.com/aretw0/lattice/pkg/domain"
)

// ExplorationStore retrieves exploration definitions.
// Implementations must be safe for concurrent reads.
type ExplorationStore interface {
	// Get returns the exploration with the given id.
	// Returns an error matching domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Exploration, error)

	// List returns the ids of all stored explorations.
	List(ctx context.Context) ([]string, error)
}

// ExplorationWriter is implemented by stores that accept imports.
type ExplorationWriter interface {
	Put(ctx context.Context, exp *domain.Exploration) error
	Delete(ctx context.Context, id string) error
}

// SessionStore persists server-held playthroughs.
type SessionStore interface {
	// Save persists the playthrough for a given session ID.
	Save(ctx context.Context, sessionID string, p *domain.Playthrough) error

	// Load retrieves the playthrough for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Playthrough, error)

	// Delete removes the playthrough for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the ids of live sessions.
	List(ctx context.Context) ([]string, error)
}
