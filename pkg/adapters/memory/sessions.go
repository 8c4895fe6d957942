package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
)

// SessionStore implements ports.SessionStore in memory.
// Safe for concurrent use.
type SessionStore struct {
	data map[string]*domain.Playthrough
	mu   sync.RWMutex
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		data: make(map[string]*domain.Playthrough),
	}
}

func copyPlaythrough(p *domain.Playthrough) *domain.Playthrough {
	out := *p
	out.Params = p.Params.Clone()
	out.History = slices.Clone(p.History)
	return &out
}

// Save persists a copy of the playthrough.
func (s *SessionStore) Save(ctx context.Context, sessionID string, p *domain.Playthrough) error {
	cp := copyPlaythrough(p)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = cp
	return nil
}

// Load returns a copy so callers cannot mutate the store through the pointer.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.Playthrough, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return copyPlaythrough(p), nil
}

// Delete removes the playthrough.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns active sessions.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
