package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
)

// ExplorationStore implements ports.ExplorationStore in memory.
// Safe for concurrent use; callers always receive copies.
type ExplorationStore struct {
	mu           sync.RWMutex
	explorations map[string]*domain.Exploration
}

// NewExplorationStore creates a store seeded with the given explorations.
func NewExplorationStore(exps ...*domain.Exploration) (*ExplorationStore, error) {
	s := &ExplorationStore{explorations: make(map[string]*domain.Exploration)}
	for _, e := range exps {
		if err := s.Put(context.Background(), e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Get returns a copy of the exploration.
func (s *ExplorationStore) Get(ctx context.Context, id string) (*domain.Exploration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.explorations[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "exploration", ID: id}
	}
	return e.Clone(), nil
}

// List returns all exploration ids, sorted.
func (s *ExplorationStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.explorations))
	for id := range s.explorations {
		ids = append(ids, id)
	}
	sort.Strings(ids) // Deterministic order
	return ids, nil
}

// Put stores a copy of the exploration, replacing any previous version.
func (s *ExplorationStore) Put(ctx context.Context, e *domain.Exploration) error {
	if e.ID == "" {
		return fmt.Errorf("exploration missing ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.explorations[e.ID] = e.Clone()
	return nil
}

// Delete removes an exploration. Deleting an unknown id is not an error.
func (s *ExplorationStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.explorations, id)
	return nil
}
