package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// ExplorationStore keeps explorations as JSON fields of one hash.
type ExplorationStore struct {
	client *backend.Client
	key    string
}

var (
	_ ports.ExplorationStore  = (*ExplorationStore)(nil)
	_ ports.ExplorationWriter = (*ExplorationStore)(nil)
)

// NewExplorationStore stores explorations under prefix + "explorations".
func NewExplorationStore(client *backend.Client, prefix string) *ExplorationStore {
	return &ExplorationStore{client: client, key: prefix + "explorations"}
}

func (s *ExplorationStore) Get(ctx context.Context, id string) (*domain.Exploration, error) {
	val, err := s.client.HGet(ctx, s.key, id).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, &domain.NotFoundError{Kind: "exploration", ID: id}
		}
		return nil, fmt.Errorf("failed to get exploration: %w", err)
	}
	var exp domain.Exploration
	if err := json.Unmarshal(val, &exp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal exploration %q: %w", id, err)
	}
	return &exp, nil
}

func (s *ExplorationStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.HKeys(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list explorations: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *ExplorationStore) Put(ctx context.Context, exp *domain.Exploration) error {
	if exp.ID == "" {
		return fmt.Errorf("exploration without id")
	}
	data, err := json.Marshal(exp)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, s.key, exp.ID, data).Err()
}

func (s *ExplorationStore) Delete(ctx context.Context, id string) error {
	return s.client.HDel(ctx, s.key, id).Err()
}
