// Package bolt stores explorations in a single bbolt file.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	bbolt "go.etcd.io/bbolt"
)

var bucketExplorations = []byte("explorations")

// Store implements ports.ExplorationStore and ports.ExplorationWriter.
type Store struct {
	db *bbolt.DB
}

var (
	_ ports.ExplorationStore  = (*Store)(nil)
	_ ports.ExplorationWriter = (*Store)(nil)
)

// Open opens (or creates) the database file.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketExplorations)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Exploration, error) {
	var exp domain.Exploration
	err := s.db.View(func(tx *bbolt.Tx) error {
		bs := tx.Bucket(bucketExplorations).Get([]byte(id))
		if bs == nil {
			return &domain.NotFoundError{Kind: "exploration", ID: id}
		}
		return json.Unmarshal(bs, &exp)
	})
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketExplorations).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			ids = append(ids, string(k))
		}
		return nil
	})
	return ids, err
}

func (s *Store) Put(ctx context.Context, exp *domain.Exploration) error {
	if exp.ID == "" {
		return fmt.Errorf("exploration without id")
	}
	js, err := json.Marshal(exp)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketExplorations).Put([]byte(exp.ID), js)
	})
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketExplorations).Delete([]byte(id))
	})
}
