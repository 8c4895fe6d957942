// Package loam reads explorations from a directory of Markdown, YAML or JSON
// documents managed by Loam.
//
// A document's metadata (front matter for Markdown) is the exploration. The
// Markdown body, when present, is shown as an introduction before the initial
// state's own content.
package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/lattice/internal/compiler"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/loam"
)

// Store adapts a Loam repository to ports.ExplorationStore.
type Store struct {
	Repo *loam.TypedRepository[domain.Exploration]
}

var _ ports.ExplorationStore = (*Store)(nil)

// New creates a store over an existing typed repository.
func New(repo *loam.TypedRepository[domain.Exploration]) *Store {
	return &Store{Repo: repo}
}

// Open initializes a read-only, strict Loam repository at dir.
func Open(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	// Strict mode decodes every number as json.Number; normalize turns them back into Go numbers.
	repo, err := loam.Init(abs,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[domain.Exploration](repo)), nil
}

// Get loads and normalizes one exploration.
func (s *Store) Get(ctx context.Context, id string) (*domain.Exploration, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		ids, listErr := s.List(ctx)
		if listErr == nil && !slices.Contains(ids, id) {
			return nil, &domain.NotFoundError{Kind: "exploration", ID: id}
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	exp := doc.Data
	if exp.ID == "" {
		exp.ID = trimExtension(doc.ID)
	}
	normalizeExploration(&exp)
	compiler.Normalize(&exp)

	if intro := strings.TrimSpace(doc.Content); intro != "" {
		for i := range exp.States {
			if exp.States[i].ID == exp.InitStateID {
				block := domain.ContentBlock{Type: domain.BlockMarkdown, Value: intro}
				exp.States[i].Content = append([]domain.ContentBlock{block}, exp.States[i].Content...)
				break
			}
		}
	}
	return &exp, nil
}

// List returns exploration ids, rejecting two documents that claim the same id.
func (s *Store) List(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Watch reports the id of every changed document until ctx is done.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// normalizeExploration converts json.Number values left by strict decoding.
func normalizeExploration(exp *domain.Exploration) {
	normalizeParams(exp.Params)
	for i := range exp.States {
		s := &exp.States[i]
		normalizeParams(s.ParamChanges)
		if s.Widget == nil {
			continue
		}
		if s.Widget.CustomizationArgs != nil {
			s.Widget.CustomizationArgs = normalize(s.Widget.CustomizationArgs).(map[string]any)
		}
		normalizeRules(s.Widget.Rules)
		for j := range s.Widget.Handlers {
			normalizeRules(s.Widget.Handlers[j].Rules)
		}
	}
}

func normalizeParams(pcs []domain.ParamChange) {
	for i := range pcs {
		pcs[i].Value = normalize(pcs[i].Value)
	}
}

func normalizeRules(rules []domain.Rule) {
	for i := range rules {
		p := &rules[i].Predicate
		p.Value = normalize(p.Value)
		for j := range p.Values {
			p.Values[j] = normalize(p.Values[j])
		}
	}
}

func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	}
	return v
}
