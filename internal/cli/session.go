package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/lattice/pkg/ports"
)

// entryCandidates are tried in order when play is given no exploration id.
var entryCandidates = []string{"start", "main", "index"}

// DefaultExploration picks the exploration to play when none was named:
// the only one in the store, a conventional entry name, or the one named
// after the directory.
func DefaultExploration(ctx context.Context, store ports.ExplorationStore, dir string) (string, error) {
	ids, err := store.List(ctx)
	if err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("no explorations found")
	case 1:
		return ids[0], nil
	}

	candidates := entryCandidates
	if dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			candidates = append(slices.Clone(entryCandidates), filepath.Base(abs))
		}
	}
	for _, c := range candidates {
		if slices.Contains(ids, c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("several explorations found, pick one of: %s", strings.Join(ids, ", "))
}
