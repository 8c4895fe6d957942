package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/lattice/pkg/adapters/file"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, file.NewSessionStore(t.TempDir()))
}

func TestSessionStore_Overwrite(t *testing.T) {
	dir := t.TempDir()
	store := file.NewSessionStore(dir)
	ctx := context.Background()

	p := &domain.Playthrough{ID: "s", ExplorationID: "exp", StateID: "A", History: domain.History{"A"}}
	require.NoError(t, store.Save(ctx, "s", p))
	p.StateID = "B"
	p.History = p.History.Append("B")
	require.NoError(t, store.Save(ctx, "s", p))

	got, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "B", got.StateID)
	assert.Equal(t, domain.History{"A", "B"}, got.History)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestSessionStore_RejectsUnsafeIDs(t *testing.T) {
	store := file.NewSessionStore(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "../escape", "a/b", `a\b`} {
		err := store.Save(ctx, id, &domain.Playthrough{})
		assert.ErrorIs(t, err, file.ErrInvalidSessionID, id)
	}
}

func TestSessionStore_ListMissingDir(t *testing.T) {
	store := file.NewSessionStore(filepath.Join(t.TempDir(), "absent"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSessionStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))

	_, err := file.NewSessionStore(dir).Load(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}
