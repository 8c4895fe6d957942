package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newPlay := func(id string) *domain.Playthrough {
		return &domain.Playthrough{
			ID:            id,
			ExplorationID: "exp",
			StateID:       "A",
			Params:        domain.Params{},
			History:       domain.History{"A"},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		p := newPlay(sessionID)
		p.BlockNumber = 2
		p.Params["name"] = "ada"
		p.Params["count"] = 42

		require.NoError(t, store.Save(ctx, sessionID, p), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "A", loaded.StateID)
		assert.Equal(t, 2, loaded.BlockNumber)
		assert.Equal(t, domain.History{"A"}, loaded.History)
		assert.Equal(t, "ada", loaded.Params["name"])
		// JSON-backed stores turn ints into float64; presence is what matters here.
		assert.NotNil(t, loaded.Params["count"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, newPlay(sessionID)))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, newPlay(id1)))
		require.NoError(t, store.Save(ctx, id2, newPlay(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
