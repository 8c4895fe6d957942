package tests

import (
	"context"
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ExplorationStoreContractTest verifies that an adapter complies with ports.ExplorationStore.
// The store must already contain exactly the given explorations.
func ExplorationStoreContractTest(t *testing.T, store ports.ExplorationStore, seeded []*domain.Exploration) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get_Success", func(t *testing.T) {
		for _, want := range seeded {
			got, err := store.Get(ctx, want.ID)
			require.NoError(t, err, "get %s", want.ID)
			assert.Equal(t, want.ID, got.ID)
			assert.Equal(t, want.Title, got.Title)
			assert.Equal(t, want.InitStateID, got.InitStateID)
			require.Len(t, got.States, len(want.States))
			for i := range want.States {
				assert.Equal(t, want.States[i].ID, got.States[i].ID)
			}
		}
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-exploration")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, ids, len(seeded))
		for _, exp := range seeded {
			assert.Contains(t, ids, exp.ID)
		}
	})

	t.Run("Get_ReturnsIsolatedCopy", func(t *testing.T) {
		if len(seeded) == 0 {
			t.Skip("nothing seeded")
		}
		first, err := store.Get(ctx, seeded[0].ID)
		require.NoError(t, err)
		first.Title = "mutated"
		if len(first.States) > 0 {
			first.States[0].ID = "mutated"
		}

		again, err := store.Get(ctx, seeded[0].ID)
		require.NoError(t, err)
		assert.Equal(t, seeded[0].Title, again.Title)
		if len(again.States) > 0 {
			assert.Equal(t, seeded[0].States[0].ID, again.States[0].ID)
		}
	})
}
