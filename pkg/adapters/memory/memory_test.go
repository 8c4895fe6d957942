package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	contract "github.com/aretw0/lattice/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed() []*domain.Exploration {
	return []*domain.Exploration{
		{ID: "alpha", Title: "Alpha", InitStateID: "A", States: []domain.State{{ID: "A"}, {ID: "B"}}},
		{ID: "beta", Title: "Beta", InitStateID: "X", States: []domain.State{{ID: "X"}}},
	}
}

func TestExplorationStore_Contract(t *testing.T) {
	exps := seed()
	store, err := memory.NewExplorationStore(exps...)
	require.NoError(t, err)

	contract.ExplorationStoreContractTest(t, store, exps)
}

func TestExplorationStore_PutIsolation(t *testing.T) {
	exp := seed()[0]
	store, err := memory.NewExplorationStore(exp)
	require.NoError(t, err)

	exp.Title = "changed after put"
	got, err := store.Get(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Title)

	require.NoError(t, store.Delete(context.Background(), "alpha"))
	_, err = store.Get(context.Background(), "alpha")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = memory.NewExplorationStore(&domain.Exploration{})
	assert.Error(t, err)
}

func TestSessionStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, memory.NewSessionStore())
}
