package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bylucie/storefront/internal/domain/inventory"
)

func seedInventory(t *testing.T, seed map[string]int) *InventoryRepository {
	t.Helper()
	repo := NewInventoryRepository()
	for pid, qty := range seed {
		require.NoError(t, repo.Save(context.Background(), &domain.Item{ProductID: pid, Quantity: qty}))
	}
	return repo
}

func TestAvailableSkipsUnknownProducts(t *testing.T) {
	repo := seedInventory(t, map[string]int{"p1": 4})

	out, err := repo.Available(context.Background(), []string{"p1", "ghost"})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"p1": 4}, out)
}

func TestDeductAllHappyPath(t *testing.T) {
	repo := seedInventory(t, map[string]int{"p1": 4, "p2": 2})

	shortfalls, err := repo.DeductAll(context.Background(), []domain.Demand{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p2", Quantity: 2},
	})
	require.NoError(t, err)
	assert.Empty(t, shortfalls)

	out, err := repo.Available(context.Background(), []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p1": 1, "p2": 0}, out)
}

func TestDeductAllIsAllOrNothing(t *testing.T) {
	repo := seedInventory(t, map[string]int{"p1": 4, "p2": 1})

	shortfalls, err := repo.DeductAll(context.Background(), []domain.Demand{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 5},
	})
	require.NoError(t, err)
	require.Len(t, shortfalls, 1)
	assert.Equal(t, domain.Shortfall{ProductID: "p2", Requested: 5, Available: 1}, shortfalls[0])

	// p1 was satisfiable but must stay untouched.
	out, err := repo.Available(context.Background(), []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p1": 4, "p2": 1}, out)
}

func TestDeductAllUnknownProductIsShortfall(t *testing.T) {
	repo := seedInventory(t, map[string]int{"p1": 4})

	shortfalls, err := repo.DeductAll(context.Background(), []domain.Demand{
		{ProductID: "ghost", Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, shortfalls, 1)
	assert.Equal(t, domain.Shortfall{ProductID: "ghost", Requested: 1, Available: 0}, shortfalls[0])
}

func TestDeductAllRejectsNonPositiveDemand(t *testing.T) {
	repo := seedInventory(t, map[string]int{"p1": 4})

	_, err := repo.DeductAll(context.Background(), []domain.Demand{
		{ProductID: "p1", Quantity: 0},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestDeductAllSerializesRacingCheckouts(t *testing.T) {
	repo := seedInventory(t, map[string]int{"p1": 1})

	const contenders = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shortfalls, err := repo.DeductAll(context.Background(), []domain.Demand{
				{ProductID: "p1", Quantity: 1},
			})
			assert.NoError(t, err)
			if err == nil && len(shortfalls) == 0 {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1, "the last unit is sold exactly once")

	out, err := repo.Available(context.Background(), []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, 0, out["p1"])
}

func TestSaveClonesItem(t *testing.T) {
	repo := NewInventoryRepository()

	item := &domain.Item{ProductID: "p1", Quantity: 3}
	require.NoError(t, repo.Save(context.Background(), item))
	item.Quantity = 99

	out, err := repo.Available(context.Background(), []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, 3, out["p1"])
}
