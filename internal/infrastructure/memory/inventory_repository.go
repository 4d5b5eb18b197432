package memory

import (
	"context"
	"sync"

	domain "github.com/bylucie/storefront/internal/domain/inventory"
)

// InventoryRepository keeps the stock pool in memory. All reads and the
// multi-line decrement run under one lock, which is what serializes
// concurrent checkouts for the same product: of two shoppers racing for the
// last unit, exactly one deduction succeeds.
type InventoryRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Item
}

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		items: make(map[string]*domain.Item),
	}
}

func (r *InventoryRepository) Available(ctx context.Context, productIDs []string) (map[string]int, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int, len(productIDs))
	for _, id := range productIDs {
		if item, ok := r.items[id]; ok {
			out[id] = item.Quantity
		}
	}
	return out, nil
}

// DeductAll is the conditional atomic update: every demand is checked, then
// every demand is applied, inside a single critical section. Any shortfall
// aborts the whole batch with nothing deducted. Demands for unknown products
// are rejected as shortfalls with zero availability.
func (r *InventoryRepository) DeductAll(ctx context.Context, demands []domain.Demand) ([]domain.Shortfall, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	var shortfalls []domain.Shortfall
	for _, d := range demands {
		if d.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		item, ok := r.items[d.ProductID]
		if !ok {
			shortfalls = append(shortfalls, domain.Shortfall{
				ProductID: d.ProductID,
				Requested: d.Quantity,
			})
			continue
		}
		if item.Quantity < d.Quantity {
			shortfalls = append(shortfalls, domain.Shortfall{
				ProductID: d.ProductID,
				Requested: d.Quantity,
				Available: item.Quantity,
			})
		}
	}
	if len(shortfalls) > 0 {
		return shortfalls, nil
	}

	for _, d := range demands {
		if err := r.items[d.ProductID].Deduct(d.Quantity); err != nil {
			// Unreachable after the check phase; surface it rather than
			// leave the pool half-applied.
			return nil, err
		}
	}
	return nil, nil
}

func (r *InventoryRepository) Save(ctx context.Context, item *domain.Item) error {
	_ = ctx
	if item == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ProductID] = cloneItem(item)
	return nil
}

func cloneItem(item *domain.Item) *domain.Item {
	if item == nil {
		return nil
	}
	clone := *item
	return &clone
}
