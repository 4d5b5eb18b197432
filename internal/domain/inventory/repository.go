package inventory

import "context"

// Demand is one product's requested quantity within an order.
type Demand struct {
	ProductID string
	Quantity  int
}

// Shortfall reports a demand that could not be met.
type Shortfall struct {
	ProductID string
	Requested int
	Available int
}

// Repository is the single authoritative writer over the stock pool. The
// correctness of the whole checkout flow hangs on DeductAll: concurrent
// decrements for the same products must be serialized so that total units
// sold never exceed units available.
type Repository interface {
	// Available returns current sellable quantities for the recognized ids;
	// unrecognized ids are omitted.
	Available(ctx context.Context, productIDs []string) (map[string]int, error)
	// DeductAll applies every demand as one conditional atomic update: if any
	// demand exceeds availability, nothing is deducted and the shortfalls are
	// returned.
	DeductAll(ctx context.Context, demands []Demand) ([]Shortfall, error)
	// Save upserts an item, used for seeding and restock.
	Save(ctx context.Context, item *Item) error
}
