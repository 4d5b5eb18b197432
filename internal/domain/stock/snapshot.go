package stock

import (
	"github.com/bylucie/storefront/internal/domain/cart"
)

// Snapshot is a point-in-time, advisory read of sellable units per product:
// stock not already claimed by pending orders. No lock is held on it; it is
// only ever a time-of-check value.
type Snapshot map[string]int

// Available reports the snapshot entry for a product. The second return is
// false when the oracle did not recognize the id, which callers must treat as
// "unknown, assume available".
func (s Snapshot) Available(productID string) (int, bool) {
	if s == nil {
		return 0, false
	}
	n, ok := s[productID]
	return n, ok
}

// Conflict pairs a cart line with the availability that fell short of it.
type Conflict struct {
	Line      cart.Line
	Available int
}

// FindConflicts compares requested quantities against the snapshot and
// returns the conflicting lines in cart order. A line conflicts iff the
// snapshot has an entry for it and that entry is below the requested
// quantity; lines absent from the snapshot are never flagged, so a failed or
// partial lookup cannot block a shopper.
func FindConflicts(lines cart.Lines, snap Snapshot) []Conflict {
	var conflicts []Conflict
	for _, l := range lines {
		available, known := snap.Available(l.ProductID)
		if !known {
			continue
		}
		if available < l.Quantity {
			conflicts = append(conflicts, Conflict{Line: l, Available: available})
		}
	}
	return conflicts
}
