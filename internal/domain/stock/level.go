package stock

import "github.com/bylucie/storefront/internal/domain/cart"

// lowStockCutoff mirrors the storefront's "low stock" warning threshold.
const lowStockCutoff = 5

type Level string

const (
	LevelUnknown Level = "unknown"
	LevelOut     Level = "out"
	LevelLow     Level = "low"
	LevelOK      Level = "ok"
)

// LevelFor classifies a line against the snapshot for advisory display:
// LevelOut when the requested quantity cannot be met, LevelLow when it can
// but fewer than five units remain, LevelUnknown when the oracle had no
// entry for the product.
func LevelFor(line cart.Line, snap Snapshot) Level {
	available, known := snap.Available(line.ProductID)
	switch {
	case !known:
		return LevelUnknown
	case available < line.Quantity:
		return LevelOut
	case available < lowStockCutoff:
		return LevelLow
	default:
		return LevelOK
	}
}
