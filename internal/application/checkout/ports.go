package checkout

import (
	"context"

	"github.com/bylucie/storefront/internal/domain/cart"
	"github.com/bylucie/storefront/internal/domain/order"
	"github.com/bylucie/storefront/internal/domain/stock"
)

// CartStore is the narrow handle over the shopper's cart: the wizard reads
// lines, clears on success, and listens for external mutations. Quantity
// edits happen outside the pipeline, on the cart page.
type CartStore interface {
	Lines(ctx context.Context) (cart.Lines, error)
	Clear(ctx context.Context) error
	Subscribe(fn func(cart.Lines)) func()
}

// StockOracle answers advisory availability for a batch of product ids.
// Idempotent and side-effect free; safe to call at mount and before every
// step transition.
type StockOracle interface {
	Check(ctx context.Context, productIDs []string) (stock.Snapshot, error)
}

// SubmissionGateway dispatches a draft to the order persistence service and
// resolves the response into an outcome. Never returns a raw error.
type SubmissionGateway interface {
	Submit(ctx context.Context, draft order.Draft) order.Outcome
}
