package order

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bylucie/storefront/internal/domain/cart"
	"github.com/bylucie/storefront/internal/domain/checkout"
)

// DraftLine is a cart line normalized into the submission shape: prices and
// quantities coerced to plain numbers, absent variant fields made explicit
// nulls.
type DraftLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      *string `json:"size"`
	Color     *string `json:"color"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

type CustomerInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Draft is the submission payload built from validated wizard state.
// Immutable once constructed; a fresh draft is built per submission attempt.
type Draft struct {
	Items                []DraftLine             `json:"items"`
	CustomerInfo         CustomerInfo            `json:"customerInfo"`
	DeliveryOption       checkout.DeliveryOption `json:"deliveryOption"`
	PickupLocation       *string                 `json:"pickupLocation"`
	PickupMtaaniLocation *string                 `json:"pickupMtaaniLocation"`
	PaymentMethod        checkout.PaymentMethod  `json:"paymentMethod"`
	TotalAmount          float64                 `json:"totalAmount"`
	// OrderNumber is a client-proposed, human-readable hint only. The
	// persistence service assigns the authoritative identifier.
	OrderNumber  string    `json:"orderNumber"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	IsGuestOrder bool      `json:"isGuestOrder"`
	UserID       *string   `json:"userId"`
}

// Total computes the amount invariant: line subtotals plus the delivery fee.
func Total(lines cart.Lines, sel checkout.DeliverySelection) decimal.Decimal {
	return lines.Subtotal().Add(sel.Fee())
}

// NumberHint generates the client order number: ORD-<last six timestamp
// digits>-<three random digits>. Neither unique nor collision-free; display
// hint only.
func NumberHint(now time.Time) string {
	ts := fmt.Sprintf("%d", now.UnixMilli())
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}
	return fmt.Sprintf("ORD-%s-%03d", ts, rand.Intn(1000))
}

// BuildDraft normalizes validated wizard state into a submission payload. It
// cannot fail: every input is pre-validated by the wizard before it reaches
// the builder. userID is empty for guest checkout.
func BuildDraft(lines cart.Lines, form checkout.Form, userID string, now time.Time) Draft {
	items := make([]DraftLine, 0, len(lines))
	for _, l := range lines {
		item := DraftLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.UnitPrice.InexactFloat64(),
			Quantity:  l.Quantity,
			ImageURL:  l.ImageURL,
		}
		if l.Variant != nil {
			if l.Variant.Size != "" {
				item.Size = ptr(l.Variant.Size)
			}
			if l.Variant.Color != "" {
				item.Color = ptr(l.Variant.Color)
			}
		}
		items = append(items, item)
	}

	draft := Draft{
		Items:          items,
		CustomerInfo:   CustomerInfo(form.Shipping),
		DeliveryOption: form.Delivery.Option,
		PaymentMethod:  form.Payment,
		TotalAmount:    Total(lines, form.Delivery).InexactFloat64(),
		OrderNumber:    NumberHint(now),
		Status:         string(StatusPending),
		CreatedAt:      now.UTC(),
		IsGuestOrder:   userID == "",
	}
	switch form.Delivery.Option {
	case checkout.DeliveryStorePickup:
		draft.PickupLocation = ptr(form.Delivery.LocationID)
	case checkout.DeliveryPickupMtaani:
		draft.PickupMtaaniLocation = ptr(form.Delivery.LocationID)
	}
	if userID != "" {
		draft.UserID = ptr(userID)
	}
	return draft
}

func ptr(s string) *string { return &s }
