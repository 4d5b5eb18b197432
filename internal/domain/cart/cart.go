package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrEmpty           = errors.New("cart: cart is empty")
	ErrInvalidQuantity = errors.New("cart: quantity must be at least one")
	ErrNegativePrice   = errors.New("cart: unit price must be zero or greater")
	ErrMissingProduct  = errors.New("cart: product id is required")
)

// Variant carries the chosen size/color of a line, when the product has one.
type Variant struct {
	Size  string
	Color string
}

// Line is one product selection inside the cart. Lines are owned by the cart
// store; the checkout pipeline only reads them. Quantity changes happen by
// navigating back to the cart.
type Line struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Variant   *Variant
	ImageURL  string
}

func NewLine(productID, name string, unitPrice decimal.Decimal, quantity int) (Line, error) {
	if productID == "" {
		return Line{}, ErrMissingProduct
	}
	if quantity < 1 {
		return Line{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return Line{}, ErrNegativePrice
	}
	return Line{
		ProductID: productID,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  quantity,
	}, nil
}

// Subtotal is unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Lines is the cart content in display order.
type Lines []Line

// Validate reports the first structural defect across the lines.
func (ls Lines) Validate() error {
	if len(ls) == 0 {
		return ErrEmpty
	}
	for _, l := range ls {
		if l.ProductID == "" {
			return ErrMissingProduct
		}
		if l.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if l.UnitPrice.IsNegative() {
			return ErrNegativePrice
		}
	}
	return nil
}

// Subtotal sums the line subtotals, before any delivery fee.
func (ls Lines) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range ls {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ProductIDs returns the ids in cart order, for stock lookups.
func (ls Lines) ProductIDs() []string {
	ids := make([]string, 0, len(ls))
	for _, l := range ls {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// Clone returns an independent copy so callers cannot mutate store state.
func (ls Lines) Clone() Lines {
	if ls == nil {
		return nil
	}
	out := make(Lines, len(ls))
	copy(out, ls)
	for i := range out {
		if out[i].Variant != nil {
			v := *out[i].Variant
			out[i].Variant = &v
		}
	}
	return out
}
