package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("order: not found")
	ErrConflict     = errors.New("order: already exists")
	ErrNoItems      = errors.New("order: at least one item is required")
	ErrInvalidTotal = errors.New("order: total amount must be zero or greater")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Order is the persisted entity on the service side. ID is assigned by the
// service; the client's Number travels along as a display hint only.
type Order struct {
	ID                   string
	Number               string
	UserID               string
	IsGuest              bool
	Items                []DraftLine
	Customer             CustomerInfo
	DeliveryOption       string
	PickupLocation       string
	PickupMtaaniLocation string
	PaymentMethod        string
	TotalAmount          decimal.Decimal
	Status               Status
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// New builds a pending order from an accepted draft under a server-assigned
// id.
func New(id string, draft Draft) (*Order, error) {
	if len(draft.Items) == 0 {
		return nil, ErrNoItems
	}
	total := decimal.NewFromFloat(draft.TotalAmount)
	if total.IsNegative() {
		return nil, ErrInvalidTotal
	}

	now := time.Now().UTC()
	o := &Order{
		ID:             id,
		Number:         draft.OrderNumber,
		IsGuest:        draft.IsGuestOrder,
		Items:          append([]DraftLine(nil), draft.Items...),
		Customer:       draft.CustomerInfo,
		DeliveryOption: string(draft.DeliveryOption),
		PaymentMethod:  string(draft.PaymentMethod),
		TotalAmount:    total,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if draft.UserID != nil {
		o.UserID = *draft.UserID
	}
	if draft.PickupLocation != nil {
		o.PickupLocation = *draft.PickupLocation
	}
	if draft.PickupMtaaniLocation != nil {
		o.PickupMtaaniLocation = *draft.PickupMtaaniLocation
	}
	return o, nil
}

func (o *Order) MarkProcessing() {
	o.Status = StatusProcessing
	o.touch()
}

func (o *Order) MarkCompleted() {
	o.Status = StatusCompleted
	o.touch()
}

func (o *Order) MarkCancelled() {
	o.Status = StatusCancelled
	o.touch()
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}

// Clone returns an independent copy for repository boundaries.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]DraftLine(nil), o.Items...)
	return &clone
}
