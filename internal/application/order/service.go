package order

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bylucie/storefront/internal/domain/checkout"
	dominv "github.com/bylucie/storefront/internal/domain/inventory"
	domain "github.com/bylucie/storefront/internal/domain/order"
	"github.com/bylucie/storefront/internal/pkg/logging"
	"go.uber.org/zap"
)

// IDGenerator assigns the authoritative order identifier.
type IDGenerator interface {
	NewID() string
}

// ValidationError carries the field-level failures of a rejected draft.
type ValidationError struct {
	Fields []checkout.FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("order: validation failed (%d fields)", len(e.Fields))
}

// StockError reports demands the conditional decrement could not satisfy.
// The order is rejected transactionally: nothing was deducted, nothing was
// persisted.
type StockError struct {
	Shortfalls []dominv.Shortfall
}

func (e *StockError) Error() string {
	return fmt.Sprintf("order: insufficient stock for %d items", len(e.Shortfalls))
}

// Service is the authoritative order writer: it validates the draft,
// performs the race-free stock decrement, and persists the order. Two
// drafts racing for the last unit resolve here: exactly one decrement
// succeeds, the loser gets a StockError.
type Service struct {
	repo        domain.Repository
	inventory   dominv.Repository
	idGenerator IDGenerator
}

func NewService(repo domain.Repository, inventory dominv.Repository, idGen IDGenerator) *Service {
	return &Service{
		repo:        repo,
		inventory:   inventory,
		idGenerator: idGen,
	}
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Create accepts a submitted draft. On success the returned order carries
// the server-assigned id; the client's orderNumber travels along as a
// display hint only.
func (s *Service) Create(ctx context.Context, draft domain.Draft) (*domain.Order, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "order_service"))
	logger.Info("create_order_start",
		zap.Int("items", len(draft.Items)),
		zap.Bool("guest", draft.IsGuestOrder),
		zap.String("number_hint", draft.OrderNumber),
	)

	if fieldErrs := validateDraft(draft); len(fieldErrs) > 0 {
		logger.Info("order_rejected_validation", zap.Int("fields", len(fieldErrs)))
		return nil, &ValidationError{Fields: fieldErrs}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	demands := make([]dominv.Demand, 0, len(draft.Items))
	for _, item := range draft.Items {
		demands = append(demands, dominv.Demand{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	shortfalls, err := s.inventory.DeductAll(ctx, demands)
	if err != nil {
		logger.Error("stock_deduct_failed", zap.Error(err))
		return nil, fmt.Errorf("order: stock deduction: %w", err)
	}
	if len(shortfalls) > 0 {
		logger.Info("order_rejected_stock", zap.Int("shortfalls", len(shortfalls)))
		return nil, &StockError{Shortfalls: shortfalls}
	}

	entity, err := domain.New(s.idGenerator.NewID(), draft)
	if err != nil {
		s.restock(ctx, demands, logger)
		return nil, fmt.Errorf("order: construct: %w", err)
	}

	if err := s.repo.Insert(ctx, entity); err != nil {
		// Undo the decrement so a persistence failure cannot leak stock.
		s.restock(ctx, demands, logger)
		logger.Error("order_save_failed", zap.String("order_id", entity.ID), zap.Error(err))
		return nil, fmt.Errorf("order: save: %w", err)
	}

	logger.Info("create_order_success",
		zap.String("order_id", entity.ID),
		zap.String("status", string(entity.Status)),
	)
	return entity, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, errors.New("order: id is required")
	}
	return s.repo.FindByID(ctx, id)
}

// Available exposes the advisory stock view the checkout client polls.
func (s *Service) Available(ctx context.Context, productIDs []string) (map[string]int, error) {
	return s.inventory.Available(ctx, productIDs)
}

func (s *Service) restock(ctx context.Context, demands []dominv.Demand, logger *zap.Logger) {
	for _, d := range demands {
		available, err := s.inventory.Available(ctx, []string{d.ProductID})
		if err != nil {
			logger.Error("restock_failed", zap.String("product_id", d.ProductID), zap.Error(err))
			continue
		}
		item := &dominv.Item{ProductID: d.ProductID, Quantity: available[d.ProductID] + d.Quantity}
		if err := s.inventory.Save(ctx, item); err != nil {
			logger.Error("restock_failed", zap.String("product_id", d.ProductID), zap.Error(err))
		}
	}
}

// validateDraft mirrors the storefront's submission rules: contact block,
// item shape, delivery sub-fields with known locations, payment method, and
// a non-negative total.
func validateDraft(draft domain.Draft) []checkout.FieldError {
	var errs []checkout.FieldError

	if len(strings.TrimSpace(draft.CustomerInfo.FullName)) < 2 {
		errs = append(errs, checkout.FieldError{Field: "customerInfo.fullName", Message: "Full name must be at least 2 characters long"})
	}
	if !emailPattern.MatchString(strings.TrimSpace(draft.CustomerInfo.Email)) {
		errs = append(errs, checkout.FieldError{Field: "customerInfo.email", Message: "Valid email is required"})
	}
	if len(strings.TrimSpace(draft.CustomerInfo.Phone)) < 10 {
		errs = append(errs, checkout.FieldError{Field: "customerInfo.phone", Message: "Valid phone number is required"})
	}

	if len(draft.Items) == 0 {
		errs = append(errs, checkout.FieldError{Field: "items", Message: "Cart must contain at least one item"})
	}
	for i, item := range draft.Items {
		if item.ProductID == "" {
			errs = append(errs, checkout.FieldError{Field: fmt.Sprintf("items[%d].productId", i), Message: "Product id is required"})
		}
		if item.Name == "" {
			errs = append(errs, checkout.FieldError{Field: fmt.Sprintf("items[%d].name", i), Message: "Product name is required"})
		}
		if item.Price < 0 {
			errs = append(errs, checkout.FieldError{Field: fmt.Sprintf("items[%d].price", i), Message: "Valid price is required"})
		}
		if item.Quantity < 1 {
			errs = append(errs, checkout.FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "Valid quantity is required"})
		}
	}

	if draft.TotalAmount < 0 {
		errs = append(errs, checkout.FieldError{Field: "totalAmount", Message: "Valid total amount is required"})
	}

	option := draft.DeliveryOption
	if !option.Valid() {
		errs = append(errs, checkout.FieldError{Field: "deliveryOption", Message: "Valid delivery option is required"})
	}
	switch option {
	case checkout.DeliveryStorePickup:
		if draft.PickupLocation == nil || !checkout.KnownLocation(option, *draft.PickupLocation) {
			errs = append(errs, checkout.FieldError{Field: "pickupLocation", Message: "Valid store pickup location is required"})
		}
	case checkout.DeliveryPickupMtaani:
		if draft.PickupMtaaniLocation == nil || !checkout.KnownLocation(option, *draft.PickupMtaaniLocation) {
			errs = append(errs, checkout.FieldError{Field: "pickupMtaaniLocation", Message: "Valid PickupMtaani location is required"})
		}
	case checkout.DeliveryDoorToDoor:
		if strings.TrimSpace(draft.CustomerInfo.Address) == "" {
			errs = append(errs, checkout.FieldError{Field: "customerInfo.address", Message: "Address is required for door-to-door delivery"})
		}
	}

	if !draft.PaymentMethod.Valid() {
		errs = append(errs, checkout.FieldError{Field: "paymentMethod", Message: "Valid payment method is required"})
	}

	if !draft.IsGuestOrder && (draft.UserID == nil || *draft.UserID == "") {
		errs = append(errs, checkout.FieldError{Field: "userId", Message: "User id is required for authenticated orders"})
	}

	return errs
}
