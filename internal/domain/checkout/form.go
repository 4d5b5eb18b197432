package checkout

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ShippingProfile is the contact block captured on the first wizard step.
// Address is only mandatory for door-to-door delivery.
type ShippingProfile struct {
	FullName string
	Email    string
	Phone    string
	Address  string
}

type DeliveryOption string

const (
	DeliveryStorePickup  DeliveryOption = "store-pickup"
	DeliveryDoorToDoor   DeliveryOption = "door-to-door"
	DeliveryPickupMtaani DeliveryOption = "pickupmtaani"
)

func (o DeliveryOption) Valid() bool {
	switch o {
	case DeliveryStorePickup, DeliveryDoorToDoor, DeliveryPickupMtaani:
		return true
	}
	return false
}

// pickupMtaaniFee is the flat KSH fee for PickupMtaani points.
var pickupMtaaniFee = decimal.NewFromInt(99)

// DeliverySelection is the chosen delivery method plus its variant-specific
// sub-field: a location id for the pickup variants, a courier quote for
// door-to-door.
type DeliverySelection struct {
	Option     DeliveryOption
	LocationID string
	// QuotedFee is the dynamic door-to-door courier fee supplied when the
	// option is offered. Ignored for the other variants.
	QuotedFee decimal.Decimal
}

// Fee is the delivery charge added to the order total: zero for store
// pickup, a fixed KSH 99 for PickupMtaani, the quote for door-to-door.
func (s DeliverySelection) Fee() decimal.Decimal {
	switch s.Option {
	case DeliveryPickupMtaani:
		return pickupMtaaniFee
	case DeliveryDoorToDoor:
		return s.QuotedFee
	default:
		return decimal.Zero
	}
}

// Instructions is the customer-facing fulfilment note for the method.
func (s DeliverySelection) Instructions() string {
	switch s.Option {
	case DeliveryStorePickup:
		return "Your order will be ready for pickup within 2 hours. Please bring your ID and order confirmation."
	case DeliveryDoorToDoor:
		return "Door-to-door delivery via Uber/Bolt. Delivery time: 1-3 hours. You will receive tracking information."
	case DeliveryPickupMtaani:
		return "Your order will be delivered to the selected PickupMtaani location within 24 hours. You will receive an SMS when ready for pickup."
	default:
		return ""
	}
}

type PaymentMethod string

const (
	PaymentMpesa          PaymentMethod = "mpesa"
	PaymentCard           PaymentMethod = "card"
	PaymentBankTransfer   PaymentMethod = "bank"
	PaymentCashOnDelivery PaymentMethod = "cash"
	PaymentPayPal         PaymentMethod = "paypal"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMpesa, PaymentCard, PaymentBankTransfer, PaymentCashOnDelivery, PaymentPayPal:
		return true
	}
	return false
}

// Form is the wizard's mutable form state: contact info, delivery selection,
// payment selection. Pure data; validation lives on the step methods below.
type Form struct {
	Shipping ShippingProfile
	Delivery DeliverySelection
	Payment  PaymentMethod
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ValidateContact gates Contact -> Delivery. Address is required here only
// when the currently selected delivery option is door-to-door; the rule is
// re-applied on the delivery step since the option may change after this one.
func (f *Form) ValidateContact() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(f.Shipping.FullName) == "" {
		errs = append(errs, FieldError{Field: "fullName", Message: "full name is required"})
	}
	if strings.TrimSpace(f.Shipping.Phone) == "" {
		errs = append(errs, FieldError{Field: "phone", Message: "phone number is required"})
	}
	email := strings.TrimSpace(f.Shipping.Email)
	switch {
	case email == "":
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	case !emailPattern.MatchString(email):
		errs = append(errs, FieldError{Field: "email", Message: "enter a valid email address"})
	}
	if f.Delivery.Option == DeliveryDoorToDoor && strings.TrimSpace(f.Shipping.Address) == "" {
		errs = append(errs, FieldError{Field: "address", Message: "address is required for door-to-door delivery"})
	}
	return errs
}

// ValidateDelivery gates Delivery -> Payment.
func (f *Form) ValidateDelivery() []FieldError {
	var errs []FieldError
	if !f.Delivery.Option.Valid() {
		errs = append(errs, FieldError{Field: "deliveryOption", Message: "choose a delivery option"})
		return errs
	}
	switch f.Delivery.Option {
	case DeliveryStorePickup:
		if f.Delivery.LocationID == "" {
			errs = append(errs, FieldError{Field: "pickupLocation", Message: "select a store pickup location"})
		}
	case DeliveryPickupMtaani:
		if f.Delivery.LocationID == "" {
			errs = append(errs, FieldError{Field: "pickupMtaaniLocation", Message: "select a PickupMtaani location"})
		}
	case DeliveryDoorToDoor:
		if strings.TrimSpace(f.Shipping.Address) == "" {
			errs = append(errs, FieldError{Field: "address", Message: "enter your delivery address for door-to-door delivery"})
		}
	}
	return errs
}

// ValidatePayment gates submission from the Payment step.
func (f *Form) ValidatePayment() []FieldError {
	if !f.Payment.Valid() {
		return []FieldError{{Field: "paymentMethod", Message: "choose a payment method"}}
	}
	return nil
}
