package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return Form{
		Shipping: ShippingProfile{
			FullName: "Wanjiku Kamau",
			Email:    "wanjiku@example.com",
			Phone:    "0712345678",
		},
		Delivery: DeliverySelection{Option: DeliveryStorePickup, LocationID: "main-store"},
		Payment:  PaymentMpesa,
	}
}

func fieldsOf(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateContactAllPresent(t *testing.T) {
	f := validForm()
	assert.Empty(t, f.ValidateContact())
}

func TestValidateContactEmptyEmail(t *testing.T) {
	f := validForm()
	f.Shipping.Email = ""

	errs := f.ValidateContact()
	require.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)
}

func TestValidateContactMalformedEmail(t *testing.T) {
	f := validForm()
	f.Shipping.Email = "not-an-address"

	errs := f.ValidateContact()
	require.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)
}

func TestValidateContactAddressOnlyForDoorToDoor(t *testing.T) {
	f := validForm()
	f.Shipping.Address = ""

	assert.Empty(t, f.ValidateContact())

	f.Delivery.Option = DeliveryDoorToDoor
	errs := f.ValidateContact()
	assert.Contains(t, fieldsOf(errs), "address")
}

func TestValidateDeliveryLocationRequired(t *testing.T) {
	f := validForm()
	f.Delivery = DeliverySelection{Option: DeliveryStorePickup}
	assert.Contains(t, fieldsOf(f.ValidateDelivery()), "pickupLocation")

	f.Delivery = DeliverySelection{Option: DeliveryPickupMtaani}
	assert.Contains(t, fieldsOf(f.ValidateDelivery()), "pickupMtaaniLocation")
}

func TestValidateDeliveryDoorToDoorNeedsAddress(t *testing.T) {
	f := validForm()
	f.Delivery = DeliverySelection{Option: DeliveryDoorToDoor}
	f.Shipping.Address = "   "

	errs := f.ValidateDelivery()
	require.Len(t, errs, 1)
	assert.Equal(t, "address", errs[0].Field)
}

func TestValidatePayment(t *testing.T) {
	f := validForm()
	assert.Empty(t, f.ValidatePayment())

	f.Payment = PaymentMethod("barter")
	errs := f.ValidatePayment()
	require.Len(t, errs, 1)
	assert.Equal(t, "paymentMethod", errs[0].Field)
}

func TestDeliveryFees(t *testing.T) {
	pickup := DeliverySelection{Option: DeliveryStorePickup, LocationID: "main-store"}
	assert.True(t, pickup.Fee().IsZero())

	mtaani := DeliverySelection{Option: DeliveryPickupMtaani, LocationID: "pm-karen"}
	assert.True(t, mtaani.Fee().Equal(decimal.NewFromInt(99)))

	door := DeliverySelection{Option: DeliveryDoorToDoor, QuotedFee: decimal.NewFromInt(250)}
	assert.True(t, door.Fee().Equal(decimal.NewFromInt(250)))
}

func TestKnownLocation(t *testing.T) {
	assert.True(t, KnownLocation(DeliveryStorePickup, "main-store"))
	assert.False(t, KnownLocation(DeliveryStorePickup, "pm-karen"))
	assert.True(t, KnownLocation(DeliveryPickupMtaani, "pm-karen"))
	assert.False(t, KnownLocation(DeliveryPickupMtaani, "nowhere"))
	assert.True(t, KnownLocation(DeliveryDoorToDoor, ""))
}
