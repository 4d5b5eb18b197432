package order

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bylucie/storefront/internal/domain/checkout"
	dominv "github.com/bylucie/storefront/internal/domain/inventory"
	domain "github.com/bylucie/storefront/internal/domain/order"
	"github.com/bylucie/storefront/internal/infrastructure/id"
	"github.com/bylucie/storefront/internal/infrastructure/memory"
)

func validDraft() domain.Draft {
	loc := "main-store"
	return domain.Draft{
		Items: []domain.DraftLine{
			{ProductID: "p1", Name: "Linen shirt", Price: 1500, Quantity: 1},
		},
		CustomerInfo: domain.CustomerInfo{
			FullName: "Wanjiku Kamau",
			Email:    "wanjiku@example.com",
			Phone:    "0712345678",
		},
		DeliveryOption: checkout.DeliveryStorePickup,
		PickupLocation: &loc,
		PaymentMethod:  checkout.PaymentMpesa,
		TotalAmount:    1500,
		OrderNumber:    "ORD-123456-001",
		Status:         "pending",
		IsGuestOrder:   true,
	}
}

func newService(t *testing.T, seed map[string]int) (*Service, *memory.InventoryRepository) {
	t.Helper()
	inventory := memory.NewInventoryRepository()
	for pid, qty := range seed {
		require.NoError(t, inventory.Save(context.Background(), &dominv.Item{ProductID: pid, Quantity: qty}))
	}
	svc := NewService(memory.NewOrderRepository(), inventory, id.NewUUIDGenerator())
	return svc, inventory
}

func TestCreateAssignsServerID(t *testing.T) {
	svc, inventory := newService(t, map[string]int{"p1": 5})

	created, err := svc.Create(context.Background(), validDraft())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.NotEqual(t, "ORD-123456-001", created.ID)
	assert.Equal(t, domain.StatusPending, created.Status)

	available, err := inventory.Available(context.Background(), []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, 4, available["p1"])

	fetched, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	svc, inventory := newService(t, map[string]int{"p1": 5})

	draft := validDraft()
	draft.CustomerInfo.Email = "not-an-email"
	draft.CustomerInfo.Phone = "123"

	_, err := svc.Create(context.Background(), draft)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "customerInfo.email")
	assert.Contains(t, fields, "customerInfo.phone")

	// Validation rejections never touch stock.
	available, err := inventory.Available(context.Background(), []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, 5, available["p1"])
}

func TestCreateRejectsUnknownPickupLocation(t *testing.T) {
	svc, _ := newService(t, map[string]int{"p1": 5})

	draft := validDraft()
	bogus := "warehouse-9"
	draft.PickupLocation = &bogus

	_, err := svc.Create(context.Background(), draft)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "pickupLocation", verr.Fields[0].Field)
}

func TestCreateRequiresUserIDForAuthenticatedOrders(t *testing.T) {
	svc, _ := newService(t, map[string]int{"p1": 5})

	draft := validDraft()
	draft.IsGuestOrder = false

	_, err := svc.Create(context.Background(), draft)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "userId", verr.Fields[0].Field)
}

func TestCreateRejectsShortfallTransactionally(t *testing.T) {
	svc, inventory := newService(t, map[string]int{"p1": 5, "p2": 1})

	draft := validDraft()
	draft.Items = []domain.DraftLine{
		{ProductID: "p1", Name: "Linen shirt", Price: 1500, Quantity: 2},
		{ProductID: "p2", Name: "Denim jacket", Price: 3000, Quantity: 3},
	}
	draft.TotalAmount = 12000

	_, err := svc.Create(context.Background(), draft)

	var serr *StockError
	require.ErrorAs(t, err, &serr)
	require.Len(t, serr.Shortfalls, 1)
	assert.Equal(t, "p2", serr.Shortfalls[0].ProductID)
	assert.Equal(t, 3, serr.Shortfalls[0].Requested)
	assert.Equal(t, 1, serr.Shortfalls[0].Available)

	// All or nothing: the satisfiable line was not deducted either.
	available, aerr := inventory.Available(context.Background(), []string{"p1", "p2"})
	require.NoError(t, aerr)
	assert.Equal(t, 5, available["p1"])
	assert.Equal(t, 1, available["p2"])
}

func TestConcurrentSubmissionsForLastUnit(t *testing.T) {
	svc, inventory := newService(t, map[string]int{"p1": 1})

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			draft := validDraft()
			draft.Items = []domain.DraftLine{{ProductID: "p1", Name: "Linen shirt", Price: 1500, Quantity: 1}}
			_, err := svc.Create(context.Background(), draft)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var accepted, conflicted int
	for err := range results {
		if err == nil {
			accepted++
			continue
		}
		var serr *StockError
		require.ErrorAs(t, err, &serr)
		conflicted++
	}

	assert.Equal(t, 1, accepted, "exactly one submission wins the last unit")
	assert.Equal(t, 1, conflicted)

	available, err := inventory.Available(context.Background(), []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, 0, available["p1"])
}

func TestAvailableOmitsUnknownProducts(t *testing.T) {
	svc, _ := newService(t, map[string]int{"p1": 3})

	available, err := svc.Available(context.Background(), []string{"p1", "ghost"})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"p1": 3}, available)
}
