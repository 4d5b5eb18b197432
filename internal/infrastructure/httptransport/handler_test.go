package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appOrder "github.com/bylucie/storefront/internal/application/order"
	domainInventory "github.com/bylucie/storefront/internal/domain/inventory"
	"github.com/bylucie/storefront/internal/infrastructure/id"
	"github.com/bylucie/storefront/internal/infrastructure/memory"
)

func newRouter(t *testing.T, seed map[string]int) http.Handler {
	t.Helper()
	inventory := memory.NewInventoryRepository()
	for pid, qty := range seed {
		require.NoError(t, inventory.Save(context.Background(), &domainInventory.Item{ProductID: pid, Quantity: qty}))
	}
	svc := appOrder.NewService(memory.NewOrderRepository(), inventory, id.NewUUIDGenerator())
	return NewHandler(svc).Router()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func guestOrderBody() map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"productId": "p1", "name": "Linen shirt", "price": 1500, "quantity": 2, "size": nil, "color": nil},
		},
		"customerInfo": map[string]any{
			"fullName": "Wanjiku Kamau",
			"email":    "wanjiku@example.com",
			"phone":    "0712345678",
			"address":  "",
		},
		"deliveryOption": "store-pickup",
		"pickupLocation": "main-store",
		"paymentMethod":  "mpesa",
		"totalAmount":    3000,
		"orderNumber":    "ORD-123456-001",
		"status":         "pending",
		"isGuestOrder":   true,
	}
}

func TestStockCheckOmitsUnknownIDs(t *testing.T) {
	router := newRouter(t, map[string]int{"p1": 5, "p2": 0})

	rec := doJSON(t, router, http.MethodPost, "/api/products/stock-check", map[string]any{
		"productIds": []string{"p1", "p2", "ghost"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, map[string]int{"p1": 5, "p2": 0}, snapshot)
}

func TestStockCheckRequiresProductIDs(t *testing.T) {
	router := newRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/products/stock-check", map[string]any{
		"productIds": []string{},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateGuestOrder(t *testing.T) {
	router := newRouter(t, map[string]int{"p1": 5})

	rec := doJSON(t, router, http.MethodPost, "/api/orders/guest", guestOrderBody())

	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID           string  `json:"id"`
		Status       string  `json:"status"`
		TotalAmount  float64 `json:"totalAmount"`
		IsGuestOrder bool    `json:"isGuestOrder"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "pending", created.Status)
	assert.InDelta(t, 3000.0, created.TotalAmount, 0.001)
	assert.True(t, created.IsGuestOrder)

	// The decrement is visible to the next stock check.
	check := doJSON(t, router, http.MethodPost, "/api/products/stock-check", map[string]any{
		"productIds": []string{"p1"},
	})
	var snapshot map[string]int
	require.NoError(t, json.Unmarshal(check.Body.Bytes(), &snapshot))
	assert.Equal(t, 3, snapshot["p1"])
}

func TestCreateOrderValidationContract(t *testing.T) {
	router := newRouter(t, map[string]int{"p1": 5})

	body := guestOrderBody()
	body["customerInfo"] = map[string]any{
		"fullName": "W",
		"email":    "not-an-email",
		"phone":    "123",
		"address":  "",
	}

	rec := doJSON(t, router, http.MethodPost, "/api/orders/guest", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Error   string `json:"error"`
		Details []struct {
			Field string `json:"field"`
			Msg   string `json:"msg"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Error)
	require.Len(t, resp.Details, 3)
	assert.Equal(t, "customerInfo.fullName", resp.Details[0].Field)
}

func TestCreateOrderStockConflictContract(t *testing.T) {
	router := newRouter(t, map[string]int{"p1": 1})

	rec := doJSON(t, router, http.MethodPost, "/api/orders/guest", guestOrderBody())

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp struct {
		Code            string `json:"code"`
		Message         string `json:"message"`
		OutOfStockItems []struct {
			ProductID string `json:"productId"`
			Requested int    `json:"requested"`
			Available int    `json:"available"`
		} `json:"outOfStockItems"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "OUT_OF_STOCK", resp.Code)
	assert.Contains(t, resp.Message, "stock")
	require.Len(t, resp.OutOfStockItems, 1)
	assert.Equal(t, "p1", resp.OutOfStockItems[0].ProductID)
	assert.Equal(t, 2, resp.OutOfStockItems[0].Requested)
	assert.Equal(t, 1, resp.OutOfStockItems[0].Available)
}

func TestAuthenticatedRouteRequiresUserID(t *testing.T) {
	router := newRouter(t, map[string]int{"p1": 5})

	body := guestOrderBody()
	body["isGuestOrder"] = false

	rec := doJSON(t, router, http.MethodPost, "/api/orders", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "userId")
}

func TestGuestRouteForcesGuest(t *testing.T) {
	router := newRouter(t, map[string]int{"p1": 5})

	// Same payload as the authenticated rejection above; the guest route
	// overrides the flag instead of failing.
	body := guestOrderBody()
	body["isGuestOrder"] = false

	rec := doJSON(t, router, http.MethodPost, "/api/orders/guest", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestPickupLocations(t *testing.T) {
	router := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/pickup-locations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		StoreLocations []struct {
			ID string `json:"id"`
		} `json:"storeLocations"`
		PickupMtaaniLocations []struct {
			ID string `json:"id"`
		} `json:"pickupMtaaniLocations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.StoreLocations, 3)
	assert.Len(t, resp.PickupMtaaniLocations, 4)
	assert.Equal(t, "main-store", resp.StoreLocations[0].ID)
}

func TestMethodGating(t *testing.T) {
	router := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRejectsUnknownFields(t *testing.T) {
	router := newRouter(t, map[string]int{"p1": 5})

	body := guestOrderBody()
	body["surprise"] = true

	rec := doJSON(t, router, http.MethodPost, "/api/orders/guest", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
