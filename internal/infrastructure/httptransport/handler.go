package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	appOrder "github.com/bylucie/storefront/internal/application/order"
	domainCheckout "github.com/bylucie/storefront/internal/domain/checkout"
	domainInventory "github.com/bylucie/storefront/internal/domain/inventory"
	domainOrder "github.com/bylucie/storefront/internal/domain/order"
)

type Handler struct {
	orderService *appOrder.Service
}

func NewHandler(orderSvc *appOrder.Service) *Handler {
	return &Handler{
		orderService: orderSvc,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/products/stock-check", h.method(http.MethodPost, h.handleStockCheck))
	mux.HandleFunc("/api/orders", h.method(http.MethodPost, h.handleCreateOrder))
	mux.HandleFunc("/api/orders/guest", h.method(http.MethodPost, h.handleCreateGuestOrder))
	mux.HandleFunc("/api/pickup-locations", h.method(http.MethodGet, h.handlePickupLocations))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

type stockCheckRequest struct {
	ProductIDs []string `json:"productIds"`
}

// handleStockCheck answers the advisory availability lookup: a map of
// available quantity per recognized product id. Unrecognized ids are
// omitted, never zeroed, so the client treats them as unknown.
func (h *Handler) handleStockCheck(w http.ResponseWriter, r *http.Request) {
	var req stockCheckRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.ProductIDs) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("productIds is required"))
		return
	}

	available, err := h.orderService.Available(r.Context(), req.ProductIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, available)
}

type orderResponse struct {
	ID             string                  `json:"id"`
	OrderNumber    string                  `json:"orderNumber"`
	Status         domainOrder.Status      `json:"status"`
	Items          []domainOrder.DraftLine `json:"items"`
	DeliveryOption string                  `json:"deliveryOption"`
	PaymentMethod  string                  `json:"paymentMethod"`
	TotalAmount    float64                 `json:"totalAmount"`
	IsGuestOrder   bool                    `json:"isGuestOrder"`
	CreatedAt      time.Time               `json:"createdAt"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	h.createOrder(w, r, false)
}

func (h *Handler) handleCreateGuestOrder(w http.ResponseWriter, r *http.Request) {
	h.createOrder(w, r, true)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request, guest bool) {
	var draft domainOrder.Draft
	if err := decodeJSON(r.Context(), r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if guest {
		draft.IsGuestOrder = true
		draft.UserID = nil
	}

	created, err := h.orderService.Create(r.Context(), draft)
	if err != nil {
		writeCreateError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, orderResponse{
		ID:             created.ID,
		OrderNumber:    created.Number,
		Status:         created.Status,
		Items:          created.Items,
		DeliveryOption: created.DeliveryOption,
		PaymentMethod:  created.PaymentMethod,
		TotalAmount:    created.TotalAmount.InexactFloat64(),
		IsGuestOrder:   created.IsGuest,
		CreatedAt:      created.CreatedAt,
	})
}

type pickupLocationsResponse struct {
	StoreLocations        []domainCheckout.PickupLocation `json:"storeLocations"`
	PickupMtaaniLocations []domainCheckout.PickupLocation `json:"pickupMtaaniLocations"`
}

func (h *Handler) handlePickupLocations(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, pickupLocationsResponse{
		StoreLocations:        domainCheckout.StoreLocations(),
		PickupMtaaniLocations: domainCheckout.PickupMtaaniLocations(),
	})
}

type validationDetail struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type outOfStockItem struct {
	ProductID string `json:"productId"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// writeCreateError maps service failures to the wire contract the checkout
// client interprets: 400 with details for field errors, 409 with a typed
// OUT_OF_STOCK code for conflicts.
func writeCreateError(w http.ResponseWriter, err error) {
	var validationErr *appOrder.ValidationError
	if errors.As(err, &validationErr) {
		details := make([]validationDetail, 0, len(validationErr.Fields))
		for _, f := range validationErr.Fields {
			details = append(details, validationDetail{Field: f.Field, Msg: f.Message})
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Validation failed",
			"details": details,
		})
		return
	}

	var stockErr *appOrder.StockError
	if errors.As(err, &stockErr) {
		items := make([]outOfStockItem, 0, len(stockErr.Shortfalls))
		for _, s := range stockErr.Shortfalls {
			items = append(items, outOfStockItem{
				ProductID: s.ProductID,
				Requested: s.Requested,
				Available: s.Available,
			})
		}
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":           "Insufficient stock for some items",
			"code":            "OUT_OF_STOCK",
			"outOfStockItems": items,
			"message":         "Some items in your cart are out of stock. Please update your cart and try again.",
		})
		return
	}

	writeDomainError(w, err)
}

func (h *Handler) method(method string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
			return
		}
		handler(w, r)
	}
}

func decodeJSON(ctx context.Context, r *http.Request, dst any) error {
	_ = ctx
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainOrder.ErrNotFound),
		errors.Is(err, domainInventory.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domainInventory.ErrInvalidQuantity),
		errors.Is(err, domainInventory.ErrInsufficientStock),
		errors.Is(err, domainOrder.ErrNoItems),
		errors.Is(err, domainOrder.ErrInvalidTotal):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
