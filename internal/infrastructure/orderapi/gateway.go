package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bylucie/storefront/internal/domain/cart"
	"github.com/bylucie/storefront/internal/domain/checkout"
	"github.com/bylucie/storefront/internal/domain/order"
	"github.com/bylucie/storefront/internal/domain/stock"
	"github.com/shopspring/decimal"
)

const defaultTimeout = 30 * time.Second

// outOfStockCode is the typed conflict code the order service emits. The
// free-text "stock" match below remains as the degraded path for servers
// that predate it.
const outOfStockCode = "OUT_OF_STOCK"

// Gateway submits drafts to the order persistence service and interprets the
// structured result. Guest and authenticated drafts go to separate
// endpoints. The gateway never retries; a retry is an explicit user action.
type Gateway struct {
	baseURL string
	http    *http.Client
}

func NewGateway(baseURL string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Gateway{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type acceptedResponse struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
}

type errorResponse struct {
	Error           string           `json:"error"`
	Message         string           `json:"message"`
	Code            string           `json:"code"`
	Details         []errorDetail    `json:"details"`
	OutOfStockItems []outOfStockItem `json:"outOfStockItems"`
}

type errorDetail struct {
	Field   string `json:"field"`
	Path    string `json:"path"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

type outOfStockItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"productName"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// Submit dispatches the draft and resolves the response to an outcome. The
// caller performs the final advisory stock re-check before invoking this.
func (g *Gateway) Submit(ctx context.Context, draft order.Draft) order.Outcome {
	body, err := json.Marshal(draft)
	if err != nil {
		return order.TransportFailure(fmt.Errorf("orderapi: encode draft: %w", err))
	}

	endpoint := g.baseURL + "/api/orders"
	if draft.IsGuestOrder {
		endpoint = g.baseURL + "/api/orders/guest"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return order.TransportFailure(fmt.Errorf("orderapi: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.http.Do(req)
	if err != nil {
		return order.TransportFailure(fmt.Errorf("orderapi: %w", err))
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return order.TransportFailure(fmt.Errorf("orderapi: read response: %w", err))
	}

	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		var accepted acceptedResponse
		if err := json.Unmarshal(raw, &accepted); err != nil || accepted.ID == "" {
			return order.TransportFailure(fmt.Errorf("orderapi: unparsable accepted response (status %d)", res.StatusCode))
		}
		return order.Accepted(accepted.ID, accepted.OrderNumber)
	}

	var rejection errorResponse
	if err := json.Unmarshal(raw, &rejection); err != nil {
		return order.TransportFailure(fmt.Errorf("orderapi: unparsable error response (status %d)", res.StatusCode))
	}

	if rejection.Code == outOfStockCode || len(rejection.OutOfStockItems) > 0 {
		return order.StockConflict(conflictsFrom(rejection.OutOfStockItems))
	}

	if len(rejection.Details) > 0 {
		fieldErrs := make([]checkout.FieldError, 0, len(rejection.Details))
		for _, d := range rejection.Details {
			field := d.Field
			if field == "" {
				field = d.Path
			}
			msg := d.Msg
			if msg == "" {
				msg = d.Message
			}
			fieldErrs = append(fieldErrs, checkout.FieldError{Field: field, Message: msg})
		}
		return order.ValidationRejected(fieldErrs)
	}

	msg := rejection.Error
	if msg == "" {
		msg = rejection.Message
	}
	if msg == "" {
		return order.TransportFailure(fmt.Errorf("orderapi: empty error response (status %d)", res.StatusCode))
	}

	// Degraded detection: older servers only signal conflicts through stock
	// language in the message.
	if strings.Contains(strings.ToLower(msg), "stock") {
		return order.StockConflict(nil)
	}

	return order.ServerRejection(msg)
}

func conflictsFrom(items []outOfStockItem) []stock.Conflict {
	conflicts := make([]stock.Conflict, 0, len(items))
	for _, it := range items {
		conflicts = append(conflicts, stock.Conflict{
			Line: cart.Line{
				ProductID: it.ProductID,
				Name:      it.Name,
				UnitPrice: decimal.Zero,
				Quantity:  it.Requested,
			},
			Available: it.Available,
		})
	}
	return conflicts
}
