package stockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bylucie/storefront/internal/domain/stock"
)

// ErrUnavailable wraps every lookup failure. Callers treat it as "snapshot
// unavailable" and must not block the shopper on it.
var ErrUnavailable = errors.New("stockapi: stock lookup unavailable")

const defaultTimeout = 15 * time.Second

// Client queries the stock-availability endpoint for a batch of product ids.
// The call is idempotent and side-effect free; it is made at wizard mount and
// before every forward transition.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type checkRequest struct {
	ProductIDs []string `json:"productIds"`
}

// Check returns availability for exactly the ids the service recognizes;
// unrecognized ids are omitted from the snapshot.
func (c *Client) Check(ctx context.Context, productIDs []string) (stock.Snapshot, error) {
	if len(productIDs) == 0 {
		return stock.Snapshot{}, nil
	}

	body, err := json.Marshal(checkRequest{ProductIDs: productIDs})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/products/stock-check", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	}

	var snap stock.Snapshot
	if err := json.NewDecoder(res.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}
	return snap, nil
}
