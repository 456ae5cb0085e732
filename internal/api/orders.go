package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/maison-aurelia/storefront/internal/domain"
)

// OrderLineInput references a product and quantity for order submission.
type OrderLineInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderInput is the checkout submission body.
type OrderInput struct {
	Items           []OrderLineInput `json:"items"`
	ShippingAddress domain.Address   `json:"shippingAddress"`
	PaymentMethod   string           `json:"paymentMethod"`
	// IdempotencyKey deduplicates retried submissions; generated when empty.
	IdempotencyKey string `json:"-"`
}

// CreateOrder submits a checkout. The Idempotency-Key header protects against
// double submission on flaky connections.
func (c *Client) CreateOrder(ctx context.Context, input OrderInput) (domain.Order, error) {
	key := strings.TrimSpace(input.IdempotencyKey)
	if key == "" {
		key = "ord-" + ulid.Make().String()
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("orders"), input, requestOptions{idempotencyKey: key})
	if err != nil {
		return domain.Order{}, err
	}
	return doJSON[domain.Order](c, req)
}

// ListOrders fetches the caller's order history.
func (c *Client) ListOrders(ctx context.Context, page, pageSize int) (Page[domain.Order], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("orders"), nil, requestOptions{query: q})
	if err != nil {
		return Page[domain.Order]{}, err
	}
	return doPage[domain.Order](c, req)
}

// GetOrder fetches a single order.
func (c *Client) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("orders", id), nil, requestOptions{})
	if err != nil {
		return domain.Order{}, err
	}
	return doJSON[domain.Order](c, req)
}

// UpdateOrderStatus transitions an order (staff surface).
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	body := map[string]string{"status": string(status)}
	req, err := c.newRequest(ctx, http.MethodPatch, c.endpoint("orders", id, "status"), body, requestOptions{})
	if err != nil {
		return domain.Order{}, err
	}
	return doJSON[domain.Order](c, req)
}
