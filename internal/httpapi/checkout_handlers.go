package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/maison-aurelia/storefront/internal/api"
	"github.com/maison-aurelia/storefront/internal/domain"
	"github.com/maison-aurelia/storefront/internal/platform/httpx"
)

type checkoutRequest struct {
	ShippingAddress domain.Address `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
}

type checkoutResponse struct {
	Order domain.Order `json:"order"`
	Cart  cartView     `json:"cart"`
}

// checkout submits the current cart as an order. The cart is cleared only
// after the backend accepts the order; any failure leaves it untouched.
func (h *Handlers) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.auth.IsAuthenticated() {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "sign in to check out", http.StatusUnauthorized))
		return
	}

	var req checkoutRequest
	if err := decodeBody(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_body", "malformed request body", http.StatusBadRequest))
		return
	}
	if req.PaymentMethod == "" {
		httpx.WriteError(ctx, w, httpx.NewError("missing_payment_method", "payment method is required", http.StatusBadRequest))
		return
	}

	lines := h.store.Cart()
	if len(lines) == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("empty_cart", "the cart is empty", http.StatusUnprocessableEntity))
		return
	}
	items := make([]api.OrderLineInput, 0, len(lines))
	for _, line := range lines {
		items = append(items, api.OrderLineInput{ProductID: line.Product.ID, Quantity: line.Quantity})
	}

	order, err := h.backend.CreateOrder(ctx, api.OrderInput{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		h.writeBackendError(w, r, err)
		return
	}

	h.store.ClearCart()
	h.log.Info("checkout completed",
		zap.String("order", order.ID),
		zap.Int("lines", len(items)))
	httpx.WriteJSON(w, http.StatusCreated, checkoutResponse{Order: order, Cart: h.buildCartView()})
}
