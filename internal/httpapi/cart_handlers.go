package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maison-aurelia/storefront/internal/domain"
	"github.com/maison-aurelia/storefront/internal/platform/httpx"
)

type addCartItemRequest struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handlers) getCart(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.buildCartView())
}

func (h *Handlers) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := decodeBody(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_body", "malformed request body", http.StatusBadRequest))
		return
	}
	if req.Product.ID == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_product", "product id is required", http.StatusBadRequest))
		return
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	h.store.AddToCart(req.Product, quantity)
	httpx.WriteJSON(w, http.StatusOK, h.buildCartView())
}

func (h *Handlers) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if err := decodeBody(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_body", "malformed request body", http.StatusBadRequest))
		return
	}
	h.store.UpdateCartItemQuantity(chi.URLParam(r, "productID"), req.Quantity)
	httpx.WriteJSON(w, http.StatusOK, h.buildCartView())
}

func (h *Handlers) removeCartItem(w http.ResponseWriter, r *http.Request) {
	h.store.RemoveFromCart(chi.URLParam(r, "productID"))
	httpx.WriteJSON(w, http.StatusOK, h.buildCartView())
}

func (h *Handlers) clearCart(w http.ResponseWriter, r *http.Request) {
	h.store.ClearCart()
	httpx.WriteJSON(w, http.StatusOK, h.buildCartView())
}

func (h *Handlers) toggleCartPanel(w http.ResponseWriter, r *http.Request) {
	h.store.ToggleCartPanel()
	httpx.WriteJSON(w, http.StatusOK, h.buildCartView())
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	return dec.Decode(dst)
}
