package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maison-aurelia/storefront/internal/platform/httpx"
)

type wishlistView struct {
	ProductIDs []string `json:"productIds"`
}

type likeView struct {
	ProductID string `json:"productId"`
	Liked     bool   `json:"liked"`
}

func (h *Handlers) getWishlist(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, wishlistView{ProductIDs: h.store.Wishlist()})
}

func (h *Handlers) addWishlistItem(w http.ResponseWriter, r *http.Request) {
	h.store.AddToWishlist(chi.URLParam(r, "productID"))
	httpx.WriteJSON(w, http.StatusOK, wishlistView{ProductIDs: h.store.Wishlist()})
}

func (h *Handlers) removeWishlistItem(w http.ResponseWriter, r *http.Request) {
	h.store.RemoveFromWishlist(chi.URLParam(r, "productID"))
	httpx.WriteJSON(w, http.StatusOK, wishlistView{ProductIDs: h.store.Wishlist()})
}

func (h *Handlers) toggleLike(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	h.store.ToggleLike(productID)
	httpx.WriteJSON(w, http.StatusOK, likeView{
		ProductID: productID,
		Liked:     h.store.IsLiked(productID),
	})
}
