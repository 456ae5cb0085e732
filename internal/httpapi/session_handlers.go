package httpapi

import (
	"net/http"
	"time"

	"github.com/maison-aurelia/storefront/internal/domain"
	"github.com/maison-aurelia/storefront/internal/platform/httpx"
)

// cartView is the derived cart state returned after every cart command so
// the rendering layer can repaint without a second round-trip.
type cartView struct {
	Lines     []domain.CartLine `json:"lines"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"itemCount"`
	PanelOpen bool              `json:"panelOpen"`
}

// sessionView is the full client state snapshot.
type sessionView struct {
	User            *domain.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	IsLoading       bool         `json:"isLoading"`
	TokenExpiresAt  *time.Time   `json:"tokenExpiresAt,omitempty"`
	Cart            cartView     `json:"cart"`
	Wishlist        []string     `json:"wishlist"`
	LikedProducts   []string     `json:"likedProducts"`
	CSRFToken       string       `json:"csrfToken,omitempty"`
}

func (h *Handlers) buildCartView() cartView {
	return cartView{
		Lines:     h.store.Cart(),
		Total:     h.store.CartTotal(),
		ItemCount: h.store.CartItemCount(),
		PanelOpen: h.store.CartPanelOpen(),
	}
}

func (h *Handlers) buildSessionView(r *http.Request) sessionView {
	view := sessionView{
		User:            h.store.User(),
		IsAuthenticated: h.auth.IsAuthenticated(),
		IsLoading:       h.auth.Loading(),
		Cart:            h.buildCartView(),
		Wishlist:        h.store.Wishlist(),
		LikedProducts:   h.store.LikedProducts(),
	}
	if expiry, ok := h.auth.TokenExpiry(); ok {
		view.TokenExpiresAt = &expiry
	}
	if sess, ok := sessionFromContext(r.Context()); ok {
		view.CSRFToken = sess.CSRFToken
	}
	return view
}

func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.buildSessionView(r))
}
