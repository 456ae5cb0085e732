// Package httpapi exposes the session state and its commands as a local JSON
// surface for the rendering layer. Routes are grouped per concern: session
// snapshot, cart and wishlist commands, auth lifecycle, checkout, catalog
// reads, and the role-gated admin catalog.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/maison-aurelia/storefront/internal/api"
	"github.com/maison-aurelia/storefront/internal/auth"
	"github.com/maison-aurelia/storefront/internal/domain"
	"github.com/maison-aurelia/storefront/internal/platform/httpx"
	"github.com/maison-aurelia/storefront/internal/store"
)

const maxBodySize = 64 * 1024

// Deps wires the handler collaborators.
type Deps struct {
	Store    *store.Store
	Auth     *auth.Manager
	Backend  *api.Client
	Sessions *SessionCodec
	Logger   *zap.Logger
}

// Handlers serves the local JSON surface.
type Handlers struct {
	store    *store.Store
	auth     *auth.Manager
	backend  *api.Client
	sessions *SessionCodec
	log      *zap.Logger
}

// NewHandlers validates and constructs the handler set.
func NewHandlers(deps Deps) (*Handlers, error) {
	if deps.Store == nil {
		return nil, errors.New("httpapi: store is required")
	}
	if deps.Auth == nil {
		return nil, errors.New("httpapi: auth manager is required")
	}
	if deps.Backend == nil {
		return nil, errors.New("httpapi: backend client is required")
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		store:    deps.Store,
		auth:     deps.Auth,
		backend:  deps.Backend,
		sessions: deps.Sessions,
		log:      log,
	}, nil
}

// Router assembles the chi router with the standard middleware stack.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if h.sessions != nil {
		r.Use(h.sessions.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", h.getSession)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Delete("/", h.clearCart)
			r.Post("/items", h.addCartItem)
			r.Patch("/items/{productID}", h.updateCartItem)
			r.Delete("/items/{productID}", h.removeCartItem)
			r.Post("/panel/toggle", h.toggleCartPanel)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", h.getWishlist)
			r.Put("/{productID}", h.addWishlistItem)
			r.Delete("/{productID}", h.removeWishlistItem)
		})
		r.Post("/likes/{productID}/toggle", h.toggleLike)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.login)
			r.Post("/register", h.register)
			r.Post("/logout", h.logout)
		})

		r.Post("/checkout", h.checkout)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Get("/{productID}", h.getProduct)
		})

		r.Route("/admin/products", func(r chi.Router) {
			r.Use(h.requireRole(domain.RoleAdmin, domain.RoleManager))
			r.Post("/", h.adminCreateProduct)
			r.Put("/{productID}", h.adminUpdateProduct)
			r.Delete("/{productID}", h.adminDeleteProduct)
		})
	})

	return r
}

// requestLogger emits one structured line per request.
func (h *Handlers) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// requireRole gates a subtree on the authenticated role set.
func (h *Handlers) requireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !h.auth.IsAuthenticated() {
				httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
				return
			}
			if !h.auth.HasRole(roles...) {
				httpx.WriteError(ctx, w, httpx.NewError("forbidden", "insufficient role", http.StatusForbidden))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeBackendError maps a backend client failure onto the local envelope.
func (h *Handlers) writeBackendError(w http.ResponseWriter, r *http.Request, err error) {
	status := api.StatusOf(err)
	code := "backend_error"
	if status == 0 {
		status = http.StatusBadGateway
		code = "backend_unreachable"
	}
	httpx.WriteError(r.Context(), w, httpx.NewError(code, api.MessageOf(err), status))
}
