// Package store implements the session/cart state container: the single
// source of truth for the cart, wishlist, liked set, and mirrored user
// identity. Commands are total and never error; malformed input degrades to a
// silent no-op. Every state transition persists the durable subset
// best-effort and notifies subscribers synchronously.
package store

import (
	"sync"

	"go.uber.org/zap"

	"github.com/maison-aurelia/storefront/internal/domain"
)

// Deps wires optional collaborators into the store. A zero Deps value yields
// a fully functional in-memory store, which keeps test setup trivial.
type Deps struct {
	Persister Persister
	Logger    *zap.Logger
}

// Store is the process-wide session state container. One instance exists per
// running application; it is constructed explicitly and injected, never
// reached through package state.
type Store struct {
	mu       sync.RWMutex
	cart     []domain.CartLine
	wishlist []string
	liked    []string
	user     *domain.User
	cartOpen bool

	subMu  sync.Mutex
	subs   map[int]func()
	nextID int

	persister Persister
	log       *zap.Logger
}

// New constructs a Store and rehydrates it from the persister when one is
// configured. A missing or corrupt snapshot starts the store empty; the UI
// panel flag always starts closed regardless of prior state.
func New(deps Deps) *Store {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Store{
		subs:      make(map[int]func()),
		persister: deps.Persister,
		log:       log,
	}

	if deps.Persister != nil {
		snap, ok, err := deps.Persister.Load()
		if err != nil {
			log.Warn("store: rehydration failed, starting empty", zap.Error(err))
		} else if ok {
			s.restore(snap)
		}
	}
	return s
}

func (s *Store) restore(snap Snapshot) {
	s.cart = normalizeCart(snap.Cart)
	s.wishlist = dedupe(snap.Wishlist)
	s.liked = dedupe(snap.LikedProducts)
	if snap.User != nil {
		u := *snap.User
		s.user = &u
	}
}

// normalizeCart drops lines a buggy or stale snapshot could never produce
// through commands: empty ids, non-positive quantities, duplicate ids.
func normalizeCart(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	seen := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.Product.ID == "" || line.Quantity < 1 {
			continue
		}
		if idx, ok := seen[line.Product.ID]; ok {
			out[idx].Quantity += line.Quantity
			continue
		}
		seen[line.Product.ID] = len(out)
		out = append(out, line)
	}
	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Subscribe registers fn to run synchronously after every state transition.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// mutate runs fn under the write lock; fn reports whether state changed.
// On change the durable subset is written best-effort and subscribers are
// notified after the lock is released, so callbacks may re-query the store.
func (s *Store) mutate(fn func() bool) {
	s.mu.Lock()
	changed := fn()
	var snap Snapshot
	if changed && s.persister != nil {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	if s.persister != nil {
		if err := s.persister.Save(snap); err != nil {
			s.log.Debug("store: persist failed", zap.Error(err))
		}
	}
	s.notify()
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Cart:          append([]domain.CartLine(nil), s.cart...),
		Wishlist:      append([]string(nil), s.wishlist...),
		LikedProducts: append([]string(nil), s.liked...),
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Snapshot returns the current durable view of the store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// AddToCart merges quantity into the existing line for product.ID, or appends
// a new line preserving first-add order. Non-positive quantities and products
// without an id are ignored. Stock limits are not enforced here; the backend
// is authoritative on stock.
func (s *Store) AddToCart(product domain.Product, quantity int) {
	if product.ID == "" || quantity <= 0 {
		return
	}
	s.mutate(func() bool {
		for i := range s.cart {
			if s.cart[i].Product.ID == product.ID {
				s.cart[i].Quantity += quantity
				return true
			}
		}
		s.cart = append(s.cart, domain.CartLine{Product: product, Quantity: quantity})
		return true
	})
}

// RemoveFromCart removes the line for productID; absent ids are a no-op.
func (s *Store) RemoveFromCart(productID string) {
	s.mutate(func() bool {
		return s.removeLineLocked(productID)
	})
}

func (s *Store) removeLineLocked(productID string) bool {
	for i := range s.cart {
		if s.cart[i].Product.ID == productID {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateCartItemQuantity sets the line's quantity to exactly quantity.
// A value of zero or below removes the line. Unknown ids are a no-op.
func (s *Store) UpdateCartItemQuantity(productID string, quantity int) {
	s.mutate(func() bool {
		if quantity <= 0 {
			return s.removeLineLocked(productID)
		}
		for i := range s.cart {
			if s.cart[i].Product.ID == productID {
				if s.cart[i].Quantity == quantity {
					return false
				}
				s.cart[i].Quantity = quantity
				return true
			}
		}
		return false
	})
}

// ClearCart empties the cart unconditionally. Used on successful checkout.
func (s *Store) ClearCart() {
	s.mutate(func() bool {
		if len(s.cart) == 0 {
			return false
		}
		s.cart = nil
		return true
	})
}

// Cart returns a copy of the cart lines in insertion order.
func (s *Store) Cart() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CartLine(nil), s.cart...)
}

// CartTotal recomputes the cart total from current line data on every call.
// It is never cached, so it cannot drift from its inputs.
func (s *Store) CartTotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, line := range s.cart {
		total += line.Product.Price * float64(line.Quantity)
	}
	return total
}

// CartItemCount returns the sum of quantities across lines (not line count).
func (s *Store) CartItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int
	for _, line := range s.cart {
		count += line.Quantity
	}
	return count
}

// AddToWishlist adds productID to the wishlist; already-present ids and empty
// ids are a no-op.
func (s *Store) AddToWishlist(productID string) {
	if productID == "" {
		return
	}
	s.mutate(func() bool {
		for _, id := range s.wishlist {
			if id == productID {
				return false
			}
		}
		s.wishlist = append(s.wishlist, productID)
		return true
	})
}

// RemoveFromWishlist removes productID from the wishlist if present.
func (s *Store) RemoveFromWishlist(productID string) {
	s.mutate(func() bool {
		for i, id := range s.wishlist {
			if id == productID {
				s.wishlist = append(s.wishlist[:i], s.wishlist[i+1:]...)
				return true
			}
		}
		return false
	})
}

// IsInWishlist reports wishlist membership.
func (s *Store) IsInWishlist(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

// Wishlist returns a copy of the wishlist in insertion order.
func (s *Store) Wishlist() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.wishlist...)
}

// ToggleLike flips productID's presence in the liked set; two calls in
// succession restore the original state.
func (s *Store) ToggleLike(productID string) {
	if productID == "" {
		return
	}
	s.mutate(func() bool {
		for i, id := range s.liked {
			if id == productID {
				s.liked = append(s.liked[:i], s.liked[i+1:]...)
				return true
			}
		}
		s.liked = append(s.liked, productID)
		return true
	})
}

// IsLiked reports liked-set membership.
func (s *Store) IsLiked(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.liked {
		if id == productID {
			return true
		}
	}
	return false
}

// LikedProducts returns a copy of the liked set in insertion order.
func (s *Store) LikedProducts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.liked...)
}

// SetUser replaces the mirrored identity wholesale; nil clears it. The store
// mirrors but does not own the identity; the auth manager is the sole writer.
func (s *Store) SetUser(user *domain.User) {
	s.mutate(func() bool {
		if user == nil {
			if s.user == nil {
				return false
			}
			s.user = nil
			return true
		}
		if s.user != nil && *s.user == *user {
			return false
		}
		u := *user
		s.user = &u
		return true
	})
}

// User returns a copy of the mirrored identity, or nil when signed out.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// ToggleCartPanel flips the transient cart-panel flag. The flag never touches
// cart data and is never persisted.
func (s *Store) ToggleCartPanel() {
	s.mutate(func() bool {
		s.cartOpen = !s.cartOpen
		return true
	})
}

// CartPanelOpen reports whether the cart panel is visible.
func (s *Store) CartPanelOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartOpen
}
