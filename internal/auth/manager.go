// Package auth owns the login/registration/logout lifecycle against the
// backend, the durable bearer token, and the authenticated identity. The
// identity is pushed to interested parties (the session store mirrors it)
// through a one-directional observer channel, so nothing here imports the
// store.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/maison-aurelia/storefront/internal/api"
	"github.com/maison-aurelia/storefront/internal/domain"
	"github.com/maison-aurelia/storefront/internal/platform/localstore"
)

// Durable record keys, shared with whatever wrote them last.
const (
	tokenRecordKey = "authToken"
	userRecordKey  = "user"
)

// ErrSuperseded indicates the auth attempt resolved after a newer attempt
// started (or after logout) and its result was discarded.
var ErrSuperseded = errors.New("auth: attempt superseded")

// Error is a failed auth operation carrying a display-ready message.
type Error struct {
	Op      string // "login" or "register"
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("auth: %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Backend is the subset of the API client the manager depends on.
type Backend interface {
	Login(ctx context.Context, email, password string) (api.Credentials, error)
	Register(ctx context.Context, payload api.RegisterPayload) (domain.User, error)
}

// RegisterData carries the registration fields as collected by the UI.
type RegisterData struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Deps wires the manager's collaborators. Backend is required; Records is
// optional (no durable credential without it).
type Deps struct {
	Backend Backend
	Records *localstore.Store
	Logger  *zap.Logger
}

// Manager is the authentication session manager. One instance exists per
// process; it is the sole writer of the token and identity.
type Manager struct {
	backend Backend
	records *localstore.Store
	log     *zap.Logger

	mu         sync.Mutex
	user       *domain.User
	token      string
	loading    bool
	generation uint64

	subMu   sync.Mutex
	subs    map[int]func(*domain.User)
	nextSub int
}

// NewManager constructs a Manager. The manager reports Loading() until
// Restore has run.
func NewManager(deps Deps) (*Manager, error) {
	if deps.Backend == nil {
		return nil, errors.New("auth: backend is required")
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		backend: deps.Backend,
		records: deps.Records,
		log:     log,
		loading: true,
		subs:    make(map[int]func(*domain.User)),
	}, nil
}

// OnIdentityChange registers fn to run whenever the authenticated identity
// changes; fn receives nil on sign-out. Returns an unsubscribe func.
func (m *Manager) OnIdentityChange(fn func(*domain.User)) (unsubscribe func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) emit(user *domain.User) {
	m.subMu.Lock()
	fns := make([]func(*domain.User), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		if user == nil {
			fn(nil)
			continue
		}
		u := *user
		fn(&u)
	}
}

// Restore reads the durable token and user records and, when both are
// present, restores the in-memory session without revalidating the token
// against the backend (trust-on-read). Loading() is true only until this
// returns.
func (m *Manager) Restore() {
	var (
		token string
		user  *domain.User
	)
	if m.records != nil {
		token, user = m.readCredentials()
	}

	m.mu.Lock()
	if token != "" && user != nil {
		m.token = token
		m.user = user
	}
	m.loading = false
	restored := m.user
	m.mu.Unlock()

	if restored != nil {
		m.log.Info("auth: session restored", zap.String("user", restored.ID), zap.String("role", string(restored.Role)))
		m.emit(restored)
	}
}

// readCredentials returns both records or neither.
func (m *Manager) readCredentials() (string, *domain.User) {
	rawToken, err := m.records.Get(tokenRecordKey)
	if err != nil {
		return "", nil
	}
	var token string
	if err := json.Unmarshal(rawToken, &token); err != nil || strings.TrimSpace(token) == "" {
		return "", nil
	}

	rawUser, err := m.records.Get(userRecordKey)
	if err != nil {
		return "", nil
	}
	var user domain.User
	if err := json.Unmarshal(rawUser, &user); err != nil || user.ID == "" {
		return "", nil
	}
	return token, &user
}

// Login exchanges credentials for a session. Exactly one backend attempt per
// call; failures surface as *Error and leave all state untouched. A result
// resolving after a newer attempt or a logout is discarded with
// ErrSuperseded.
func (m *Manager) Login(ctx context.Context, email, password string) (*domain.User, error) {
	m.mu.Lock()
	m.generation++
	attempt := m.generation
	m.mu.Unlock()

	creds, err := m.backend.Login(ctx, email, password)
	if err != nil {
		m.log.Warn("auth: login failed", zap.Int("status", api.StatusOf(err)))
		return nil, &Error{Op: "login", Message: api.MessageOf(err), Err: err}
	}

	user := creds.User
	m.mu.Lock()
	if m.generation != attempt {
		m.mu.Unlock()
		return nil, ErrSuperseded
	}
	m.token = creds.Token
	m.user = &user
	m.mu.Unlock()

	m.saveCredentials(creds.Token, user)
	m.log.Info("auth: signed in", zap.String("user", user.ID), zap.String("role", string(user.Role)))

	out := user
	m.emit(&out)
	return &out, nil
}

// Register creates the account (mapping UI field names onto the backend's,
// with the password duplicated into the confirmation field) and, on success,
// immediately logs in with the same credentials.
func (m *Manager) Register(ctx context.Context, data RegisterData) (*domain.User, error) {
	payload := api.RegisterPayload{
		Username:        data.Username,
		Email:           data.Email,
		Password:        data.Password,
		PasswordConfirm: data.Password,
		FirstName:       data.FirstName,
		LastName:        data.LastName,
	}
	if _, err := m.backend.Register(ctx, payload); err != nil {
		m.log.Warn("auth: registration failed", zap.Int("status", api.StatusOf(err)))
		return nil, &Error{Op: "register", Message: api.MessageOf(err), Err: err}
	}
	return m.Login(ctx, data.Email, data.Password)
}

// Logout clears the session. It always succeeds and makes no backend call.
// Any in-flight auth attempt is invalidated so a late response cannot
// resurrect the identity.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.generation++
	hadUser := m.user != nil
	m.user = nil
	m.token = ""
	m.mu.Unlock()

	if m.records != nil {
		if err := m.records.Delete(tokenRecordKey); err != nil {
			m.log.Debug("auth: delete token record", zap.Error(err))
		}
		if err := m.records.Delete(userRecordKey); err != nil {
			m.log.Debug("auth: delete user record", zap.Error(err))
		}
	}

	if hadUser {
		m.log.Info("auth: signed out")
	}
	m.emit(nil)
}

func (m *Manager) saveCredentials(token string, user domain.User) {
	if m.records == nil {
		return
	}
	// storage is best-effort; in-memory state is authoritative while alive
	if raw, err := json.Marshal(token); err == nil {
		if err := m.records.Set(tokenRecordKey, raw); err != nil {
			m.log.Debug("auth: persist token", zap.Error(err))
		}
	}
	if raw, err := json.Marshal(user); err == nil {
		if err := m.records.Set(userRecordKey, raw); err != nil {
			m.log.Debug("auth: persist user", zap.Error(err))
		}
	}
}

// User returns a copy of the authenticated identity, or nil.
func (m *Manager) User() *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Token returns the current bearer token, empty when unauthenticated.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// IsAuthenticated reports whether an identity is held.
func (m *Manager) IsAuthenticated() bool {
	return m.User() != nil
}

// Loading is true only during the initial Restore and false forever after.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// HasRole reports whether the current user's role is in the given set;
// false when unauthenticated.
func (m *Manager) HasRole(roles ...domain.Role) bool {
	user := m.User()
	if user == nil {
		return false
	}
	return domain.Roles(roles).Has(user.Role)
}

// TokenExpiry peeks at the bearer token's exp claim without verifying the
// signature (the token is trusted as read, never validated client-side).
// ok is false when no token is held or it carries no parsable expiry.
func (m *Manager) TokenExpiry() (expiry time.Time, ok bool) {
	token := m.Token()
	if token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
