package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/maison-aurelia/storefront/internal/api"
	"github.com/maison-aurelia/storefront/internal/domain"
	"github.com/maison-aurelia/storefront/internal/platform/localstore"
)

type stubBackend struct {
	loginFunc    func(ctx context.Context, email, password string) (api.Credentials, error)
	registerFunc func(ctx context.Context, payload api.RegisterPayload) (domain.User, error)
}

func (b *stubBackend) Login(ctx context.Context, email, password string) (api.Credentials, error) {
	if b.loginFunc == nil {
		return api.Credentials{}, errors.New("unexpected login")
	}
	return b.loginFunc(ctx, email, password)
}

func (b *stubBackend) Register(ctx context.Context, payload api.RegisterPayload) (domain.User, error) {
	if b.registerFunc == nil {
		return domain.User{}, errors.New("unexpected register")
	}
	return b.registerFunc(ctx, payload)
}

func testUser() domain.User {
	return domain.User{
		ID:        "u1",
		Email:     "a@b.com",
		FirstName: "Ada",
		LastName:  "Byron",
		Role:      domain.RoleCustomer,
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func newRecords(t *testing.T) *localstore.Store {
	t.Helper()
	records, err := localstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("localstore: %v", err)
	}
	return records
}

func mustManager(t *testing.T, deps Deps) *Manager {
	t.Helper()
	m, err := NewManager(deps)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func TestLoginSuccessSetsStateAndEmits(t *testing.T) {
	records := newRecords(t)
	backend := &stubBackend{
		loginFunc: func(ctx context.Context, email, password string) (api.Credentials, error) {
			if email != "a@b.com" || password != "pw" {
				t.Fatalf("unexpected credentials %q %q", email, password)
			}
			return api.Credentials{User: testUser(), Token: "tok-1"}, nil
		},
	}
	m := mustManager(t, Deps{Backend: backend, Records: records})
	m.Restore()

	var emitted *domain.User
	m.OnIdentityChange(func(u *domain.User) { emitted = u })

	user, err := m.Login(context.Background(), "a@b.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("unexpected user %+v", user)
	}
	if m.Token() != "tok-1" {
		t.Fatalf("unexpected token %q", m.Token())
	}
	if emitted == nil || emitted.ID != "u1" {
		t.Fatalf("identity event not emitted: %v", emitted)
	}
	if !m.IsAuthenticated() {
		t.Fatal("expected authenticated")
	}

	// both durable records written
	if _, err := records.Get("authToken"); err != nil {
		t.Fatalf("token record missing: %v", err)
	}
	if _, err := records.Get("user"); err != nil {
		t.Fatalf("user record missing: %v", err)
	}
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	records := newRecords(t)
	backend := &stubBackend{
		loginFunc: func(ctx context.Context, email, password string) (api.Credentials, error) {
			return api.Credentials{}, &api.Error{Status: http.StatusUnauthorized, Message: "invalid credentials"}
		},
	}
	m := mustManager(t, Deps{Backend: backend, Records: records})
	m.Restore()

	var emits int
	m.OnIdentityChange(func(*domain.User) { emits++ })

	_, err := m.Login(context.Background(), "a@b.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	var authErr *Error
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if authErr.Message != "invalid credentials" {
		t.Fatalf("unexpected message %q", authErr.Message)
	}

	if m.User() != nil || m.Token() != "" {
		t.Fatal("failed login mutated state")
	}
	if emits != 0 {
		t.Fatal("failed login emitted identity event")
	}
	if _, err := records.Get("authToken"); !errors.Is(err, localstore.ErrNotFound) {
		t.Fatal("failed login wrote a durable token")
	}
}

func TestLoginFailurePreservesPreviousIdentity(t *testing.T) {
	step := 0
	backend := &stubBackend{
		loginFunc: func(ctx context.Context, email, password string) (api.Credentials, error) {
			step++
			if step == 1 {
				return api.Credentials{User: testUser(), Token: "tok-1"}, nil
			}
			return api.Credentials{}, &api.Error{Status: http.StatusUnauthorized, Message: "invalid credentials"}
		},
	}
	m := mustManager(t, Deps{Backend: backend})
	m.Restore()

	if _, err := m.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, err := m.Login(context.Background(), "a@b.com", "typo"); err == nil {
		t.Fatal("expected second login to fail")
	}

	if got := m.User(); got == nil || got.ID != "u1" {
		t.Fatalf("previous identity lost: %v", got)
	}
	if m.Token() != "tok-1" {
		t.Fatal("previous token lost")
	}
}

func TestRegisterMapsFieldsAndAutoLogsIn(t *testing.T) {
	var captured api.RegisterPayload
	backend := &stubBackend{
		registerFunc: func(ctx context.Context, payload api.RegisterPayload) (domain.User, error) {
			captured = payload
			return testUser(), nil
		},
		loginFunc: func(ctx context.Context, email, password string) (api.Credentials, error) {
			if email != "a@b.com" || password != "pw" {
				t.Fatalf("auto-login used wrong credentials %q %q", email, password)
			}
			return api.Credentials{User: testUser(), Token: "tok-1"}, nil
		},
	}
	m := mustManager(t, Deps{Backend: backend})
	m.Restore()

	user, err := m.Register(context.Background(), RegisterData{
		Username:  "ada",
		Email:     "a@b.com",
		Password:  "pw",
		FirstName: "Ada",
		LastName:  "Byron",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("unexpected user %+v", user)
	}

	if captured.PasswordConfirm != "pw" {
		t.Fatalf("password_confirm not duplicated: %+v", captured)
	}
	if captured.FirstName != "Ada" || captured.LastName != "Byron" || captured.Username != "ada" {
		t.Fatalf("field mapping wrong: %+v", captured)
	}
	if m.Token() != "tok-1" {
		t.Fatal("auto-login did not complete")
	}
}

func TestRegisterFailureNormalizedMessage(t *testing.T) {
	backend := &stubBackend{
		registerFunc: func(ctx context.Context, payload api.RegisterPayload) (domain.User, error) {
			return domain.User{}, &api.Error{Status: http.StatusBadRequest, Message: "already taken too short"}
		},
	}
	m := mustManager(t, Deps{Backend: backend})
	m.Restore()

	_, err := m.Register(context.Background(), RegisterData{Email: "a@b.com", Password: "pw"})
	var authErr *Error
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if authErr.Op != "register" || authErr.Message != "already taken too short" {
		t.Fatalf("unexpected error %+v", authErr)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	records := newRecords(t)
	backend := &stubBackend{
		loginFunc: func(ctx context.Context, email, password string) (api.Credentials, error) {
			return api.Credentials{User: testUser(), Token: "tok-1"}, nil
		},
	}
	m := mustManager(t, Deps{Backend: backend, Records: records})
	m.Restore()

	if _, err := m.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	emitted := m.User()
	m.OnIdentityChange(func(u *domain.User) { emitted = u })

	m.Logout()

	if m.User() != nil || m.Token() != "" || m.IsAuthenticated() {
		t.Fatal("logout left in-memory state")
	}
	if emitted != nil {
		t.Fatal("logout did not emit nil identity")
	}

	// simulate a process restart: a fresh manager sees no authenticated user
	fresh := mustManager(t, Deps{Backend: backend, Records: records})
	fresh.Restore()
	if fresh.User() != nil {
		t.Fatal("durable records survived logout")
	}
}

func TestRestoreTrustOnRead(t *testing.T) {
	records := newRecords(t)
	backend := &stubBackend{
		loginFunc: func(ctx context.Context, email, password string) (api.Credentials, error) {
			return api.Credentials{User: testUser(), Token: "tok-1"}, nil
		},
	}
	first := mustManager(t, Deps{Backend: backend, Records: records})
	first.Restore()
	if _, err := first.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// no backend available: restore must not need one
	second := mustManager(t, Deps{Backend: &stubBackend{}, Records: records})
	if !second.Loading() {
		t.Fatal("expected loading before restore")
	}

	var emitted *domain.User
	second.OnIdentityChange(func(u *domain.User) { emitted = u })
	second.Restore()

	if second.Loading() {
		t.Fatal("expected loading false after restore")
	}
	if got := second.User(); got == nil || got.ID != "u1" {
		t.Fatalf("identity not restored: %v", got)
	}
	if second.Token() != "tok-1" {
		t.Fatal("token not restored")
	}
	if emitted == nil || emitted.ID != "u1" {
		t.Fatal("restore did not emit identity")
	}
}

func TestRestoreRequiresBothRecords(t *testing.T) {
	records := newRecords(t)
	if err := records.Set("authToken", []byte(`"tok-1"`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	m := mustManager(t, Deps{Backend: &stubBackend{}, Records: records})
	m.Restore()

	if m.User() != nil || m.Token() != "" {
		t.Fatal("restored from a lone token record")
	}
	if m.Loading() {
		t.Fatal("loading must end even when nothing restores")
	}
}

func TestStaleLoginResponseDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	second := testUser()
	second.ID = "u2"

	backend := &stubBackend{
		loginFunc: func(ctx context.Context, email, password string) (api.Credentials, error) {
			if email == "slow@b.com" {
				close(started)
				<-release
				return api.Credentials{User: testUser(), Token: "tok-slow"}, nil
			}
			return api.Credentials{User: second, Token: "tok-fast"}, nil
		},
	}
	m := mustManager(t, Deps{Backend: backend})
	m.Restore()

	slowDone := make(chan error, 1)
	go func() {
		_, err := m.Login(context.Background(), "slow@b.com", "pw")
		slowDone <- err
	}()
	<-started

	// the second attempt starts and resolves while the first is in flight
	if _, err := m.Login(context.Background(), "fast@b.com", "pw"); err != nil {
		t.Fatalf("fast login: %v", err)
	}
	close(release)

	if err := <-slowDone; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if got := m.User(); got == nil || got.ID != "u2" {
		t.Fatalf("stale response overwrote newer identity: %v", got)
	}
	if m.Token() != "tok-fast" {
		t.Fatalf("stale token applied: %q", m.Token())
	}
}

func TestLoginAfterLogoutDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	backend := &stubBackend{
		loginFunc: func(ctx context.Context, email, password string) (api.Credentials, error) {
			close(started)
			<-release
			return api.Credentials{User: testUser(), Token: "tok-1"}, nil
		},
	}
	m := mustManager(t, Deps{Backend: backend})
	m.Restore()

	done := make(chan error, 1)
	go func() {
		_, err := m.Login(context.Background(), "a@b.com", "pw")
		done <- err
	}()
	<-started

	m.Logout()
	close(release)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded after logout, got %v", err)
	}
	if m.User() != nil {
		t.Fatal("late login response resurrected the session")
	}
}

func TestHasRole(t *testing.T) {
	admin := testUser()
	admin.Role = domain.RoleAdmin
	backend := &stubBackend{
		loginFunc: func(ctx context.Context, email, password string) (api.Credentials, error) {
			return api.Credentials{User: admin, Token: "tok-1"}, nil
		},
	}
	m := mustManager(t, Deps{Backend: backend})
	m.Restore()

	if m.HasRole(domain.RoleAdmin) {
		t.Fatal("unauthenticated HasRole must be false")
	}

	if _, err := m.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !m.HasRole(domain.RoleAdmin, domain.RoleManager) {
		t.Fatal("expected admin in set")
	}
	if m.HasRole(domain.RoleCustomer) {
		t.Fatal("admin is not a customer")
	}
}

func TestTokenExpiryPeek(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	backend := &stubBackend{
		loginFunc: func(ctx context.Context, email, password string) (api.Credentials, error) {
			return api.Credentials{User: testUser(), Token: signed}, nil
		},
	}
	m := mustManager(t, Deps{Backend: backend})
	m.Restore()

	if _, ok := m.TokenExpiry(); ok {
		t.Fatal("expected no expiry before login")
	}

	if _, err := m.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	got, ok := m.TokenExpiry()
	if !ok {
		t.Fatal("expected expiry")
	}
	if !got.Equal(exp) {
		t.Fatalf("expected %v, got %v", exp, got)
	}

	// opaque (non-JWT) tokens simply report no expiry
	opaque := mustManager(t, Deps{Backend: &stubBackend{
		loginFunc: func(ctx context.Context, email, password string) (api.Credentials, error) {
			return api.Credentials{User: testUser(), Token: "opaque-token"}, nil
		},
	}})
	opaque.Restore()
	if _, err := opaque.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, ok := opaque.TokenExpiry(); ok {
		t.Fatal("opaque token must report no expiry")
	}
}
