package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maison-aurelia/storefront/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL: srv.URL,
		Token:   func() string { return token },
	})
	require.NoError(t, err)
	return client
}

func TestClientSendsHeaders(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		_ = json.NewEncoder(w).Encode(map[string]any{"data": domain.Product{ID: "p1"}, "success": true})
	}, "tok-123")

	_, err := client.GetProduct(context.Background(), "p1")
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "/api/v1/products/p1/", captured.URL.Path)
	assert.Equal(t, "Bearer tok-123", captured.Header.Get("Authorization"))
	assert.NotEmpty(t, captured.Header.Get("X-Request-ID"))
}

func TestClientOmitsBearerWhenUnauthenticated(t *testing.T) {
	var auth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": domain.Product{}, "success": true})
	}, "")

	_, err := client.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestLoginDecodesCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/users/login/", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body["email"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"user":  domain.User{ID: "u1", Email: "a@b.com", Role: domain.RoleCustomer},
				"token": "tok-1",
			},
			"success": true,
		})
	}, "")

	creds, err := client.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", creds.User.ID)
	assert.Equal(t, "tok-1", creds.Token)
}

func TestListProductsEncodesFiltersAndPage(t *testing.T) {
	var query map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_ = json.NewEncoder(w).Encode(Page[domain.Product]{
			Results: []domain.Product{{ID: "p1"}, {ID: "p2"}},
			Count:   2,
		})
	}, "")

	onOffer := true
	page, err := client.ListProducts(context.Background(), domain.ProductFilters{
		Category: []domain.ProductCategory{domain.CategoryRings, domain.CategoryEarrings},
		OnOffer:  &onOffer,
		SortBy:   domain.SortPriceAsc,
		Search:   "gold",
	}, 2, 24)
	require.NoError(t, err)

	assert.Len(t, page.Results, 2)
	assert.Equal(t, []string{"rings", "earrings"}, query["category"])
	assert.Equal(t, []string{"true"}, query["onOffer"])
	assert.Equal(t, []string{"price_asc"}, query["sortBy"])
	assert.Equal(t, []string{"gold"}, query["search"])
	assert.Equal(t, []string{"2"}, query["page"])
	assert.Equal(t, []string{"24"}, query["pageSize"])
}

func TestCreateOrderSetsIdempotencyKey(t *testing.T) {
	var key string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("Idempotency-Key")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": domain.Order{ID: "o1"}, "success": true})
	}, "tok")

	order, err := client.CreateOrder(context.Background(), OrderInput{
		Items:         []OrderLineInput{{ProductID: "p1", Quantity: 2}},
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
	assert.NotEmpty(t, key)
}

func TestErrorNormalization(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"bare string", `"invalid credentials"`, "invalid credentials"},
		{"flat message", `{"message":"email already registered"}`, "email already registered"},
		{
			"field map",
			`{"email":["already taken"],"username":["too short","contains spaces"]}`,
			"already taken too short contains spaces",
		},
		{"empty body", ``, "request failed, please try again"},
		{"plain text", `upstream exploded`, "upstream exploded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tc.body))
			}, "")

			_, err := client.GetProduct(context.Background(), "p1")
			require.Error(t, err)

			apiErr, ok := err.(*Error)
			require.True(t, ok, "expected *Error, got %T", err)
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Equal(t, tc.want, apiErr.Message)
		})
	}
}

func TestMessageOfFallsBackForTransportErrors(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = client.GetProduct(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, "request failed, please try again", MessageOf(err))
	assert.Equal(t, 0, StatusOf(err))
}

func TestRegisterPayloadFieldNames(t *testing.T) {
	var body map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]any{"data": domain.User{ID: "u1"}, "success": true})
	}, "")

	_, err := client.Register(context.Background(), RegisterPayload{
		Username:        "ada",
		Email:           "a@b.com",
		Password:        "pw",
		PasswordConfirm: "pw",
		FirstName:       "Ada",
		LastName:        "Byron",
	})
	require.NoError(t, err)

	assert.Equal(t, "pw", body["password_confirm"])
	assert.Equal(t, "Ada", body["first_name"])
	assert.Equal(t, "Byron", body["last_name"])
}
