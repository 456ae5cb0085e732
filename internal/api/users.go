package api

import (
	"context"
	"net/http"

	"github.com/maison-aurelia/storefront/internal/domain"
)

// RegisterPayload is the registration body in the backend's field naming.
// The auth manager maps UI field names onto this shape, duplicating the
// single collected password into PasswordConfirm.
type RegisterPayload struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

// Credentials is the login response pairing the identity with its bearer token.
type Credentials struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// Login exchanges credentials for {user, token}. Exactly one attempt; the
// caller decides whether to retry.
func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	body := map[string]string{"email": email, "password": password}
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("users", "login"), body, requestOptions{})
	if err != nil {
		return Credentials{}, err
	}
	return doJSON[Credentials](c, req)
}

// Register creates an account. Validation failures come back in an
// unpredictable payload shape; the returned *Error carries the flattened
// message.
func (c *Client) Register(ctx context.Context, payload RegisterPayload) (domain.User, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("users", "register"), payload, requestOptions{})
	if err != nil {
		return domain.User{}, err
	}
	return doJSON[domain.User](c, req)
}

// Profile fetches the authenticated profile.
func (c *Client) Profile(ctx context.Context) (domain.User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("users", "profile"), nil, requestOptions{})
	if err != nil {
		return domain.User{}, err
	}
	return doJSON[domain.User](c, req)
}

// UpdateProfile updates the authenticated profile.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (domain.User, error) {
	req, err := c.newRequest(ctx, http.MethodPut, c.endpoint("users", "profile"), update, requestOptions{})
	if err != nil {
		return domain.User{}, err
	}
	return doJSON[domain.User](c, req)
}
