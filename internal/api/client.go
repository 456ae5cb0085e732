// Package api is the typed client for the storefront backend REST contract.
// The backend is consumed as an opaque request/response boundary: resources
// for products, users/auth, orders, wishlist, offers, reviews, and analytics,
// all version-prefixed and wrapped in a standard envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultTimeout    = 8 * time.Second
	defaultAPIVersion = "v1"

	headerRequestID   = "X-Request-ID"
	headerIdempotency = "Idempotency-Key"
)

// Doer matches the subset of http.Client used by the Client.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// TokenSource supplies the current bearer token; empty means unauthenticated.
type TokenSource func() string

// Config carries client construction parameters.
type Config struct {
	BaseURL    string
	APIVersion string
	HTTPClient Doer
	Token      TokenSource
	Logger     *zap.Logger
}

// Client issues requests against the backend API.
type Client struct {
	base  string
	http  Doer
	token TokenSource
	log   *zap.Logger
}

// NewClient constructs a Client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api: base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("api: parse base URL: %w", err)
	}

	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = defaultAPIVersion
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	token := cfg.Token
	if token == nil {
		token = func() string { return "" }
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		base:  base + "/api/" + version,
		http:  httpClient,
		token: token,
		log:   log,
	}, nil
}

// envelope mirrors the backend's standard {data, message, success} wrapper.
type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

// Page mirrors the backend's paginated listing wrapper.
type Page[T any] struct {
	Results  []T     `json:"results"`
	Count    int     `json:"count"`
	Next     *string `json:"next,omitempty"`
	Previous *string `json:"previous,omitempty"`
}

// endpoint builds a backend URL. The backend requires trailing slashes on
// collection and resource paths.
func (c *Client) endpoint(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, url.PathEscape(s))
	}
	return c.base + "/" + strings.Join(parts, "/") + "/"
}

type requestOptions struct {
	query          url.Values
	idempotencyKey string
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any, opts requestOptions) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	if len(opts.query) > 0 {
		endpoint = endpoint + "?" + opts.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(headerRequestID, uuid.NewString())
	if opts.idempotencyKey != "" {
		req.Header.Set(headerIdempotency, opts.idempotencyKey)
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do executes the request and returns the raw response, converting 4xx/5xx
// into a normalized *Error.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("api: transport failure",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Path),
			zap.Error(err))
		return nil, fmt.Errorf("api: %s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, c.errorFromResponse(resp)
	}
	return resp, nil
}

func (c *Client) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	apiErr := &Error{
		Status:  resp.StatusCode,
		Code:    strings.TrimSpace(resp.Header.Get("X-Error-Code")),
		Message: normalizeMessage(body),
	}
	c.log.Debug("api: error response",
		zap.Int("status", resp.StatusCode),
		zap.String("message", apiErr.Message))
	return apiErr
}

// doJSON executes the request and decodes the enveloped payload.
func doJSON[T any](c *Client, req *http.Request) (T, error) {
	var zero T
	resp, err := c.do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	var env envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return zero, fmt.Errorf("api: decode response: %w", err)
	}
	return env.Data, nil
}

// doPage executes the request and decodes a paginated listing.
func doPage[T any](c *Client, req *http.Request) (Page[T], error) {
	resp, err := c.do(req)
	if err != nil {
		return Page[T]{}, err
	}
	defer resp.Body.Close()

	var page Page[T]
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return Page[T]{}, fmt.Errorf("api: decode page: %w", err)
	}
	return page, nil
}

// doDiscard executes the request and drops the body.
func (c *Client) doDiscard(req *http.Request) error {
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	return nil
}
