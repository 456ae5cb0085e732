package api

import (
	"context"
	"net/http"
	"time"

	"github.com/maison-aurelia/storefront/internal/domain"
)

// Wishlist, offers, reviews, and analytics are peripheral resources consumed
// by individual pages rather than the core session state.

// ListWishlist fetches the server-side wishlist products for the caller.
func (c *Client) ListWishlist(ctx context.Context) ([]domain.Product, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("wishlist"), nil, requestOptions{})
	if err != nil {
		return nil, err
	}
	return doJSON[[]domain.Product](c, req)
}

// AddToWishlist records productID on the server-side wishlist.
func (c *Client) AddToWishlist(ctx context.Context, productID string) error {
	body := map[string]string{"productId": productID}
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("wishlist"), body, requestOptions{})
	if err != nil {
		return err
	}
	return c.doDiscard(req)
}

// RemoveFromWishlist deletes productID from the server-side wishlist.
func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.endpoint("wishlist", productID), nil, requestOptions{})
	if err != nil {
		return err
	}
	return c.doDiscard(req)
}

// ListOffers fetches all offers.
func (c *Client) ListOffers(ctx context.Context) ([]domain.Offer, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("offers"), nil, requestOptions{})
	if err != nil {
		return nil, err
	}
	return doJSON[[]domain.Offer](c, req)
}

// ListActiveOffers fetches offers currently in their validity window.
func (c *Client) ListActiveOffers(ctx context.Context) ([]domain.Offer, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("offers", "active"), nil, requestOptions{})
	if err != nil {
		return nil, err
	}
	return doJSON[[]domain.Offer](c, req)
}

// OfferInput carries the writable offer fields for the admin catalog.
type OfferInput struct {
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	DiscountPercentage float64   `json:"discountPercentage"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate"`
	ProductIDs         []string  `json:"productIds,omitempty"`
}

// CreateOffer attaches a discount window to a product.
func (c *Client) CreateOffer(ctx context.Context, input OfferInput) (domain.Offer, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("offers"), input, requestOptions{})
	if err != nil {
		return domain.Offer{}, err
	}
	return doJSON[domain.Offer](c, req)
}

// ReviewInput is the review submission body.
type ReviewInput struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

// ListProductReviews fetches reviews for a product.
func (c *Client) ListProductReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("products", productID, "reviews"), nil, requestOptions{})
	if err != nil {
		return nil, err
	}
	return doJSON[[]domain.Review](c, req)
}

// CreateReview submits a review.
func (c *Client) CreateReview(ctx context.Context, input ReviewInput) (domain.Review, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("reviews"), input, requestOptions{})
	if err != nil {
		return domain.Review{}, err
	}
	return doJSON[domain.Review](c, req)
}

// SalesAnalytics fetches the dashboard revenue aggregate (staff surface).
func (c *Client) SalesAnalytics(ctx context.Context) (domain.SalesAnalytics, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("analytics", "sales"), nil, requestOptions{})
	if err != nil {
		return domain.SalesAnalytics{}, err
	}
	return doJSON[domain.SalesAnalytics](c, req)
}

// ProductAnalytics fetches per-product engagement counters (staff surface).
func (c *Client) ProductAnalytics(ctx context.Context, productID string) (domain.ProductAnalytics, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("analytics", "products", productID), nil, requestOptions{})
	if err != nil {
		return domain.ProductAnalytics{}, err
	}
	return doJSON[domain.ProductAnalytics](c, req)
}
