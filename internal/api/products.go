package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/maison-aurelia/storefront/internal/domain"
)

// ProductInput carries the writable product fields for the admin catalog.
type ProductInput struct {
	Name          string                 `json:"name"`
	Description   string                 `json:"description,omitempty"`
	Price         float64                `json:"price"`
	OriginalPrice float64                `json:"originalPrice,omitempty"`
	Category      domain.ProductCategory `json:"category"`
	Material      domain.ProductMaterial `json:"material"`
	Images        []string               `json:"images,omitempty"`
	Model3D       string                 `json:"model3D,omitempty"`
	Availability  bool                   `json:"availability"`
	Stock         int                    `json:"stock"`
}

// ListProducts fetches a catalog page with optional filters applied.
func (c *Client) ListProducts(ctx context.Context, filters domain.ProductFilters, page, pageSize int) (Page[domain.Product], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 12
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	encodeFilters(q, filters)

	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("products"), nil, requestOptions{query: q})
	if err != nil {
		return Page[domain.Product]{}, err
	}
	return doPage[domain.Product](c, req)
}

func encodeFilters(q url.Values, f domain.ProductFilters) {
	for _, cat := range f.Category {
		q.Add("category", string(cat))
	}
	for _, mat := range f.Material {
		q.Add("material", string(mat))
	}
	if f.PriceRange != nil {
		q.Set("minPrice", strconv.FormatFloat(f.PriceRange.Min, 'f', -1, 64))
		q.Set("maxPrice", strconv.FormatFloat(f.PriceRange.Max, 'f', -1, 64))
	}
	if f.OnOffer != nil {
		q.Set("onOffer", strconv.FormatBool(*f.OnOffer))
	}
	if f.InStock != nil {
		q.Set("inStock", strconv.FormatBool(*f.InStock))
	}
	if f.SortBy != "" {
		q.Set("sortBy", string(f.SortBy))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("products", id), nil, requestOptions{})
	if err != nil {
		return domain.Product{}, err
	}
	return doJSON[domain.Product](c, req)
}

// CreateProduct creates a catalog entry (admin surface).
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (domain.Product, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("products"), input, requestOptions{})
	if err != nil {
		return domain.Product{}, err
	}
	return doJSON[domain.Product](c, req)
}

// UpdateProduct replaces a catalog entry (admin surface).
func (c *Client) UpdateProduct(ctx context.Context, id string, input ProductInput) (domain.Product, error) {
	req, err := c.newRequest(ctx, http.MethodPut, c.endpoint("products", id), input, requestOptions{})
	if err != nil {
		return domain.Product{}, err
	}
	return doJSON[domain.Product](c, req)
}

// DeleteProduct removes a catalog entry (admin surface).
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.endpoint("products", id), nil, requestOptions{})
	if err != nil {
		return err
	}
	return c.doDiscard(req)
}

// LikeProduct records a like signal for the product.
func (c *Client) LikeProduct(ctx context.Context, id string) (domain.Product, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("products", id, "like"), nil, requestOptions{})
	if err != nil {
		return domain.Product{}, err
	}
	return doJSON[domain.Product](c, req)
}

// TrackProductView records a view signal for the product.
func (c *Client) TrackProductView(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("products", id, "view"), nil, requestOptions{})
	if err != nil {
		return err
	}
	return c.doDiscard(req)
}
