// Package domain holds the storefront data model shared across layers.
package domain

import (
	"strings"
	"time"
)

// Role represents an account access tier.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// ParseRole maps a backend role string onto the closed role set.
// Unknown values degrade to RoleCustomer rather than failing.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleManager:
		return RoleManager
	case RoleStaff:
		return RoleStaff
	default:
		return RoleCustomer
	}
}

// Roles captures a set of roles and exposes membership checks for gating.
type Roles []Role

// Has returns true if the provided role exists in the set.
func (rs Roles) Has(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

// User is the authenticated identity held process-wide (zero or one at a time).
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductCategory enumerates catalog categories.
type ProductCategory string

const (
	CategoryRings      ProductCategory = "rings"
	CategoryNecklaces  ProductCategory = "necklaces"
	CategoryEarrings   ProductCategory = "earrings"
	CategoryBracelets  ProductCategory = "bracelets"
	CategoryCutlery    ProductCategory = "cutlery"
	CategoryDecorative ProductCategory = "decorative"
)

// ProductMaterial enumerates catalog materials.
type ProductMaterial string

const (
	MaterialGold         ProductMaterial = "gold"
	MaterialSilver       ProductMaterial = "silver"
	MaterialGoldPlated   ProductMaterial = "gold_plated"
	MaterialSilverPlated ProductMaterial = "silver_plated"
)

// Offer is a time-boxed discount attached to a product.
type Offer struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	DiscountPercentage float64   `json:"discountPercentage"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate"`
	Active             bool      `json:"active"`
	ProductIDs         []string  `json:"productIds,omitempty"`
}

// ActiveAt reports whether the offer applies at the given instant.
func (o Offer) ActiveAt(now time.Time) bool {
	if !o.Active {
		return false
	}
	if !o.StartDate.IsZero() && now.Before(o.StartDate) {
		return false
	}
	if !o.EndDate.IsZero() && now.After(o.EndDate) {
		return false
	}
	return true
}

// Product is read-only from the client's perspective; the backend owns it.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         float64         `json:"price"`
	OriginalPrice float64         `json:"originalPrice,omitempty"`
	Category      ProductCategory `json:"category"`
	Material      ProductMaterial `json:"material"`
	Images        []string        `json:"images,omitempty"`
	Model3D       string          `json:"model3D,omitempty"`
	Availability  bool            `json:"availability"`
	Stock         int             `json:"stock"`
	Likes         int             `json:"likes"`
	Views         int             `json:"views"`
	Rating        float64         `json:"rating"`
	ReviewCount   int             `json:"reviewCount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Offer         *Offer          `json:"offer,omitempty"`
}

// CartLine pairs a product with a positive quantity. The store guarantees at
// most one line per product id and quantity >= 1.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// OrderStatus enumerates order lifecycle states.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Address is a shipping destination.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// OrderItem records the product and unit price captured at purchase time.
type OrderItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order mirrors the backend order resource.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	Items           []OrderItem `json:"items"`
	Total           float64     `json:"total"`
	Status          OrderStatus `json:"status"`
	ShippingAddress Address     `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Review is a customer product review.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductSort enumerates catalog orderings accepted by the backend.
type ProductSort string

const (
	SortPriceAsc   ProductSort = "price_asc"
	SortPriceDesc  ProductSort = "price_desc"
	SortPopularity ProductSort = "popularity"
	SortNewest     ProductSort = "newest"
	SortRating     ProductSort = "rating"
)

// PriceRange is an inclusive price filter.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ProductFilters narrows catalog listings.
type ProductFilters struct {
	Category   []ProductCategory `json:"category,omitempty"`
	Material   []ProductMaterial `json:"material,omitempty"`
	PriceRange *PriceRange       `json:"priceRange,omitempty"`
	OnOffer    *bool             `json:"onOffer,omitempty"`
	InStock    *bool             `json:"inStock,omitempty"`
	SortBy     ProductSort       `json:"sortBy,omitempty"`
	Search     string            `json:"search,omitempty"`
}

// ProductAnalytics aggregates per-product engagement counters.
type ProductAnalytics struct {
	ProductID    string  `json:"productId"`
	Views        int     `json:"views"`
	Likes        int     `json:"likes"`
	WishlistAdds int     `json:"wishlistAdds"`
	Purchases    int     `json:"purchases"`
	Revenue      float64 `json:"revenue"`
}

// SalesAnalytics is the dashboard-level revenue aggregate.
type SalesAnalytics struct {
	TotalRevenue      float64                     `json:"totalRevenue"`
	TotalOrders       int                         `json:"totalOrders"`
	AverageOrderValue float64                     `json:"averageOrderValue"`
	TopProducts       []ProductAnalytics          `json:"topProducts,omitempty"`
	RevenueByCategory map[ProductCategory]float64 `json:"revenueByCategory,omitempty"`
	RevenueByMaterial map[ProductMaterial]float64 `json:"revenueByMaterial,omitempty"`
	SalesByDate       []SalesPoint                `json:"salesByDate,omitempty"`
}

// SalesPoint is one day of aggregated sales.
type SalesPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}
