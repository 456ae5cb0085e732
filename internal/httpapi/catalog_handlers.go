package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/maison-aurelia/storefront/internal/api"
	"github.com/maison-aurelia/storefront/internal/domain"
	"github.com/maison-aurelia/storefront/internal/platform/httpx"
)

// Catalog reads pass through to the backend; the gateway adds nothing beyond
// auth headers and error normalization.

func (h *Handlers) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := domain.ProductFilters{
		SortBy: domain.ProductSort(q.Get("sortBy")),
		Search: q.Get("search"),
	}
	for _, cat := range q["category"] {
		filters.Category = append(filters.Category, domain.ProductCategory(cat))
	}
	for _, mat := range q["material"] {
		filters.Material = append(filters.Material, domain.ProductMaterial(mat))
	}
	if raw := q.Get("onOffer"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filters.OnOffer = &v
		}
	}
	if raw := q.Get("inStock"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filters.InStock = &v
		}
	}
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	result, err := h.backend.ListProducts(r.Context(), filters, page, pageSize)
	if err != nil {
		h.writeBackendError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func (h *Handlers) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.backend.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		h.writeBackendError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, product)
}

func (h *Handlers) adminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var input api.ProductInput
	if err := decodeBody(r, &input); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_body", "malformed request body", http.StatusBadRequest))
		return
	}
	product, err := h.backend.CreateProduct(r.Context(), input)
	if err != nil {
		h.writeBackendError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, product)
}

func (h *Handlers) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var input api.ProductInput
	if err := decodeBody(r, &input); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_body", "malformed request body", http.StatusBadRequest))
		return
	}
	product, err := h.backend.UpdateProduct(r.Context(), chi.URLParam(r, "productID"), input)
	if err != nil {
		h.writeBackendError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, product)
}

func (h *Handlers) adminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.DeleteProduct(r.Context(), chi.URLParam(r, "productID")); err != nil {
		h.writeBackendError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
