package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tryluxor/server/internal/catalog"
)

type productHandler struct {
	productSvc catalog.Service
	seed       func() ([]catalog.Product, error)
}

func newProductHandler(productSvc catalog.Service, seed func() ([]catalog.Product, error)) *productHandler {
	return &productHandler{
		productSvc: productSvc,
		seed:       seed,
	}
}

type productsResponse struct {
	Products   []catalog.Product   `json:"products"`
	Pagination *catalog.Pagination `json:"pagination,omitempty"`
}

type productMutationResponse struct {
	Message   string `json:"message"`
	ProductID string `json:"product_id,omitempty"`
}

func (h *productHandler) ListProducts(r *http.Request) (response, error) {
	products, err := h.productSvc.List(r.Context())
	if err != nil {
		return response{}, fmt.Errorf("product service list: %w", err)
	}
	return ok(productsResponse{Products: products}), nil
}

func (h *productHandler) SearchProducts(r *http.Request) (response, error) {
	params, err := searchParamsFromQuery(r)
	if err != nil {
		return response{}, err
	}

	products, page, err := h.productSvc.Search(r.Context(), params)
	if err != nil {
		return response{}, fmt.Errorf("product service search: %w", err)
	}
	return ok(productsResponse{Products: products, Pagination: &page}), nil
}

func searchParamsFromQuery(r *http.Request) (catalog.SearchParams, error) {
	params := catalog.DefaultSearchParams()
	q := r.URL.Query()

	if err := queryInt(r, "limit", &params.Limit); err != nil {
		return params, err
	}
	if err := queryInt(r, "skip", &params.Skip); err != nil {
		return params, err
	}

	var err error
	if params.MinPrice, err = queryFloat(r, "min_price"); err != nil {
		return params, err
	}
	if params.MaxPrice, err = queryFloat(r, "max_price"); err != nil {
		return params, err
	}
	if params.InStock, err = queryBool(r, "in_stock"); err != nil {
		return params, err
	}

	params.Category = q.Get("category")
	params.Brand = q.Get("brand")
	params.Search = q.Get("search")
	if v := q.Get("sort_by"); v != "" {
		params.SortBy = v
	}
	if v := q.Get("sort_order"); v != "" {
		params.SortOrder = v
	}
	return params, nil
}

func (h *productHandler) GetProduct(r *http.Request) (response, error) {
	product, err := h.productSvc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return response{}, fmt.Errorf("product service get by slug: %w", err)
	}
	return ok(map[string]catalog.Product{"product": product}), nil
}

func (h *productHandler) CreateProduct(r *http.Request) (response, error) {
	var body catalog.Product
	if err := decodeJSON(r, &body); err != nil {
		return response{}, err
	}

	product, err := h.productSvc.Create(r.Context(), body)
	if err != nil {
		return response{}, fmt.Errorf("product service create: %w", err)
	}
	return response{
		status: http.StatusCreated,
		body:   productMutationResponse{Message: "Product created successfully", ProductID: product.ID},
	}, nil
}

func (h *productHandler) UpdateProduct(r *http.Request) (response, error) {
	var body catalog.Product
	if err := decodeJSON(r, &body); err != nil {
		return response{}, err
	}

	product, err := h.productSvc.Update(r.Context(), chi.URLParam(r, "product_id"), body)
	if err != nil {
		return response{}, fmt.Errorf("product service update: %w", err)
	}
	return ok(productMutationResponse{Message: "Product updated successfully", ProductID: product.ID}), nil
}

func (h *productHandler) DeleteProduct(r *http.Request) (response, error) {
	if err := h.productSvc.Delete(r.Context(), chi.URLParam(r, "product_id")); err != nil {
		return response{}, fmt.Errorf("product service delete: %w", err)
	}
	return ok(productMutationResponse{Message: "Product deleted successfully"}), nil
}

func (h *productHandler) SeedProducts(r *http.Request) (response, error) {
	products, err := h.seed()
	if err != nil {
		return response{}, fmt.Errorf("load seed products: %w", err)
	}

	inserted, err := h.productSvc.Seed(r.Context(), products)
	if err != nil {
		return response{}, fmt.Errorf("product service seed: %w", err)
	}
	return ok(map[string]any{"message": "Database seeded successfully", "inserted": inserted}), nil
}
