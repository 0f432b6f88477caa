package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/anu-devcode/deploy-test-sub001/internal/api/dto"
	"github.com/anu-devcode/deploy-test-sub001/internal/api/httpx"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/service"
)

type CatalogHandler struct {
	customers *service.CustomerService
	products  *service.ProductService
	logger    zerolog.Logger
}

func NewCatalogHandler(customers *service.CustomerService, products *service.ProductService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{customers: customers, products: products, logger: logger}
}

// RegisterCustomer handles POST /customers/me
func (h *CatalogHandler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterCustomerRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	c, err := h.customers.Register(r.Context(), tenantOf(r), userOf(r), service.CustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Segment: models.Segment(req.Segment),
	})
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

// Me handles GET /customers/me
func (h *CatalogHandler) Me(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.Me(r.Context(), tenantOf(r), userOf(r))
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

// ListProducts handles GET /products. The storefront only sees active
// products.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := pageOf(r)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	out, err := h.products.List(r.Context(), tenantOf(r), true, page)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// GetProduct handles GET /products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), tenantOf(r), idParam(r), false)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// CreateProduct handles POST /admin/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	active := req.IsActive == nil || *req.IsActive
	p, err := h.products.Create(r.Context(), tenantOf(r), service.ProductInput{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Price:      req.Price,
		Stock:      req.Stock,
		IsActive:   active,
	})
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

// UpdateProduct handles PATCH /admin/products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProductRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	p, err := h.products.Update(r.Context(), tenantOf(r), idParam(r), models.ProductPatch{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Price:      req.Price,
		Stock:      req.Stock,
		IsActive:   req.IsActive,
	})
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}
