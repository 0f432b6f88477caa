package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/anu-devcode/deploy-test-sub001/internal/api/dto"
	"github.com/anu-devcode/deploy-test-sub001/internal/api/httpx"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
	logger zerolog.Logger
}

func NewOrderHandler(orders *service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

func orderLines(items []dto.OrderItemRequest) []service.OrderLine {
	out := make([]service.OrderLine, len(items))
	for i, it := range items {
		out[i] = service.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return out
}

func orderFilter(r *http.Request) (models.OrderFilter, error) {
	page, err := pageOf(r)
	if err != nil {
		return models.OrderFilter{}, err
	}
	q := r.URL.Query()
	return models.OrderFilter{
		Status:        models.OrderStatus(strings.ToUpper(q.Get("status"))),
		PaymentStatus: models.PaymentStatus(strings.ToUpper(q.Get("payment_status"))),
		CustomerID:    q.Get("customer_id"),
		Page:          page,
	}, nil
}

// Create handles POST /orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	a := req.ShippingAddress
	o, err := h.orders.Create(r.Context(), tenantOf(r), userOf(r), service.CreateOrderInput{
		Items: orderLines(req.Items),
		ShippingAddress: models.Address{
			Recipient:  a.Recipient,
			Phone:      a.Phone,
			Line1:      a.Line1,
			Line2:      a.Line2,
			City:       a.City,
			Region:     a.Region,
			PostalCode: a.PostalCode,
			Country:    strings.ToUpper(a.Country),
		},
		ShippingTotal: req.ShippingTotal,
		PromotionCode: req.PromotionCode,
	})
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, o)
}

// ListMine handles GET /orders
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	f, err := orderFilter(r)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	out, err := h.orders.ListMine(r.Context(), tenantOf(r), userOf(r), f)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// GetMine handles GET /orders/{id}
func (h *OrderHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetMine(r.Context(), tenantOf(r), userOf(r), idParam(r))
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

// List handles GET /admin/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := orderFilter(r)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	out, err := h.orders.List(r.Context(), tenantOf(r), f)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Get handles GET /admin/orders/{id}?include=items,customer
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	var inc models.OrderInclude
	for _, part := range strings.Split(r.URL.Query().Get("include"), ",") {
		switch strings.TrimSpace(part) {
		case "items":
			inc.Items = true
		case "customer":
			inc.Customer = true
		}
	}
	o, err := h.orders.Get(r.Context(), tenantOf(r), idParam(r), inc)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

// UpdateStatus handles PATCH /admin/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.OrderStatusRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	o, err := h.orders.TransitionStatus(r.Context(), tenantOf(r), idParam(r), models.OrderStatus(req.Status))
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

// UpdatePaymentStatus handles PATCH /admin/orders/{id}/payment-status
func (h *OrderHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentStatusRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	o, err := h.orders.TransitionPaymentStatus(r.Context(), tenantOf(r), idParam(r), models.PaymentStatus(req.Status))
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}
