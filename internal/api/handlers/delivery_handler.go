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

type DeliveryHandler struct {
	deliveries *service.DeliveryService
	logger     zerolog.Logger
}

func NewDeliveryHandler(deliveries *service.DeliveryService, logger zerolog.Logger) *DeliveryHandler {
	return &DeliveryHandler{deliveries: deliveries, logger: logger}
}

// Create handles POST /admin/deliveries
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDeliveryRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	d, err := h.deliveries.Create(r.Context(), tenantOf(r), service.CreateDeliveryInput{
		OrderID: req.OrderID,
		DriverInfo: models.DriverInfo{
			DriverName:  req.DriverName,
			DriverPhone: req.DriverPhone,
			VehicleInfo: req.VehicleInfo,
		},
		EstimatedTime: req.EstimatedTime,
		Notes:         req.Notes,
	})
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, d)
}

// List handles GET /admin/deliveries
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageOf(r)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	out, err := h.deliveries.List(r.Context(), tenantOf(r), models.DeliveryFilter{
		Status: models.DeliveryStatus(strings.ToUpper(r.URL.Query().Get("status"))),
		Page:   page,
	})
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Get handles GET /admin/deliveries/{id}
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.deliveries.Get(r.Context(), tenantOf(r), idParam(r))
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

// Update handles PATCH /admin/deliveries/{id}
func (h *DeliveryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateDeliveryRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	patch := models.DeliveryPatch{
		DriverInfo: models.DriverInfo{
			DriverName:  req.DriverName,
			DriverPhone: req.DriverPhone,
			VehicleInfo: req.VehicleInfo,
		},
		EstimatedTime: req.EstimatedTime,
		Notes:         req.Notes,
	}
	if req.Status != nil {
		st := models.DeliveryStatus(*req.Status)
		patch.Status = &st
	}
	d, err := h.deliveries.Update(r.Context(), tenantOf(r), idParam(r), patch)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

// UpdateStatus handles PATCH /admin/deliveries/{id}/status
func (h *DeliveryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.DeliveryStatusRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	d, err := h.deliveries.UpdateStatus(r.Context(), tenantOf(r), idParam(r), models.DeliveryStatus(req.Status))
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}
