package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/anu-devcode/deploy-test-sub001/internal/api/dto"
	"github.com/anu-devcode/deploy-test-sub001/internal/api/httpx"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/service"
)

type PromotionHandler struct {
	promotions *service.PromotionService
	logger     zerolog.Logger
}

func NewPromotionHandler(promotions *service.PromotionService, logger zerolog.Logger) *PromotionHandler {
	return &PromotionHandler{promotions: promotions, logger: logger}
}

func promotionInput(req dto.PromotionRequest) service.PromotionInput {
	return service.PromotionInput{
		Name:             req.Name,
		Code:             req.Code,
		Type:             models.PromotionType(req.Type),
		Target:           models.PromotionTarget(req.Target),
		TargetIDs:        req.TargetIDs,
		Value:            req.Value,
		MinAmount:        req.MinAmount,
		UsageLimit:       req.UsageLimit,
		PerCustomerLimit: req.PerCustomerLimit,
		StartsAt:         req.StartsAt,
		EndsAt:           req.EndsAt,
		BusinessType:     models.BusinessType(req.BusinessType),
		IsActive:         req.IsActive == nil || *req.IsActive,
	}
}

// Create handles POST /admin/promotions
func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.PromotionRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	p, err := h.promotions.Create(r.Context(), tenantOf(r), promotionInput(req))
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

// List handles GET /admin/promotions?active=true
func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageOf(r)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	out, err := h.promotions.List(r.Context(), tenantOf(r), models.PromotionFilter{
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Page:       page,
	})
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Get handles GET /admin/promotions/{id}
func (h *PromotionHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.promotions.Get(r.Context(), tenantOf(r), idParam(r))
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// Update handles PUT /admin/promotions/{id}
func (h *PromotionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.PromotionRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	p, err := h.promotions.Update(r.Context(), tenantOf(r), idParam(r), promotionInput(req))
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /admin/promotions/{id}
func (h *PromotionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.promotions.Delete(r.Context(), tenantOf(r), idParam(r)); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Preview handles POST /promotions/preview. Nothing is redeemed.
func (h *PromotionHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req dto.PreviewRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	res, err := h.promotions.Preview(r.Context(), tenantOf(r), userOf(r), service.PreviewInput{
		Code:  req.Code,
		Items: orderLines(req.Items),
	})
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}
