package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/anu-devcode/deploy-test-sub001/internal/api/dto"
	"github.com/anu-devcode/deploy-test-sub001/internal/api/httpx"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/service"
)

type AutomationHandler struct {
	rules  *service.AutomationService
	logger zerolog.Logger
}

func NewAutomationHandler(rules *service.AutomationService, logger zerolog.Logger) *AutomationHandler {
	return &AutomationHandler{rules: rules, logger: logger}
}

func ruleInput(req dto.RuleRequest) service.RuleInput {
	return service.RuleInput{
		Name:    req.Name,
		Trigger: models.Trigger(req.Trigger),
		Condition: models.RuleCondition{
			MinAmount: req.Condition.MinAmount,
			MaxAmount: req.Condition.MaxAmount,
			MinStock:  req.Condition.MinStock,
			MaxStock:  req.Condition.MaxStock,
		},
		Action:   models.RuleAction(req.Action),
		IsActive: req.IsActive == nil || *req.IsActive,
	}
}

// Create handles POST /admin/automation-rules
func (h *AutomationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RuleRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	rule, err := h.rules.Create(r.Context(), tenantOf(r), ruleInput(req))
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rule)
}

// List handles GET /admin/automation-rules
func (h *AutomationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageOf(r)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	out, err := h.rules.List(r.Context(), tenantOf(r), page)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Update handles PUT /admin/automation-rules/{id}
func (h *AutomationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.RuleRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	rule, err := h.rules.Update(r.Context(), tenantOf(r), idParam(r), ruleInput(req))
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rule)
}

// Delete handles DELETE /admin/automation-rules/{id}
func (h *AutomationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.rules.Delete(r.Context(), tenantOf(r), idParam(r)); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Notifications handles GET /admin/notifications
func (h *AutomationHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	page, err := pageOf(r)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	out, err := h.rules.Notifications(r.Context(), tenantOf(r), page)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
