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

type ReviewHandler struct {
	reviews *service.ReviewService
	logger  zerolog.Logger
}

func NewReviewHandler(reviews *service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

// Create handles POST /reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateReviewRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	rv, err := h.reviews.Create(r.Context(), tenantOf(r), userOf(r), service.CreateReviewInput{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rv)
}

// Update handles PATCH /reviews/{id}
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateReviewRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	rv, err := h.reviews.Update(r.Context(), tenantOf(r), userOf(r), idParam(r), service.ReviewPatch{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rv)
}

// Delete handles DELETE /reviews/{id}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reviews.Delete(r.Context(), tenantOf(r), userOf(r), idParam(r)); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMine handles GET /reviews/me
func (h *ReviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, err := pageOf(r)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	out, err := h.reviews.ListMine(r.Context(), tenantOf(r), userOf(r), page)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// ListForProduct handles GET /reviews/product/{id}. Only approved reviews
// are returned.
func (h *ReviewHandler) ListForProduct(w http.ResponseWriter, r *http.Request) {
	page, err := pageOf(r)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	out, err := h.reviews.ListForProduct(r.Context(), tenantOf(r), idParam(r), page)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Stats handles GET /reviews/product/{id}/stats
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.reviews.Stats(r.Context(), tenantOf(r), idParam(r))
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

// ListAdmin handles GET /admin/reviews
func (h *ReviewHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	page, err := pageOf(r)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	q := r.URL.Query()
	out, err := h.reviews.ListAdmin(r.Context(), tenantOf(r), models.ReviewFilter{
		Status:     models.ReviewStatus(strings.ToUpper(q.Get("status"))),
		ProductID:  q.Get("product_id"),
		CustomerID: q.Get("customer_id"),
		Page:       page,
	})
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Moderate handles PATCH /admin/reviews/{id}/moderate
func (h *ReviewHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	var req dto.ModerateReviewRequest
	if err := dto.Decode(r, &req); err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	rv, err := h.reviews.Moderate(r.Context(), tenantOf(r), idParam(r), models.ReviewStatus(req.Status))
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rv)
}
