package handlers

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/anu-devcode/deploy-test-sub001/internal/api/httpx"
	"github.com/anu-devcode/deploy-test-sub001/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	logger    zerolog.Logger
}

func NewAnalyticsHandler(analytics *service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// Dashboard handles GET /admin/analytics/dashboard?period=WEEKLY
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.analytics.Dashboard(r.Context(), tenantOf(r), queryPeriod(r))
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

// Sales handles GET /admin/analytics/sales?period=&from=&to=
func (h *AnalyticsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	from, to, err := window(r)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	out, err := h.analytics.SalesHistory(r.Context(), tenantOf(r), queryPeriod(r), from, to)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// ExportSales handles GET /admin/analytics/sales/export and streams the
// same buckets as an xlsx workbook.
func (h *AnalyticsHandler) ExportSales(w http.ResponseWriter, r *http.Request) {
	from, to, err := window(r)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	period := queryPeriod(r)
	body, err := h.analytics.ExportSales(r.Context(), tenantOf(r), period, from, to)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	name := fmt.Sprintf("sales-%s-%s-%s.xlsx", period, from.Format("20060102"), to.Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Warn().Err(err).Str("request_id", httpx.RequestID(r.Context())).Msg("write export body")
	}
}

// RevenueDistribution handles GET /admin/analytics/revenue-distribution
func (h *AnalyticsHandler) RevenueDistribution(w http.ResponseWriter, r *http.Request) {
	from, to, err := window(r)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	out, err := h.analytics.RevenueDistribution(r.Context(), tenantOf(r), from, to)
	if err != nil {
		httpx.WriteAppError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
