package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anu-devcode/deploy-test-sub001/internal/api/httpx"
	"github.com/anu-devcode/deploy-test-sub001/internal/apperr"
	"github.com/anu-devcode/deploy-test-sub001/internal/auth"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

func tenantOf(r *http.Request) string {
	return httpx.TenantFrom(r.Context())
}

// userOf returns the authenticated subject, or "" for anonymous calls.
func userOf(r *http.Request) string {
	if p, ok := auth.PrincipalFrom(r.Context()); ok {
		return p.UserID
	}
	return ""
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.BadRequest("invalid_query", key+" must be a non-negative integer")
	}
	return n, nil
}

func pageOf(r *http.Request) (models.Page, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return models.Page{}, err
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return models.Page{}, err
	}
	return models.Page{Limit: limit, Offset: offset}.Normalize(), nil
}

func queryTime(r *http.Request, key string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return time.Time{}, apperr.BadRequest("invalid_query", key+" is required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperr.BadRequest("invalid_query", key+" must be an RFC3339 timestamp")
	}
	return t.UTC(), nil
}

func queryPeriod(r *http.Request) models.Period {
	p := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("period")))
	if p == "" {
		return models.PeriodDaily
	}
	return models.Period(p)
}

func window(r *http.Request) (time.Time, time.Time, error) {
	from, err := queryTime(r, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := queryTime(r, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
