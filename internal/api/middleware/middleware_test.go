package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anu-devcode/deploy-test-sub001/internal/api/httpx"
	"github.com/anu-devcode/deploy-test-sub001/internal/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestRequestIDKeepsCallerValue(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httpx.RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", rr.Header().Get(RequestIDHeader))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rr.Header().Get(RequestIDHeader), 36)
}

func TestRecoverWritesInternalError(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	h := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/explode", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var resp httpx.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "internal_error", resp.Error)
	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), "boom")
}

func TestLoggerReportsPrincipalAndTenant(t *testing.T) {
	maker, err := auth.NewMaker(testSecret, "commerce")
	require.NoError(t, err)
	token, _, err := maker.CreateToken(auth.Principal{UserID: "u-9", TenantID: "tenant-a", Role: auth.RoleCustomer}, time.Minute)
	require.NoError(t, err)

	var logs bytes.Buffer
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tenant-a", httpx.TenantFrom(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	})
	h := RequestID(Logger(zerolog.New(&logs))(Authenticate(maker)(Tenant(inner))))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &line))
	assert.Equal(t, "u-9", line["user_id"])
	assert.Equal(t, "tenant-a", line["tenant_id"])
	assert.Equal(t, float64(http.StatusTeapot), line["status"])
	assert.Equal(t, rr.Header().Get(RequestIDHeader), line["request_id"])
}

func TestAuthenticateRejectsBadHeaders(t *testing.T) {
	maker, err := auth.NewMaker(testSecret, "commerce")
	require.NoError(t, err)
	h := Authenticate(maker)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := auth.PrincipalFrom(r.Context())
		assert.False(t, ok)
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := map[string]struct {
		header string
		status int
	}{
		"anonymous":    {"", http.StatusNoContent},
		"basic scheme": {"Basic abc", http.StatusUnauthorized},
		"garbage":      {"Bearer abc.def.ghi", http.StatusUnauthorized},
		"three parts":  {"Bearer a b", http.StatusUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tc.status, rr.Code)
		})
	}
}

func TestRequirePermission(t *testing.T) {
	policy := auth.NewPolicy(&auth.PermissionConfig{Roles: []auth.RolePermission{
		{Role: auth.RoleStaff, Staff: true, Permissions: []string{auth.PermOrdersRead}},
	}})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	serve := func(p *auth.Principal, perm string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if p != nil {
			req = req.WithContext(auth.WithPrincipal(req.Context(), p))
		}
		rr := httptest.NewRecorder()
		RequireStaff(policy)(RequirePermission(policy, perm)(ok)).ServeHTTP(rr, req)
		return rr.Code
	}

	staff := &auth.Principal{UserID: "s", TenantID: "t", Role: auth.RoleStaff}
	assert.Equal(t, http.StatusOK, serve(staff, auth.PermOrdersRead))
	assert.Equal(t, http.StatusForbidden, serve(staff, auth.PermPromotionsWrite))

	granted := &auth.Principal{UserID: "s", TenantID: "t", Role: auth.RoleStaff, Permissions: []string{auth.PermPromotionsWrite}}
	assert.Equal(t, http.StatusOK, serve(granted, auth.PermPromotionsWrite))

	assert.Equal(t, http.StatusForbidden, serve(&auth.Principal{UserID: "c", TenantID: "t", Role: auth.RoleCustomer}, auth.PermOrdersRead))
	assert.Equal(t, http.StatusUnauthorized, serve(nil, auth.PermOrdersRead))
}
