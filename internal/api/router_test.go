package api

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
	"github.com/anu-devcode/deploy-test-sub001/internal/automation"
	"github.com/anu-devcode/deploy-test-sub001/internal/events"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository/memory"
	"github.com/anu-devcode/deploy-test-sub001/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	handler http.Handler
	maker   *auth.Maker
	rec     *events.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zerolog.Nop()

	cfg, err := auth.ParsePermissionConfig([]byte(`
roles:
  - role: ADMIN
    staff: true
    permissions: [orders:read, orders:write, products:write, promotions:read, promotions:write, analytics:read]
  - role: STAFF
    staff: true
    permissions: [orders:read]
  - role: CUSTOMER
    staff: false
`))
	require.NoError(t, err)
	maker, err := auth.NewMaker(testSecret, "commerce")
	require.NoError(t, err)

	rec := &events.Recorder{}
	engine := automation.NewEngine(logger)
	service.RegisterActions(engine, service.SystemClock)
	tx := service.NewDispatcher(memory.NewStore(), engine, rec, service.SystemClock, logger)

	svc := Services{
		Customers:  service.NewCustomerService(tx, logger),
		Products:   service.NewProductService(tx, logger),
		Orders:     service.NewOrderService(tx, nil, logger),
		Deliveries: service.NewDeliveryService(tx, logger),
		Reviews:    service.NewReviewService(tx, logger),
		Promotions: service.NewPromotionService(tx, nil, logger),
		Automation: service.NewAutomationService(tx, logger),
		Analytics:  service.NewAnalyticsService(tx, logger),
	}
	return &testServer{
		handler: NewRouter(svc, maker, auth.NewPolicy(cfg), logger),
		maker:   maker,
		rec:     rec,
	}
}

func (s *testServer) token(t *testing.T, user, tenant, role string) string {
	t.Helper()
	tok, _, err := s.maker.CreateToken(auth.Principal{UserID: user, TenantID: tenant, Role: role}, time.Hour)
	require.NoError(t, err)
	return tok
}

type call struct {
	method string
	path   string
	token  string
	tenant string
	body   any
	raw    string
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	switch {
	case c.raw != "":
		body.WriteString(c.raw)
	case c.body != nil:
		require.NoError(t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.tenant != "" {
		req.Header.Set("X-Tenant-Id", c.tenant)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp httpx.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp.Error
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

func TestTenantResolution(t *testing.T) {
	s := newTestServer(t)
	customer := s.token(t, "u-1", "tenant-a", auth.RoleCustomer)

	tests := []struct {
		name   string
		call   call
		status int
		code   string
	}{
		{
			name:   "anonymous without tenant",
			call:   call{method: http.MethodGet, path: "/products"},
			status: http.StatusBadRequest,
			code:   "tenant_required",
		},
		{
			name:   "header disagrees with token",
			call:   call{method: http.MethodGet, path: "/products", token: customer, tenant: "tenant-b"},
			status: http.StatusForbidden,
			code:   "tenant_mismatch",
		},
		{
			name:   "malformed authorization",
			call:   call{method: http.MethodGet, path: "/products", token: "not-a-jwt", tenant: "tenant-a"},
			status: http.StatusUnauthorized,
			code:   "invalid_token",
		},
		{
			name:   "anonymous on customer route",
			call:   call{method: http.MethodGet, path: "/orders", tenant: "tenant-a"},
			status: http.StatusUnauthorized,
			code:   "unauthenticated",
		},
		{
			name:   "customer on admin route",
			call:   call{method: http.MethodGet, path: "/admin/orders", token: customer},
			status: http.StatusForbidden,
			code:   "staff_only",
		},
		{
			name:   "staff without permission",
			call:   call{method: http.MethodGet, path: "/admin/promotions", token: s.token(t, "u-2", "tenant-a", auth.RoleStaff)},
			status: http.StatusForbidden,
			code:   "missing_permission",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, tt.call)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, tt.code, errorCode(t, rr))
		})
	}

	rr := s.do(t, call{method: http.MethodGet, path: "/products", token: customer, tenant: "tenant-a"})
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = s.do(t, call{method: http.MethodGet, path: "/products", tenant: "tenant-a"})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequestBodyErrors(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "admin", "tenant-a", auth.RoleAdmin)

	rr := s.do(t, call{method: http.MethodPost, path: "/admin/products", token: admin, raw: `{"name":`})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_body", errorCode(t, rr))

	rr = s.do(t, call{method: http.MethodPost, path: "/admin/products", token: admin, raw: `{"name":"x","colour":"red"}`})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, call{method: http.MethodPost, path: "/admin/products", token: admin, body: map[string]any{
		"category_id": "drinks",
		"price":       "10",
		"stock":       1,
	}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "invalid_request", errorCode(t, rr))

	rr = s.do(t, call{method: http.MethodGet, path: "/admin/analytics/sales?from=yesterday&to=today", token: admin})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_query", errorCode(t, rr))
}

func TestOrderCheckoutOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "admin", "tenant-a", auth.RoleAdmin)
	customer := s.token(t, "u-1", "tenant-a", auth.RoleCustomer)

	rr := s.do(t, call{method: http.MethodPost, path: "/admin/products", token: admin, body: map[string]any{
		"category_id": "drinks",
		"name":        "Coffee beans",
		"price":       "250",
		"stock":       10,
	}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var product models.Product
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &product))

	rr = s.do(t, call{method: http.MethodPost, path: "/admin/promotions", token: admin, body: map[string]any{
		"name":          "Welcome",
		"code":          "welcome10",
		"type":          "PERCENTAGE",
		"target":        "CART",
		"value":         "10",
		"min_amount":    "500",
		"business_type": "BOTH",
	}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.do(t, call{method: http.MethodPost, path: "/customers/me", token: customer, body: map[string]any{
		"name":  "Sara",
		"email": "sara@example.com",
	}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.do(t, call{method: http.MethodPost, path: "/orders", token: customer, body: map[string]any{
		"items": []map[string]any{{"product_id": product.ID, "quantity": 4}},
		"shipping_address": map[string]any{
			"recipient": "Sara",
			"phone":     "+251911000000",
			"line1":     "Bole Road 12",
			"city":      "Addis Ababa",
			"country":   "et",
		},
		"promotion_code": "WELCOME10",
	}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var order models.OrderDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &order))
	assert.Equal(t, "100.00", order.DiscountTotal.StringFixed(2))
	assert.Equal(t, "900.00", order.Total.StringFixed(2))
	assert.Equal(t, "ET", order.ShippingAddress.Country)
	assert.Contains(t, s.rec.Types(), models.EventOrderCreated)

	rr = s.do(t, call{method: http.MethodGet, path: "/orders/" + order.ID, token: customer})
	assert.Equal(t, http.StatusOK, rr.Code)

	other := s.token(t, "u-2", "tenant-b", auth.RoleAdmin)
	rr = s.do(t, call{method: http.MethodGet, path: "/admin/orders/" + order.ID, token: other})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, call{method: http.MethodGet, path: "/admin/orders/" + order.ID + "?include=items,customer", token: admin})
	require.Equal(t, http.StatusOK, rr.Code)
	var detail models.OrderDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	require.Len(t, detail.Items, 1)
	assert.Equal(t, 4, detail.Items[0].Quantity)
	require.NotNil(t, detail.Customer)
	assert.Equal(t, "Sara", detail.Customer.Name)

	rr = s.do(t, call{method: http.MethodPatch, path: "/admin/orders/" + order.ID + "/status", token: admin, body: map[string]any{"status": "DELIVERED"}})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, call{method: http.MethodPatch, path: "/admin/orders/" + order.ID + "/status", token: admin, body: map[string]any{"status": "CONFIRMED"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var confirmed models.Order
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &confirmed))
	assert.Equal(t, models.OrderStatusConfirmed, confirmed.Status)
}

func TestSalesExportHeaders(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "admin", "tenant-a", auth.RoleAdmin)

	rr := s.do(t, call{
		method: http.MethodGet,
		path:   "/admin/analytics/sales/export?period=daily&from=2026-03-01T00:00:00Z&to=2026-03-08T00:00:00Z",
		token:  admin,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "sales-DAILY-20260301-20260308.xlsx")
	assert.NotZero(t, rr.Body.Len())
}
