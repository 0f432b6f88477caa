package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anu-devcode/deploy-test-sub001/internal/apperr"
	"github.com/anu-devcode/deploy-test-sub001/internal/automation"
	"github.com/anu-devcode/deploy-test-sub001/internal/cache"
	"github.com/anu-devcode/deploy-test-sub001/internal/events"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository/memory"
)

const (
	tenantA = "tenant-a"
	tenantB = "tenant-b"
)

// Tuesday; the WEEKLY bucket starts Monday 2026-03-09.
var t0 = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type harness struct {
	now    time.Time
	store  *memory.Store
	rec    *events.Recorder
	engine *automation.Engine
	tx     *Dispatcher

	customers  *CustomerService
	products   *ProductService
	orders     *OrderService
	deliveries *DeliveryService
	reviews    *ReviewService
	promotions *PromotionService
	rules      *AutomationService
	analytics  *AnalyticsService
}

func newHarness(t *testing.T) *harness {
	return newHarnessWith(t, &events.Recorder{}, nil)
}

func newHarnessWith(t *testing.T, pub events.Publisher, pc *cache.PromotionCache) *harness {
	t.Helper()
	h := &harness{now: t0, store: memory.NewStore()}
	if rec, ok := pub.(*events.Recorder); ok {
		h.rec = rec
	}
	logger := zerolog.Nop()
	h.engine = automation.NewEngine(logger)
	RegisterActions(h.engine, h.clock)
	h.tx = NewDispatcher(h.store, h.engine, pub, h.clock, logger)

	h.customers = NewCustomerService(h.tx, logger)
	h.products = NewProductService(h.tx, logger)
	h.orders = NewOrderService(h.tx, pc, logger)
	h.deliveries = NewDeliveryService(h.tx, logger)
	h.reviews = NewReviewService(h.tx, logger)
	h.promotions = NewPromotionService(h.tx, pc, logger)
	h.rules = NewAutomationService(h.tx, logger)
	h.analytics = NewAnalyticsService(h.tx, logger)
	return h
}

func (h *harness) clock() time.Time { return h.now }

func (h *harness) repos(t *testing.T, tenant string) *repository.Repositories {
	t.Helper()
	repos, err := h.store.Scoped(tenant)
	require.NoError(t, err)
	return repos
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func (h *harness) customer(t *testing.T, tenant, user string, segment models.Segment) *models.Customer {
	t.Helper()
	c, err := h.customers.Register(context.Background(), tenant, user, CustomerInput{
		Name:    "Customer " + user,
		Email:   user + "@example.com",
		Segment: segment,
	})
	require.NoError(t, err)
	return c
}

func (h *harness) product(t *testing.T, tenant, category, price string, stock int) *models.Product {
	t.Helper()
	p, err := h.products.Create(context.Background(), tenant, ProductInput{
		CategoryID: category,
		Name:       "Product in " + category,
		Price:      dec(price),
		Stock:      stock,
		IsActive:   true,
	})
	require.NoError(t, err)
	return p
}

func (h *harness) promotion(t *testing.T, tenant string, in PromotionInput) *models.Promotion {
	t.Helper()
	p, err := h.promotions.Create(context.Background(), tenant, in)
	require.NoError(t, err)
	return p
}

func welcome10() PromotionInput {
	return PromotionInput{
		Name:         "Welcome",
		Code:         ptr("WELCOME10"),
		Type:         models.PromotionTypePercentage,
		Target:       models.PromotionTargetCart,
		Value:        dec("10"),
		MinAmount:    dec("500"),
		BusinessType: models.BusinessTypeBoth,
		IsActive:     true,
	}
}

func address() models.Address {
	return models.Address{Recipient: "Sara", Phone: "+251911000000", Line1: "Bole Road 12", City: "Addis Ababa", Country: "ET"}
}

func (h *harness) order(t *testing.T, tenant, user string, lines ...OrderLine) *models.OrderDetail {
	t.Helper()
	o, err := h.orders.Create(context.Background(), tenant, user, CreateOrderInput{
		Items:           lines,
		ShippingAddress: address(),
	})
	require.NoError(t, err)
	return o
}

func requireAppErr(t *testing.T, err error, kind apperr.Kind, code string) {
	t.Helper()
	require.Error(t, err)
	ae := apperr.As(err)
	assert.Equal(t, kind, ae.Kind, err.Error())
	assert.Equal(t, code, ae.Code, err.Error())
}
