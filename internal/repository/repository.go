// Package repository declares the persistence contract. Every repository is
// bound to one tenant when it is handed out by a Store; none of the methods
// take a tenant id.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrInUse     = errors.New("record is still referenced")

	// ErrConstraint is a write rejected by a check constraint.
	ErrConstraint = errors.New("constraint violated")

	// ErrInsufficientStock is returned by AdjustStock when the adjustment
	// would take stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrUsageLimitReached is returned by the conditional usage increment
	// when the promotion has no redemptions left.
	ErrUsageLimitReached = errors.New("promotion usage limit reached")
)

type CustomerRepository interface {
	Create(ctx context.Context, c *models.Customer) error
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	GetByUserID(ctx context.Context, userID string) (*models.Customer, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, activeOnly bool, page models.Page) ([]models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	// AdjustStock adds delta to stock unless the result would be negative,
	// and returns the new stock.
	AdjustStock(ctx context.Context, id string, delta int, at time.Time) (int, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order, items []models.OrderItem) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// GetForUpdate locks the order row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*models.Order, error)
	Items(ctx context.Context, orderID string) ([]models.OrderItem, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, at time.Time) error
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus, at time.Time) error
}

type DeliveryRepository interface {
	// Create returns ErrDuplicate when the order already has a delivery.
	Create(ctx context.Context, d *models.Delivery) error
	GetByID(ctx context.Context, id string) (*models.Delivery, error)
	GetForUpdate(ctx context.Context, id string) (*models.Delivery, error)
	List(ctx context.Context, filter models.DeliveryFilter) ([]models.Delivery, error)
	Update(ctx context.Context, d *models.Delivery) error
	CountOpen(ctx context.Context) (int, error)
}

type ReviewRepository interface {
	// Create returns ErrDuplicate when the customer already reviewed the product.
	Create(ctx context.Context, r *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	Update(ctx context.Context, r *models.Review) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.ReviewFilter) ([]models.Review, error)
	// Stats aggregates APPROVED reviews only.
	Stats(ctx context.Context, productID string) (*models.ReviewStats, error)
	CountByStatus(ctx context.Context, status models.ReviewStatus) (int, error)
}

type PromotionRepository interface {
	Create(ctx context.Context, p *models.Promotion) error
	GetByID(ctx context.Context, id string) (*models.Promotion, error)
	GetByCode(ctx context.Context, code string) (*models.Promotion, error)
	List(ctx context.Context, filter models.PromotionFilter) ([]models.Promotion, error)
	// ListAutomatic returns active promotions that have no code.
	ListAutomatic(ctx context.Context) ([]models.Promotion, error)
	Update(ctx context.Context, p *models.Promotion) error
	Delete(ctx context.Context, id string) error
	// IncrementUsage atomically bumps usage_count if it is still below
	// usage_limit and returns the new count. The promotion row stays locked
	// for the rest of the transaction.
	IncrementUsage(ctx context.Context, id string) (int, error)
	CountRedemptions(ctx context.Context, promotionID, customerID string) (int, error)
	CreateRedemption(ctx context.Context, r models.PromotionRedemption) error
}

type AutomationRuleRepository interface {
	Create(ctx context.Context, r *models.AutomationRule) error
	GetByID(ctx context.Context, id string) (*models.AutomationRule, error)
	List(ctx context.Context, page models.Page) ([]models.AutomationRule, error)
	ListActiveByTrigger(ctx context.Context, trigger models.Trigger) ([]models.AutomationRule, error)
	Update(ctx context.Context, r *models.AutomationRule) error
	Delete(ctx context.Context, id string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, page models.Page) ([]models.Notification, error)
}

// AnalyticsRepository aggregates revenue-bearing orders: payment VERIFIED
// and status not CANCELLED. Windows are half-open [from, to).
type AnalyticsRepository interface {
	SalesHistory(ctx context.Context, period models.Period, from, to time.Time) ([]models.SalesBucket, error)
	WindowTotals(ctx context.Context, from, to time.Time) (models.WindowTotals, error)
	RevenueByCategory(ctx context.Context, from, to time.Time) ([]models.CategoryRevenue, error)
}

// Repositories is the full set of repositories bound to one tenant and,
// inside ExecTx, to one transaction.
type Repositories struct {
	TenantID        string
	Customers       CustomerRepository
	Products        ProductRepository
	Orders          OrderRepository
	Deliveries      DeliveryRepository
	Reviews         ReviewRepository
	Promotions      PromotionRepository
	AutomationRules AutomationRuleRepository
	Notifications   NotificationRepository
	Analytics       AnalyticsRepository
}

type Store interface {
	// Scoped returns non-transactional repositories for tenantID.
	Scoped(tenantID string) (*Repositories, error)
	// ExecTx runs fn in one transaction. fn's error rolls everything back.
	ExecTx(ctx context.Context, tenantID string, fn func(*Repositories) error) error
}

var ErrMissingTenant = errors.New("tenant id is required")
