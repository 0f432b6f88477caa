package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodDaily   Period = "DAILY"
	PeriodWeekly  Period = "WEEKLY"
	PeriodMonthly Period = "MONTHLY"
)

func (p Period) Valid() bool {
	return p == PeriodDaily || p == PeriodWeekly || p == PeriodMonthly
}

type SalesBucket struct {
	Start   time.Time       `json:"start"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type CategoryRevenue struct {
	CategoryID string          `json:"category_id"`
	Revenue    decimal.Decimal `json:"revenue"`
	Units      int             `json:"units"`
}

// WindowTotals is the raw aggregate for one [From, To) window.
type WindowTotals struct {
	Orders  int
	Revenue decimal.Decimal
}

type Dashboard struct {
	Period            Period          `json:"period"`
	WindowStart       time.Time       `json:"window_start"`
	WindowEnd         time.Time       `json:"window_end"`
	Revenue           decimal.Decimal `json:"revenue"`
	PreviousRevenue   decimal.Decimal `json:"previous_revenue"`
	RevenueGrowth     decimal.Decimal `json:"revenue_growth"`
	Orders            int             `json:"orders"`
	PreviousOrders    int             `json:"previous_orders"`
	OrdersGrowth      decimal.Decimal `json:"orders_growth"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	PendingReviews    int             `json:"pending_reviews"`
	OpenDeliveries    int             `json:"open_deliveries"`
}
