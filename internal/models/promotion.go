package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PromotionType string

const (
	PromotionTypePercentage  PromotionType = "PERCENTAGE"
	PromotionTypeFixedAmount PromotionType = "FIXED_AMOUNT"
)

type PromotionTarget string

const (
	PromotionTargetCart     PromotionTarget = "CART"
	PromotionTargetProduct  PromotionTarget = "PRODUCT"
	PromotionTargetCategory PromotionTarget = "CATEGORY"
)

// BusinessType selects which customer segment may redeem a promotion.
type BusinessType string

const (
	BusinessTypeRetail BusinessType = "RETAIL"
	BusinessTypeBulk   BusinessType = "BULK"
	BusinessTypeBoth   BusinessType = "BOTH"
)

func (b BusinessType) Matches(s Segment) bool {
	switch b {
	case BusinessTypeBoth:
		return true
	case BusinessTypeRetail:
		return s == SegmentRetail
	case BusinessTypeBulk:
		return s == SegmentBulk
	}
	return false
}

type Promotion struct {
	ID               string          `json:"id"`
	TenantID         string          `json:"tenant_id"`
	Name             string          `json:"name"`
	Code             *string         `json:"code,omitempty"`
	Type             PromotionType   `json:"type"`
	Target           PromotionTarget `json:"target"`
	TargetIDs        []string        `json:"target_ids,omitempty"`
	Value            decimal.Decimal `json:"value"`
	MinAmount        decimal.Decimal `json:"min_amount"`
	UsageLimit       *int            `json:"usage_limit,omitempty"`
	UsageCount       int             `json:"usage_count"`
	PerCustomerLimit *int            `json:"per_customer_limit,omitempty"`
	StartsAt         *time.Time      `json:"starts_at,omitempty"`
	EndsAt           *time.Time      `json:"ends_at,omitempty"`
	BusinessType     BusinessType    `json:"business_type"`
	IsActive         bool            `json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type PromotionRedemption struct {
	PromotionID string    `json:"promotion_id"`
	CustomerID  string    `json:"customer_id"`
	OrderID     string    `json:"order_id"`
	RedeemedAt  time.Time `json:"redeemed_at"`
}

type PromotionFilter struct {
	ActiveOnly bool
	Page       Page
}
