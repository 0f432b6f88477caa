package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "PENDING"
	ReviewStatusApproved ReviewStatus = "APPROVED"
	ReviewStatusRejected ReviewStatus = "REJECTED"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID         string       `json:"id"`
	TenantID   string       `json:"tenant_id"`
	CustomerID string       `json:"customer_id"`
	ProductID  string       `json:"product_id"`
	Rating     int          `json:"rating"`
	Comment    *string      `json:"comment,omitempty"`
	Status     ReviewStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// ReviewStats is derived from APPROVED reviews only.
type ReviewStats struct {
	ProductID     string          `json:"product_id"`
	AverageRating decimal.Decimal `json:"average_rating"`
	TotalReviews  int             `json:"total_reviews"`
	Distribution  map[int]int     `json:"distribution"`
}

type ReviewFilter struct {
	Status     ReviewStatus
	ProductID  string
	CustomerID string
	Page       Page
}
