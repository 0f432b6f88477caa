package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusVerified PaymentStatus = "VERIFIED"
	PaymentStatusFailed   PaymentStatus = "FAILED"
)

// Address is a snapshot taken at checkout; it is never updated afterwards.
type Address struct {
	Recipient  string `json:"recipient"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
}

type Order struct {
	ID              string          `json:"id"`
	TenantID        string          `json:"tenant_id"`
	OrderNumber     string          `json:"order_number"`
	CustomerID      string          `json:"customer_id"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	Segment         Segment         `json:"segment"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountTotal   decimal.Decimal `json:"discount_total"`
	ShippingTotal   decimal.Decimal `json:"shipping_total"`
	Total           decimal.Decimal `json:"total"`
	PromotionID     *string         `json:"promotion_id,omitempty"`
	PromotionCode   *string         `json:"promotion_code,omitempty"`
	ShippingAddress Address         `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem prices are captured at order time and never re-read from the
// live product.
type OrderItem struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	CategoryID  string          `json:"category_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderDetail is the hydrated read model; Items and Customer are only set
// when requested.
type OrderDetail struct {
	Order
	Items    []OrderItem `json:"items,omitempty"`
	Customer *Customer   `json:"customer,omitempty"`
}

type OrderInclude struct {
	Items    bool
	Customer bool
}

type OrderFilter struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
	CustomerID    string
	Page          Page
}
