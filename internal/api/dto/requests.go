package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type RegisterCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Segment string `json:"segment" validate:"omitempty,oneof=RETAIL BULK"`
}

type CreateProductRequest struct {
	CategoryID string          `json:"category_id" validate:"required,max=100"`
	Name       string          `json:"name" validate:"required,max=200"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock" validate:"gte=0"`
	IsActive   *bool           `json:"is_active"`
}

type UpdateProductRequest struct {
	CategoryID *string          `json:"category_id" validate:"omitempty,max=100"`
	Name       *string          `json:"name" validate:"omitempty,max=200"`
	Price      *decimal.Decimal `json:"price"`
	Stock      *int             `json:"stock" validate:"omitempty,gte=0"`
	IsActive   *bool            `json:"is_active"`
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

type AddressRequest struct {
	Recipient  string `json:"recipient" validate:"required,max=200"`
	Phone      string `json:"phone" validate:"required,max=32"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2" validate:"max=200"`
	City       string `json:"city" validate:"required,max=100"`
	Region     string `json:"region" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
	Country    string `json:"country" validate:"required,len=2"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress AddressRequest     `json:"shipping_address"`
	ShippingTotal   decimal.Decimal    `json:"shipping_total"`
	PromotionCode   *string            `json:"promotion_code" validate:"omitempty,max=64"`
}

type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=DRAFT CONFIRMED SHIPPED DELIVERED CANCELLED"`
}

type PaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING VERIFIED FAILED"`
}

type CreateDeliveryRequest struct {
	OrderID       string     `json:"order_id" validate:"required"`
	DriverName    *string    `json:"driver_name" validate:"omitempty,max=200"`
	DriverPhone   *string    `json:"driver_phone" validate:"omitempty,max=32"`
	VehicleInfo   *string    `json:"vehicle_info" validate:"omitempty,max=200"`
	EstimatedTime *time.Time `json:"estimated_time"`
	Notes         *string    `json:"notes" validate:"omitempty,max=1000"`
}

type UpdateDeliveryRequest struct {
	DriverName    *string    `json:"driver_name" validate:"omitempty,max=200"`
	DriverPhone   *string    `json:"driver_phone" validate:"omitempty,max=32"`
	VehicleInfo   *string    `json:"vehicle_info" validate:"omitempty,max=200"`
	EstimatedTime *time.Time `json:"estimated_time"`
	Notes         *string    `json:"notes" validate:"omitempty,max=1000"`
	Status        *string    `json:"status" validate:"omitempty,oneof=PENDING IN_TRANSIT DELIVERED FAILED"`
}

type DeliveryStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING IN_TRANSIT DELIVERED FAILED"`
}

type CreateReviewRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Rating    int     `json:"rating" validate:"min=1,max=5"`
	Comment   *string `json:"comment" validate:"omitempty,max=2000"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

type ModerateReviewRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

type PromotionRequest struct {
	Name             string          `json:"name" validate:"required,max=200"`
	Code             *string         `json:"code" validate:"omitempty,max=64"`
	Type             string          `json:"type" validate:"required,oneof=PERCENTAGE FIXED_AMOUNT"`
	Target           string          `json:"target" validate:"required,oneof=CART PRODUCT CATEGORY"`
	TargetIDs        []string        `json:"target_ids" validate:"omitempty,dive,required"`
	Value            decimal.Decimal `json:"value"`
	MinAmount        decimal.Decimal `json:"min_amount"`
	UsageLimit       *int            `json:"usage_limit" validate:"omitempty,min=1"`
	PerCustomerLimit *int            `json:"per_customer_limit" validate:"omitempty,min=1"`
	StartsAt         *time.Time      `json:"starts_at"`
	EndsAt           *time.Time      `json:"ends_at"`
	BusinessType     string          `json:"business_type" validate:"required,oneof=RETAIL BULK BOTH"`
	IsActive         *bool           `json:"is_active"`
}

type PreviewRequest struct {
	Code  *string            `json:"code" validate:"omitempty,max=64"`
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type RuleConditionRequest struct {
	MinAmount *decimal.Decimal `json:"min_amount"`
	MaxAmount *decimal.Decimal `json:"max_amount"`
	MinStock  *int             `json:"min_stock"`
	MaxStock  *int             `json:"max_stock"`
}

type RuleRequest struct {
	Name      string               `json:"name" validate:"required,max=200"`
	Trigger   string               `json:"trigger" validate:"required"`
	Condition RuleConditionRequest `json:"condition"`
	Action    string               `json:"action" validate:"required,oneof=NOTIFY_STAFF NOTIFY_CUSTOMER CONFIRM_ORDER"`
	IsActive  *bool                `json:"is_active"`
}
