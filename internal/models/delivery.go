package models

import "time"

type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusInTransit DeliveryStatus = "IN_TRANSIT"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	DeliveryStatusFailed    DeliveryStatus = "FAILED"
)

type Delivery struct {
	ID             string         `json:"id"`
	TenantID       string         `json:"tenant_id"`
	OrderID        string         `json:"order_id"`
	Status         DeliveryStatus `json:"status"`
	DriverName     *string        `json:"driver_name,omitempty"`
	DriverPhone    *string        `json:"driver_phone,omitempty"`
	VehicleInfo    *string        `json:"vehicle_info,omitempty"`
	EstimatedTime  *time.Time     `json:"estimated_time,omitempty"`
	ActualDelivery *time.Time     `json:"actual_delivery,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type DriverInfo struct {
	DriverName  *string
	DriverPhone *string
	VehicleInfo *string
}

// DeliveryPatch is the generic field patch. Status, when present, is routed
// through the same transition path as the dedicated status update.
type DeliveryPatch struct {
	DriverInfo
	EstimatedTime *time.Time
	Notes         *string
	Status        *DeliveryStatus
}

type DeliveryFilter struct {
	Status DeliveryStatus
	Page   Page
}
