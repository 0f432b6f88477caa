package models

import "time"

type EventType string

const (
	EventOrderCreated       EventType = "ORDER_CREATED"
	EventOrderStatusChanged EventType = "ORDER_STATUS_CHANGED"
	EventPaymentVerified    EventType = "PAYMENT_VERIFIED"
	EventPaymentFailed      EventType = "PAYMENT_FAILED"
	EventDeliveryCompleted  EventType = "DELIVERY_COMPLETED"
	EventReviewSubmitted    EventType = "REVIEW_SUBMITTED"
)

func (t EventType) Valid() bool {
	switch t {
	case EventOrderCreated, EventOrderStatusChanged, EventPaymentVerified,
		EventPaymentFailed, EventDeliveryCompleted, EventReviewSubmitted:
		return true
	}
	return false
}

// Payload keys understood by automation conditions.
const (
	PayloadAmount = "amount"
	PayloadStock  = "stock"
)

// Event is the envelope emitted on lifecycle transitions.
type Event struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	TenantID   string         `json:"tenant_id"`
	EntityID   string         `json:"entity_id"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurred_at"`
}
