package models

import "github.com/anu-devcode/deploy-test-sub001/internal/fsm"

var OrderTransitions = fsm.New("order", map[OrderStatus][]OrderStatus{
	OrderStatusDraft:     {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
})

var PaymentTransitions = fsm.New("payment", map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusVerified, PaymentStatusFailed},
	PaymentStatusFailed:  {PaymentStatusPending},
})

var DeliveryTransitions = fsm.New("delivery", map[DeliveryStatus][]DeliveryStatus{
	DeliveryStatusPending:   {DeliveryStatusInTransit, DeliveryStatusFailed},
	DeliveryStatusInTransit: {DeliveryStatusDelivered, DeliveryStatusFailed},
})

// Reviews are terminal once moderated.
var ReviewTransitions = fsm.New("review", map[ReviewStatus][]ReviewStatus{
	ReviewStatusPending: {ReviewStatusApproved, ReviewStatusRejected},
})

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusVerified, PaymentStatusFailed:
		return true
	}
	return false
}

func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusInTransit, DeliveryStatusDelivered, DeliveryStatusFailed:
		return true
	}
	return false
}

func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}
