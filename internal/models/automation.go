package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trigger names the domain event an automation rule listens to.
type Trigger = EventType

type RuleAction string

const (
	ActionNotifyStaff    RuleAction = "NOTIFY_STAFF"
	ActionNotifyCustomer RuleAction = "NOTIFY_CUSTOMER"
	ActionConfirmOrder   RuleAction = "CONFIRM_ORDER"
)

func (a RuleAction) Valid() bool {
	switch a {
	case ActionNotifyStaff, ActionNotifyCustomer, ActionConfirmOrder:
		return true
	}
	return false
}

// RuleCondition is matched against the triggering event's payload only.
type RuleCondition struct {
	MinAmount *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount *decimal.Decimal `json:"max_amount,omitempty"`
	MinStock  *int             `json:"min_stock,omitempty"`
	MaxStock  *int             `json:"max_stock,omitempty"`
}

type AutomationRule struct {
	ID        string        `json:"id"`
	TenantID  string        `json:"tenant_id"`
	Name      string        `json:"name"`
	Trigger   Trigger       `json:"trigger"`
	Condition RuleCondition `json:"condition"`
	Action    RuleAction    `json:"action"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type NotificationChannel string

const (
	ChannelStaff    NotificationChannel = "STAFF"
	ChannelCustomer NotificationChannel = "CUSTOMER"
)

type Notification struct {
	ID        string              `json:"id"`
	TenantID  string              `json:"tenant_id"`
	RuleID    string              `json:"rule_id"`
	Channel   NotificationChannel `json:"channel"`
	EventType EventType           `json:"event_type"`
	EntityID  string              `json:"entity_id"`
	Message   string              `json:"message"`
	CreatedAt time.Time           `json:"created_at"`
}
