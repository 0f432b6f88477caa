package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/anu-devcode/deploy-test-sub001/internal/automation"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

type RuleInput struct {
	Name      string
	Trigger   models.Trigger
	Condition models.RuleCondition
	Action    models.RuleAction
	IsActive  bool
}

// confirmTriggers are the events whose entity is an order a rule may
// confirm.
var confirmTriggers = map[models.Trigger]bool{
	models.EventOrderCreated:    true,
	models.EventPaymentVerified: true,
}

func validateRule(in RuleInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name_required", "name is required")
	}
	if !in.Trigger.Valid() {
		return invalid("invalid_trigger", "unknown trigger %q", in.Trigger)
	}
	if !in.Action.Valid() {
		return invalid("invalid_action", "unknown action %q", in.Action)
	}
	if in.Action == models.ActionConfirmOrder && !confirmTriggers[in.Trigger] {
		return invalid("invalid_action", "%s cannot run on %s", in.Action, in.Trigger)
	}
	if err := automation.ValidateCondition(in.Condition); err != nil {
		return invalid("invalid_condition", "%v", err)
	}
	return nil
}

// RegisterActions binds the rule actions to engine. Handlers write through
// the repositories of the triggering transaction.
func RegisterActions(engine *automation.Engine, now Clock) {
	if now == nil {
		now = SystemClock
	}
	engine.Register(models.ActionNotifyStaff, notify(models.ChannelStaff, now))
	engine.Register(models.ActionNotifyCustomer, notify(models.ChannelCustomer, now))
	engine.Register(models.ActionConfirmOrder, confirmOrder(now))
}

func notify(channel models.NotificationChannel, now Clock) automation.Handler {
	return func(ctx context.Context, repos *repository.Repositories, rule models.AutomationRule, evt models.Event) ([]models.Event, error) {
		n := &models.Notification{
			ID:        newID(),
			RuleID:    rule.ID,
			Channel:   channel,
			EventType: evt.Type,
			EntityID:  evt.EntityID,
			Message:   fmt.Sprintf("%s: %s on %s", rule.Name, evt.Type, evt.EntityID),
			CreatedAt: now(),
		}
		if err := repos.Notifications.Create(ctx, n); err != nil {
			return nil, classify(err, "notification")
		}
		return nil, nil
	}
}

// confirmOrder moves a DRAFT order to CONFIRMED. Orders already past DRAFT
// are left as they are.
func confirmOrder(now Clock) automation.Handler {
	return func(ctx context.Context, repos *repository.Repositories, _ models.AutomationRule, evt models.Event) ([]models.Event, error) {
		o, err := repos.Orders.GetForUpdate(ctx, evt.EntityID)
		if err != nil {
			return nil, classify(err, "order")
		}
		if o.Status != models.OrderStatusDraft {
			return nil, nil
		}
		b := &Batch{tenantID: repos.TenantID, at: now()}
		if err := changeOrderStatus(ctx, repos, b, o, models.OrderStatusConfirmed); err != nil {
			return nil, err
		}
		return b.events, nil
	}
}

type AutomationService struct {
	tx     *Dispatcher
	logger zerolog.Logger
}

func NewAutomationService(tx *Dispatcher, logger zerolog.Logger) *AutomationService {
	if tx == nil {
		panic("automation service requires a dispatcher")
	}
	return &AutomationService{tx: tx, logger: logger.With().Str("service", "automation").Logger()}
}

func (in RuleInput) apply(r *models.AutomationRule) {
	r.Name = strings.TrimSpace(in.Name)
	r.Trigger = in.Trigger
	r.Condition = in.Condition
	r.Action = in.Action
	r.IsActive = in.IsActive
}

func (s *AutomationService) Create(ctx context.Context, tenantID string, in RuleInput) (*models.AutomationRule, error) {
	if err := validateRule(in); err != nil {
		return nil, err
	}
	var out *models.AutomationRule
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, b *Batch) error {
		r := &models.AutomationRule{ID: newID(), CreatedAt: b.at, UpdatedAt: b.at}
		in.apply(r)
		if err := repos.AutomationRules.Create(ctx, r); err != nil {
			return classify(err, "rule")
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AutomationService) Get(ctx context.Context, tenantID, id string) (*models.AutomationRule, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	r, err := repos.AutomationRules.GetByID(ctx, id)
	return r, classify(err, "rule")
}

func (s *AutomationService) List(ctx context.Context, tenantID string, page models.Page) ([]models.AutomationRule, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	out, err := repos.AutomationRules.List(ctx, page)
	return out, classify(err, "rule")
}

func (s *AutomationService) Update(ctx context.Context, tenantID, id string, in RuleInput) (*models.AutomationRule, error) {
	if err := validateRule(in); err != nil {
		return nil, err
	}
	var out *models.AutomationRule
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, b *Batch) error {
		r, err := repos.AutomationRules.GetByID(ctx, id)
		if err != nil {
			return classify(err, "rule")
		}
		in.apply(r)
		r.UpdatedAt = b.at
		if err := repos.AutomationRules.Update(ctx, r); err != nil {
			return classify(err, "rule")
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AutomationService) Delete(ctx context.Context, tenantID, id string) error {
	return s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, _ *Batch) error {
		return classify(repos.AutomationRules.Delete(ctx, id), "rule")
	})
}

func (s *AutomationService) Notifications(ctx context.Context, tenantID string, page models.Page) ([]models.Notification, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	out, err := repos.Notifications.List(ctx, page)
	return out, classify(err, "notification")
}
