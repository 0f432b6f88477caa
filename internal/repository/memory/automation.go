package memory

import (
	"context"
	"time"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

func ruleTenant(r models.AutomationRule) string { return r.TenantID }

func notificationTenant(n models.Notification) string { return n.TenantID }

type ruleRepo struct{ v *view }

func (r *ruleRepo) Create(_ context.Context, rule *models.AutomationRule) error {
	rule.TenantID = r.v.tenantID
	return r.v.do(func(st *state) error {
		if _, ok := st.rules[rule.ID]; ok {
			return repository.ErrDuplicate
		}
		st.rules[rule.ID] = *rule
		return nil
	})
}

func (r *ruleRepo) GetByID(_ context.Context, id string) (*models.AutomationRule, error) {
	var out models.AutomationRule
	err := r.v.do(func(st *state) error {
		rule, err := owned(st.rules, id, r.v.tenantID, ruleTenant)
		out = rule
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ruleRepo) List(_ context.Context, page models.Page) ([]models.AutomationRule, error) {
	var out []models.AutomationRule
	_ = r.v.do(func(st *state) error {
		out = scan(st.rules, r.v.tenantID, ruleTenant, nil)
		return nil
	})
	oldestFirst(out, func(r models.AutomationRule) time.Time { return r.CreatedAt }, func(r models.AutomationRule) string { return r.ID })
	return paginate(out, page), nil
}

func (r *ruleRepo) ListActiveByTrigger(_ context.Context, trigger models.Trigger) ([]models.AutomationRule, error) {
	var out []models.AutomationRule
	_ = r.v.do(func(st *state) error {
		out = scan(st.rules, r.v.tenantID, ruleTenant, func(rule models.AutomationRule) bool {
			return rule.IsActive && rule.Trigger == trigger
		})
		return nil
	})
	oldestFirst(out, func(r models.AutomationRule) time.Time { return r.CreatedAt }, func(r models.AutomationRule) string { return r.ID })
	return out, nil
}

func (r *ruleRepo) Update(_ context.Context, rule *models.AutomationRule) error {
	return r.v.do(func(st *state) error {
		existing, err := owned(st.rules, rule.ID, r.v.tenantID, ruleTenant)
		if err != nil {
			return err
		}
		rule.TenantID = existing.TenantID
		rule.CreatedAt = existing.CreatedAt
		st.rules[rule.ID] = *rule
		return nil
	})
}

func (r *ruleRepo) Delete(_ context.Context, id string) error {
	return r.v.do(func(st *state) error {
		if _, err := owned(st.rules, id, r.v.tenantID, ruleTenant); err != nil {
			return err
		}
		delete(st.rules, id)
		return nil
	})
}

type notificationRepo struct{ v *view }

func (r *notificationRepo) Create(_ context.Context, n *models.Notification) error {
	n.TenantID = r.v.tenantID
	return r.v.do(func(st *state) error {
		st.notifications[n.ID] = *n
		return nil
	})
}

func (r *notificationRepo) List(_ context.Context, page models.Page) ([]models.Notification, error) {
	var out []models.Notification
	_ = r.v.do(func(st *state) error {
		out = scan(st.notifications, r.v.tenantID, notificationTenant, nil)
		return nil
	})
	newestFirst(out, func(n models.Notification) time.Time { return n.CreatedAt }, func(n models.Notification) string { return n.ID })
	return paginate(out, page), nil
}
