package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

const ruleColumns = `id, tenant_id, name, trigger, condition, action, is_active, created_at, updated_at`

type ruleRepo struct{ q *tenantQuerier }

func scanRule(s scanner) (*models.AutomationRule, error) {
	var (
		rule      models.AutomationRule
		condition []byte
	)
	err := s.Scan(&rule.ID, &rule.TenantID, &rule.Name, &rule.Trigger, &condition, &rule.Action,
		&rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if len(condition) > 0 {
		if err := json.Unmarshal(condition, &rule.Condition); err != nil {
			return nil, fmt.Errorf("decode rule condition: %w", err)
		}
	}
	return &rule, nil
}

func encodeCondition(c models.RuleCondition) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode rule condition: %w", err)
	}
	return string(b), nil
}

func (r *ruleRepo) Create(ctx context.Context, rule *models.AutomationRule) error {
	rule.TenantID = r.q.tenantID
	condition, err := encodeCondition(rule.Condition)
	if err != nil {
		return err
	}
	_, err = r.q.exec(ctx, `
		INSERT INTO automation_rules (tenant_id, id, name, trigger, condition, action, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rule.ID, rule.Name, rule.Trigger, condition, rule.Action, rule.IsActive, rule.CreatedAt, rule.UpdatedAt)
	return err
}

func (r *ruleRepo) GetByID(ctx context.Context, id string) (*models.AutomationRule, error) {
	return scanRule(r.q.queryRow(ctx,
		`SELECT `+ruleColumns+` FROM automation_rules WHERE tenant_id = $1 AND id = $2`, id))
}

func (r *ruleRepo) list(ctx context.Context, query string, args ...any) ([]models.AutomationRule, error) {
	rows, err := r.q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AutomationRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rule)
	}
	return out, rows.Err()
}

func (r *ruleRepo) List(ctx context.Context, page models.Page) ([]models.AutomationRule, error) {
	page = page.Normalize()
	return r.list(ctx, `SELECT `+ruleColumns+` FROM automation_rules
		WHERE tenant_id = $1 ORDER BY created_at, id LIMIT $2 OFFSET $3`, page.Limit, page.Offset)
}

// ListActiveByTrigger returns rules in creation order, which is the order
// they fire in.
func (r *ruleRepo) ListActiveByTrigger(ctx context.Context, trigger models.Trigger) ([]models.AutomationRule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM automation_rules
		WHERE tenant_id = $1 AND trigger = $2 AND is_active ORDER BY created_at, id`, trigger)
}

func (r *ruleRepo) Update(ctx context.Context, rule *models.AutomationRule) error {
	condition, err := encodeCondition(rule.Condition)
	if err != nil {
		return err
	}
	return r.q.execOne(ctx, `
		UPDATE automation_rules
		SET name = $3, trigger = $4, condition = $5, action = $6, is_active = $7, updated_at = $8
		WHERE tenant_id = $1 AND id = $2`,
		rule.ID, rule.Name, rule.Trigger, condition, rule.Action, rule.IsActive, rule.UpdatedAt)
}

func (r *ruleRepo) Delete(ctx context.Context, id string) error {
	return r.q.execOne(ctx, `DELETE FROM automation_rules WHERE tenant_id = $1 AND id = $2`, id)
}

type notificationRepo struct{ q *tenantQuerier }

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	n.TenantID = r.q.tenantID
	_, err := r.q.exec(ctx, `
		INSERT INTO notifications (tenant_id, id, rule_id, channel, event_type, entity_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.RuleID, n.Channel, n.EventType, n.EntityID, n.Message, n.CreatedAt)
	return err
}

func (r *notificationRepo) List(ctx context.Context, page models.Page) ([]models.Notification, error) {
	page = page.Normalize()
	rows, err := r.q.query(ctx, `
		SELECT id, tenant_id, rule_id, channel, event_type, entity_id, message, created_at
		FROM notifications
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.TenantID, &n.RuleID, &n.Channel, &n.EventType, &n.EntityID,
			&n.Message, &n.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
