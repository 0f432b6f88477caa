package postgres

import (
	"context"
	"errors"

	"github.com/lib/pq"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

const promotionColumns = `id, tenant_id, name, code, type, target, target_ids, value, min_amount,
	usage_limit, usage_count, per_customer_limit, starts_at, ends_at, business_type, is_active,
	created_at, updated_at`

type promotionRepo struct{ q *tenantQuerier }

func scanPromotion(s scanner) (*models.Promotion, error) {
	var p models.Promotion
	err := s.Scan(&p.ID, &p.TenantID, &p.Name, &p.Code, &p.Type, &p.Target, pq.Array(&p.TargetIDs),
		&p.Value, &p.MinAmount, &p.UsageLimit, &p.UsageCount, &p.PerCustomerLimit,
		&p.StartsAt, &p.EndsAt, &p.BusinessType, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func targetIDs(ids []string) any {
	if ids == nil {
		ids = []string{}
	}
	return pq.Array(ids)
}

func (r *promotionRepo) Create(ctx context.Context, p *models.Promotion) error {
	p.TenantID = r.q.tenantID
	_, err := r.q.exec(ctx, `
		INSERT INTO promotions (tenant_id, id, name, code, type, target, target_ids, value, min_amount,
			usage_limit, usage_count, per_customer_limit, starts_at, ends_at, business_type, is_active,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		p.ID, p.Name, p.Code, p.Type, p.Target, targetIDs(p.TargetIDs), p.Value, p.MinAmount,
		p.UsageLimit, p.UsageCount, p.PerCustomerLimit, p.StartsAt, p.EndsAt, p.BusinessType, p.IsActive,
		p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *promotionRepo) GetByID(ctx context.Context, id string) (*models.Promotion, error) {
	return scanPromotion(r.q.queryRow(ctx,
		`SELECT `+promotionColumns+` FROM promotions WHERE tenant_id = $1 AND id = $2`, id))
}

func (r *promotionRepo) GetByCode(ctx context.Context, code string) (*models.Promotion, error) {
	return scanPromotion(r.q.queryRow(ctx,
		`SELECT `+promotionColumns+` FROM promotions WHERE tenant_id = $1 AND code = $2`, code))
}

func (r *promotionRepo) list(ctx context.Context, query string, args ...any) ([]models.Promotion, error) {
	rows, err := r.q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *promotionRepo) List(ctx context.Context, pf models.PromotionFilter) ([]models.Promotion, error) {
	page := pf.Page.Normalize()
	var f filter
	if pf.ActiveOnly {
		f.add("is_active = $%d", true)
	}
	limit := f.page(page.Limit, page.Offset)
	return r.list(ctx,
		`SELECT `+promotionColumns+` FROM promotions WHERE tenant_id = $1`+f.where()+
			` ORDER BY created_at DESC, id`+limit, f.args...)
}

func (r *promotionRepo) ListAutomatic(ctx context.Context) ([]models.Promotion, error) {
	return r.list(ctx, `SELECT `+promotionColumns+` FROM promotions
		WHERE tenant_id = $1 AND is_active AND code IS NULL
		ORDER BY created_at, id`)
}

// Update never writes usage_count; IncrementUsage owns it.
func (r *promotionRepo) Update(ctx context.Context, p *models.Promotion) error {
	return r.q.execOne(ctx, `
		UPDATE promotions
		SET name = $3, code = $4, type = $5, target = $6, target_ids = $7, value = $8, min_amount = $9,
			usage_limit = $10, per_customer_limit = $11, starts_at = $12, ends_at = $13,
			business_type = $14, is_active = $15, updated_at = $16
		WHERE tenant_id = $1 AND id = $2`,
		p.ID, p.Name, p.Code, p.Type, p.Target, targetIDs(p.TargetIDs), p.Value, p.MinAmount,
		p.UsageLimit, p.PerCustomerLimit, p.StartsAt, p.EndsAt,
		p.BusinessType, p.IsActive, p.UpdatedAt)
}

func (r *promotionRepo) Delete(ctx context.Context, id string) error {
	return mapDeleteError(r.q.execOne(ctx, `DELETE FROM promotions WHERE tenant_id = $1 AND id = $2`, id))
}

// IncrementUsage relies on the row lock taken by the UPDATE: concurrent
// redemptions of the same promotion queue behind it and re-check the limit
// against the committed count.
func (r *promotionRepo) IncrementUsage(ctx context.Context, id string) (int, error) {
	var count int
	err := r.q.queryRow(ctx, `
		UPDATE promotions SET usage_count = usage_count + 1
		WHERE tenant_id = $1 AND id = $2 AND (usage_limit IS NULL OR usage_count < usage_limit)
		RETURNING usage_count`, id).Scan(&count)
	if err == nil {
		return count, nil
	}
	if err = mapError(err); !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}

	var exists bool
	if err := r.q.queryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM promotions WHERE tenant_id = $1 AND id = $2)`, id).Scan(&exists); err != nil {
		return 0, mapError(err)
	}
	if exists {
		return 0, repository.ErrUsageLimitReached
	}
	return 0, repository.ErrNotFound
}

func (r *promotionRepo) CountRedemptions(ctx context.Context, promotionID, customerID string) (int, error) {
	var n int
	err := r.q.queryRow(ctx, `
		SELECT COUNT(*) FROM promotion_redemptions
		WHERE tenant_id = $1 AND promotion_id = $2 AND customer_id = $3`,
		promotionID, customerID).Scan(&n)
	return n, mapError(err)
}

func (r *promotionRepo) CreateRedemption(ctx context.Context, red models.PromotionRedemption) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO promotion_redemptions (tenant_id, promotion_id, customer_id, order_id, redeemed_at)
		VALUES ($1, $2, $3, $4, $5)`,
		red.PromotionID, red.CustomerID, red.OrderID, red.RedeemedAt)
	return err
}
