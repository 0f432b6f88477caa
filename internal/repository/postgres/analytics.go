package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

// Revenue-bearing orders: payment verified, not cancelled, created in [from, to).
const revenueBearing = `payment_status = 'VERIFIED' AND status <> 'CANCELLED' AND created_at >= $2 AND created_at < $3`

type analyticsRepo struct{ q *tenantQuerier }

func truncUnit(p models.Period) (string, error) {
	switch p {
	case models.PeriodDaily:
		return "day", nil
	case models.PeriodWeekly:
		return "week", nil
	case models.PeriodMonthly:
		return "month", nil
	}
	return "", fmt.Errorf("unknown period %q", p)
}

func (r *analyticsRepo) SalesHistory(ctx context.Context, period models.Period, from, to time.Time) ([]models.SalesBucket, error) {
	unit, err := truncUnit(period)
	if err != nil {
		return nil, err
	}

	rows, err := r.q.query(ctx, `
		SELECT date_trunc($4, created_at AT TIME ZONE 'UTC') AT TIME ZONE 'UTC' AS bucket,
			COUNT(*), COALESCE(SUM(total), 0)
		FROM orders
		WHERE tenant_id = $1 AND `+revenueBearing+`
		GROUP BY 1
		ORDER BY 1`, from, to, unit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SalesBucket
	for rows.Next() {
		var b models.SalesBucket
		if err := rows.Scan(&b.Start, &b.Orders, &b.Revenue); err != nil {
			return nil, mapError(err)
		}
		b.Start = b.Start.UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *analyticsRepo) WindowTotals(ctx context.Context, from, to time.Time) (models.WindowTotals, error) {
	var t models.WindowTotals
	err := r.q.queryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM orders
		WHERE tenant_id = $1 AND `+revenueBearing, from, to).Scan(&t.Orders, &t.Revenue)
	return t, mapError(err)
}

func (r *analyticsRepo) RevenueByCategory(ctx context.Context, from, to time.Time) ([]models.CategoryRevenue, error) {
	rows, err := r.q.query(ctx, `
		SELECT i.category_id, COALESCE(SUM(i.line_total), 0), COALESCE(SUM(i.quantity), 0)
		FROM order_items i
		JOIN orders o ON o.tenant_id = i.tenant_id AND o.id = i.order_id
		WHERE i.tenant_id = $1
			AND o.payment_status = 'VERIFIED' AND o.status <> 'CANCELLED'
			AND o.created_at >= $2 AND o.created_at < $3
		GROUP BY i.category_id
		ORDER BY 2 DESC, i.category_id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CategoryRevenue
	for rows.Next() {
		var c models.CategoryRevenue
		if err := rows.Scan(&c.CategoryID, &c.Revenue, &c.Units); err != nil {
			return nil, mapError(err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
