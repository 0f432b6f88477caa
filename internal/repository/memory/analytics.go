package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anu-devcode/deploy-test-sub001/internal/analytics"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

type analyticsRepo struct{ v *view }

func revenueBearing(from, to time.Time) func(models.Order) bool {
	w := analytics.Window{Start: from, End: to}
	return func(o models.Order) bool {
		return o.PaymentStatus == models.PaymentStatusVerified &&
			o.Status != models.OrderStatusCancelled &&
			w.Contains(o.CreatedAt)
	}
}

func (r *analyticsRepo) SalesHistory(_ context.Context, period models.Period, from, to time.Time) ([]models.SalesBucket, error) {
	buckets := make(map[time.Time]*models.SalesBucket)
	_ = r.v.do(func(st *state) error {
		for _, o := range scan(st.orders, r.v.tenantID, orderTenant, revenueBearing(from, to)) {
			start := analytics.BucketStart(period, o.CreatedAt)
			b, ok := buckets[start]
			if !ok {
				b = &models.SalesBucket{Start: start, Revenue: decimal.Zero}
				buckets[start] = b
			}
			b.Orders++
			b.Revenue = b.Revenue.Add(o.Total)
		}
		return nil
	})

	out := make([]models.SalesBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (r *analyticsRepo) WindowTotals(_ context.Context, from, to time.Time) (models.WindowTotals, error) {
	totals := models.WindowTotals{Revenue: decimal.Zero}
	_ = r.v.do(func(st *state) error {
		for _, o := range scan(st.orders, r.v.tenantID, orderTenant, revenueBearing(from, to)) {
			totals.Orders++
			totals.Revenue = totals.Revenue.Add(o.Total)
		}
		return nil
	})
	return totals, nil
}

func (r *analyticsRepo) RevenueByCategory(_ context.Context, from, to time.Time) ([]models.CategoryRevenue, error) {
	byCategory := make(map[string]*models.CategoryRevenue)
	_ = r.v.do(func(st *state) error {
		for _, o := range scan(st.orders, r.v.tenantID, orderTenant, revenueBearing(from, to)) {
			for _, it := range st.orderItems[o.ID] {
				c, ok := byCategory[it.CategoryID]
				if !ok {
					c = &models.CategoryRevenue{CategoryID: it.CategoryID, Revenue: decimal.Zero}
					byCategory[it.CategoryID] = c
				}
				c.Revenue = c.Revenue.Add(it.LineTotal)
				c.Units += it.Quantity
			}
		}
		return nil
	})

	out := make([]models.CategoryRevenue, 0, len(byCategory))
	for _, c := range byCategory {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out, nil
}
