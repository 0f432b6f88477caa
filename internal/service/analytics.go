package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/anu-devcode/deploy-test-sub001/internal/analytics"
	"github.com/anu-devcode/deploy-test-sub001/internal/concurrency"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

// maxBuckets bounds how many buckets one sales history request may span.
const maxBuckets = 400

type AnalyticsService struct {
	tx     *Dispatcher
	logger zerolog.Logger
}

func NewAnalyticsService(tx *Dispatcher, logger zerolog.Logger) *AnalyticsService {
	if tx == nil {
		panic("analytics service requires a dispatcher")
	}
	return &AnalyticsService{tx: tx, logger: logger.With().Str("service", "analytics").Logger()}
}

func validateRange(period models.Period, from, to time.Time) error {
	if !period.Valid() {
		return invalid("invalid_period", "period must be DAILY, WEEKLY or MONTHLY")
	}
	if !from.Before(to) {
		return invalid("invalid_range", "from must be before to")
	}
	n := 0
	for s := analytics.BucketStart(period, from); s.Before(to); s = analytics.NextBucket(period, s) {
		if n++; n > maxBuckets {
			return invalid("range_too_large", "range spans more than %d %s buckets", maxBuckets, period)
		}
	}
	return nil
}

// SalesHistory returns one bucket per period in [from, to), zero-filled.
func (s *AnalyticsService) SalesHistory(ctx context.Context, tenantID string, period models.Period, from, to time.Time) ([]models.SalesBucket, error) {
	from, to = from.UTC(), to.UTC()
	if err := validateRange(period, from, to); err != nil {
		return nil, err
	}
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	buckets, err := repos.Analytics.SalesHistory(ctx, period, from, to)
	if err != nil {
		return nil, classify(err, "")
	}
	return analytics.FillGaps(period, from, to, buckets), nil
}

// ExportSales renders SalesHistory as an XLSX workbook.
func (s *AnalyticsService) ExportSales(ctx context.Context, tenantID string, period models.Period, from, to time.Time) ([]byte, error) {
	buckets, err := s.SalesHistory(ctx, tenantID, period, from, to)
	if err != nil {
		return nil, err
	}
	out, err := analytics.SalesWorkbook(period, buckets)
	if err != nil {
		return nil, classify(err, "")
	}
	return out, nil
}

// Dashboard compares the period containing now with the one before it. The
// independent aggregates are queried concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context, tenantID string, period models.Period) (*models.Dashboard, error) {
	if !period.Valid() {
		return nil, invalid("invalid_period", "period must be DAILY, WEEKLY or MONTHLY")
	}
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}

	cur, prev := analytics.CurrentAndPrevious(period, s.tx.Now())
	var (
		curTotals, prevTotals models.WindowTotals
		pending, open         int
	)
	err = concurrency.Run(ctx, 4,
		func(ctx context.Context) (err error) {
			curTotals, err = repos.Analytics.WindowTotals(ctx, cur.Start, cur.End)
			return err
		},
		func(ctx context.Context) (err error) {
			prevTotals, err = repos.Analytics.WindowTotals(ctx, prev.Start, prev.End)
			return err
		},
		func(ctx context.Context) (err error) {
			pending, err = repos.Reviews.CountByStatus(ctx, models.ReviewStatusPending)
			return err
		},
		func(ctx context.Context) (err error) {
			open, err = repos.Deliveries.CountOpen(ctx)
			return err
		},
	)
	if err != nil {
		return nil, classify(err, "")
	}

	return &models.Dashboard{
		Period:            period,
		WindowStart:       cur.Start,
		WindowEnd:         cur.End,
		Revenue:           curTotals.Revenue,
		PreviousRevenue:   prevTotals.Revenue,
		RevenueGrowth:     analytics.Growth(curTotals.Revenue, prevTotals.Revenue),
		Orders:            curTotals.Orders,
		PreviousOrders:    prevTotals.Orders,
		OrdersGrowth:      analytics.Growth(decimalInt(curTotals.Orders), decimalInt(prevTotals.Orders)),
		AverageOrderValue: analytics.AverageOrderValue(curTotals.Revenue, curTotals.Orders),
		PendingReviews:    pending,
		OpenDeliveries:    open,
	}, nil
}

func (s *AnalyticsService) RevenueDistribution(ctx context.Context, tenantID string, from, to time.Time) ([]models.CategoryRevenue, error) {
	if !from.Before(to) {
		return nil, invalid("invalid_range", "from must be before to")
	}
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	out, err := repos.Analytics.RevenueByCategory(ctx, from.UTC(), to.UTC())
	return out, classify(err, "")
}
