package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

const tenant = "tenant-a"

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *repository.Repositories) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repos, err := NewStore(db).Scoped(tenant)
	require.NoError(t, err)

	return db, mock, repos
}

func TestGuardRejectsUnscopedStatements(t *testing.T) {
	db, mock, _ := setupMockDB(t)
	defer db.Close()

	q := newTenantQuerier(db, tenant)
	ctx := context.Background()

	_, err := q.exec(ctx, `DELETE FROM promotions WHERE id = $1`, "promo-1")
	assert.ErrorIs(t, err, ErrUnscopedQuery)

	_, err = q.query(ctx, `SELECT id FROM orders WHERE tenant_id = $2`, "x")
	assert.ErrorIs(t, err, ErrUnscopedQuery)

	err = q.queryRow(ctx, `INSERT INTO orders (id, tenant_id) VALUES ($1, $2)`, "o-1").Scan()
	assert.ErrorIs(t, err, ErrUnscopedQuery)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScopedRequiresTenant(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewStore(db).Scoped("")
	assert.ErrorIs(t, err, repository.ErrMissingTenant)
}

func TestGetOrderBindsTenantFirst(t *testing.T) {
	db, mock, repos := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM orders WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(tenant, "o-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repos.Orders.GetByID(context.Background(), "o-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdersAppendsFilterPlaceholders(t *testing.T) {
	db, mock, repos := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE tenant_id = \$1 AND status = \$2 AND customer_id = \$3 ORDER BY created_at DESC, id LIMIT \$4 OFFSET \$5`).
		WithArgs(tenant, models.OrderStatusConfirmed, "cust-1", 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	out, err := repos.Orders.List(context.Background(), models.OrderFilter{
		Status:     models.OrderStatusConfirmed,
		CustomerID: "cust-1",
		Page:       models.Page{Limit: 10, Offset: 20},
	})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementUsage(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock, repos := setupMockDB(t)
		defer db.Close()

		mock.ExpectQuery(`UPDATE promotions SET usage_count = usage_count \+ 1`).
			WithArgs(tenant, "promo-1").
			WillReturnRows(sqlmock.NewRows([]string{"usage_count"}).AddRow(3))

		n, err := repos.Promotions.IncrementUsage(context.Background(), "promo-1")
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("limit reached", func(t *testing.T) {
		db, mock, repos := setupMockDB(t)
		defer db.Close()

		mock.ExpectQuery(`UPDATE promotions SET usage_count`).
			WithArgs(tenant, "promo-1").
			WillReturnRows(sqlmock.NewRows([]string{"usage_count"}))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(tenant, "promo-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := repos.Promotions.IncrementUsage(context.Background(), "promo-1")
		assert.ErrorIs(t, err, repository.ErrUsageLimitReached)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, repos := setupMockDB(t)
		defer db.Close()

		mock.ExpectQuery(`UPDATE promotions SET usage_count`).
			WillReturnRows(sqlmock.NewRows([]string{"usage_count"}))
		mock.ExpectQuery(`SELECT EXISTS`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repos.Promotions.IncrementUsage(context.Background(), "promo-1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeletePromotionWithRedemptionsIsInUse(t *testing.T) {
	db, mock, repos := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM promotions`).
		WithArgs(tenant, "promo-1").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "promotion_redemptions_promotion_id_fkey"})

	err := repos.Promotions.Delete(context.Background(), "promo-1")
	assert.ErrorIs(t, err, repository.ErrInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePromotionCheckViolation(t *testing.T) {
	db, mock, repos := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE promotions`).
		WillReturnError(&pq.Error{Code: "23514", Constraint: "promotions_usage_check"})

	limit := 1
	err := repos.Promotions.Update(context.Background(), &models.Promotion{ID: "promo-1", UsageLimit: &limit, UpdatedAt: t0})
	assert.ErrorIs(t, err, repository.ErrConstraint)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func newDelivery() *models.Delivery {
	return &models.Delivery{
		ID:        "d-1",
		OrderID:   "o-1",
		Status:    models.DeliveryStatusPending,
		CreatedAt: t0,
		UpdatedAt: t0,
	}
}

func expectDeliveryInsert(mock sqlmock.Sqlmock) *sqlmock.ExpectedExec {
	args := []driver.Value{tenant, "d-1", "o-1"}
	for i := 0; i < 9; i++ {
		args = append(args, sqlmock.AnyArg())
	}
	return mock.ExpectExec(`INSERT INTO deliveries (.+) SELECT (.+) FROM orders o WHERE o.tenant_id = \$1 AND o.id = \$3`).
		WithArgs(args...)
}

func TestCreateDelivery(t *testing.T) {
	t.Run("order in another tenant", func(t *testing.T) {
		db, mock, repos := setupMockDB(t)
		defer db.Close()

		expectDeliveryInsert(mock).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repos.Deliveries.Create(context.Background(), newDelivery())
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate", func(t *testing.T) {
		db, mock, repos := setupMockDB(t)
		defer db.Close()

		expectDeliveryInsert(mock).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "deliveries_order_id_key"})

		err := repos.Deliveries.Create(context.Background(), newDelivery())
		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("created", func(t *testing.T) {
		db, mock, repos := setupMockDB(t)
		defer db.Close()

		expectDeliveryInsert(mock).WillReturnResult(sqlmock.NewResult(0, 1))

		d := newDelivery()
		require.NoError(t, repos.Deliveries.Create(context.Background(), d))
		assert.Equal(t, tenant, d.TenantID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetDeliveryScansNullableColumns(t *testing.T) {
	db, mock, repos := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "tenant_id", "order_id", "status", "driver_name", "driver_phone",
		"vehicle_info", "estimated_time", "actual_delivery", "notes", "created_at", "updated_at"}).
		AddRow("d-1", tenant, "o-1", "IN_TRANSIT", "Abebe", nil, nil, t0.Add(time.Hour), nil, nil, t0, t0)
	mock.ExpectQuery(`FROM deliveries WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(tenant, "d-1").
		WillReturnRows(rows)

	d, err := repos.Deliveries.GetByID(context.Background(), "d-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusInTransit, d.Status)
	require.NotNil(t, d.DriverName)
	assert.Equal(t, "Abebe", *d.DriverName)
	assert.Nil(t, d.DriverPhone)
	assert.Nil(t, d.ActualDelivery)
	require.NotNil(t, d.EstimatedTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewStatsAveragesApprovedHistogram(t *testing.T) {
	db, mock, repos := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT rating, COUNT\(\*\) FROM reviews (.+) status = 'APPROVED'`).
		WithArgs(tenant, "prod-1").
		WillReturnRows(sqlmock.NewRows([]string{"rating", "count"}).AddRow(5, 2).AddRow(3, 1))

	stats, err := repos.Reviews.Stats(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalReviews)
	assert.Equal(t, "4.33", stats.AverageRating.StringFixed(2))
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 1, 4: 0, 5: 2}, stats.Distribution)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPromotionScansTargetArray(t *testing.T) {
	db, mock, repos := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "tenant_id", "name", "code", "type", "target", "target_ids", "value",
		"min_amount", "usage_limit", "usage_count", "per_customer_limit", "starts_at", "ends_at",
		"business_type", "is_active", "created_at", "updated_at"}).
		AddRow("promo-1", tenant, "Drinks", "DRINKS15", "PERCENTAGE", "CATEGORY", "{drinks,juice}", "15",
			"0", 100, 4, nil, nil, nil, "BOTH", true, t0, t0)
	mock.ExpectQuery(`FROM promotions WHERE tenant_id = \$1 AND code = \$2`).
		WithArgs(tenant, "DRINKS15").
		WillReturnRows(rows)

	p, err := repos.Promotions.GetByCode(context.Background(), "DRINKS15")
	require.NoError(t, err)
	assert.Equal(t, []string{"drinks", "juice"}, p.TargetIDs)
	assert.Equal(t, "15", p.Value.String())
	require.NotNil(t, p.UsageLimit)
	assert.Equal(t, 100, *p.UsageLimit)
	assert.Nil(t, p.PerCustomerLimit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSalesHistoryTruncatesByPeriod(t *testing.T) {
	db, mock, repos := setupMockDB(t)
	defer db.Close()

	from, to := t0.AddDate(0, 0, -14), t0
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT date_trunc\(\$4`).
		WithArgs(tenant, from, to, "week").
		WillReturnRows(sqlmock.NewRows([]string{"bucket", "count", "sum"}).AddRow(monday, 2, "450.50"))

	out, err := repos.Analytics.SalesHistory(context.Background(), models.PeriodWeekly, from, to)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Start.Equal(monday))
	assert.Equal(t, 2, out[0].Orders)
	assert.Equal(t, "450.50", out[0].Revenue.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecTx(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE orders SET status`).
			WithArgs(tenant, "o-1", models.OrderStatusConfirmed, t0).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = NewStore(db).ExecTx(context.Background(), tenant, func(repos *repository.Repositories) error {
			return repos.Orders.UpdateStatus(context.Background(), "o-1", models.OrderStatusConfirmed, t0)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE orders SET status`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = NewStore(db).ExecTx(context.Background(), tenant, func(repos *repository.Repositories) error {
			return repos.Orders.UpdateStatus(context.Background(), "o-1", models.OrderStatusConfirmed, t0)
		})
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback failure keeps cause", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(errors.New("conn lost"))

		err = NewStore(db).ExecTx(context.Background(), tenant, func(*repository.Repositories) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "conn lost")
	})
}

func TestAdjustStockRefusesToOversell(t *testing.T) {
	db, mock, repos := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE products SET stock = stock \+ \$3`).
		WithArgs(tenant, "prod-1", -3, t0).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(tenant, "prod-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := repos.Products.AdjustStock(context.Background(), "prod-1", -3, t0)
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}
