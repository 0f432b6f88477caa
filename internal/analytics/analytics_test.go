package analytics

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

func TestBucketStart(t *testing.T) {
	// Thursday
	ts := time.Date(2026, 3, 12, 17, 45, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), BucketStart(models.PeriodDaily, ts))
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), BucketStart(models.PeriodWeekly, ts))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), BucketStart(models.PeriodMonthly, ts))

	sunday := time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), BucketStart(models.PeriodWeekly, sunday))
}

func TestBucketStartConvertsToUTC(t *testing.T) {
	addis := time.FixedZone("EAT", 3*60*60)
	ts := time.Date(2026, 3, 13, 1, 0, 0, 0, addis)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), BucketStart(models.PeriodDaily, ts))
}

func TestCurrentAndPrevious(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	cur, prev := CurrentAndPrevious(models.PeriodMonthly, now)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), cur.Start)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), cur.End)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), prev.Start)
	assert.Equal(t, cur.Start, prev.End)
	assert.True(t, cur.Contains(now))
	assert.False(t, prev.Contains(now))
}

func TestFillGaps(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	got := FillGaps(models.PeriodDaily, from, to, []models.SalesBucket{
		{Start: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Orders: 2, Revenue: decimal.NewFromInt(50)},
	})

	require.Len(t, got, 3)
	assert.Equal(t, 0, got[0].Orders)
	assert.Equal(t, 2, got[1].Orders)
	assert.True(t, got[2].Revenue.IsZero())
}

func TestGrowth(t *testing.T) {
	assert.Equal(t, "50", Growth(decimal.NewFromInt(150), decimal.NewFromInt(100)).String())
	assert.Equal(t, "-25", Growth(decimal.NewFromInt(75), decimal.NewFromInt(100)).String())
	assert.True(t, Growth(decimal.NewFromInt(10), decimal.Zero).IsZero())
	assert.Equal(t, "33.33", Growth(decimal.NewFromInt(4), decimal.NewFromInt(3)).String())
}

func TestAverageOrderValue(t *testing.T) {
	assert.True(t, AverageOrderValue(decimal.NewFromInt(100), 0).IsZero())
	assert.Equal(t, "33.33", AverageOrderValue(decimal.NewFromInt(100), 3).String())
}

func TestSalesWorkbook(t *testing.T) {
	buckets := []models.SalesBucket{
		{Start: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Orders: 3, Revenue: decimal.RequireFromString("1200.50")},
	}
	data, err := SalesWorkbook(models.PeriodMonthly, buckets)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(salesSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Period Start", header)

	start, err := f.GetCellValue(salesSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "2026-03", start)

	orders, err := f.GetCellValue(salesSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "3", orders)
}
