package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *PromotionCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewPromotionCache(client, time.Minute)
}

func promo(tenant, code string) *models.Promotion {
	return &models.Promotion{
		ID:           "promo-1",
		TenantID:     tenant,
		Code:         &code,
		Type:         models.PromotionTypePercentage,
		Target:       models.PromotionTargetCart,
		Value:        decimal.NewFromInt(10),
		MinAmount:    decimal.NewFromInt(500),
		BusinessType: models.BusinessTypeBoth,
		IsActive:     true,
	}
}

func TestPromotionCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, c := setupTestRedis(t)

	miss, err := c.Get(ctx, "tenant-a", "WELCOME10")
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, c.Set(ctx, promo("tenant-a", "WELCOME10")))
	assert.True(t, mr.Exists("promotion:tenant-a:WELCOME10"))
	assert.Equal(t, time.Minute, mr.TTL("promotion:tenant-a:WELCOME10"))

	hit, err := c.Get(ctx, "tenant-a", "WELCOME10")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "promo-1", hit.ID)
	assert.True(t, hit.Value.Equal(decimal.NewFromInt(10)))

	other, err := c.Get(ctx, "tenant-b", "WELCOME10")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestPromotionCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	mr, c := setupTestRedis(t)

	require.NoError(t, c.Set(ctx, promo("tenant-a", "WELCOME10")))
	require.NoError(t, c.Invalidate(ctx, "tenant-a", "WELCOME10"))
	assert.False(t, mr.Exists("promotion:tenant-a:WELCOME10"))
}

func TestPromotionCacheExpires(t *testing.T) {
	ctx := context.Background()
	mr, c := setupTestRedis(t)

	require.NoError(t, c.Set(ctx, promo("tenant-a", "WELCOME10")))
	mr.FastForward(2 * time.Minute)

	got, err := c.Get(ctx, "tenant-a", "WELCOME10")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNilPromotionCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c := NewPromotionCache(nil, 0)
	assert.Nil(t, c)

	require.NoError(t, c.Set(ctx, promo("tenant-a", "X")))
	got, err := c.Get(ctx, "tenant-a", "X")
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, c.Invalidate(ctx, "tenant-a", "X"))
}
