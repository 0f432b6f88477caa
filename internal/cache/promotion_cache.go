// Package cache is a Redis read-through cache for promotion definitions,
// keyed by tenant and code. The checkout path never reads from it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

const DefaultTTL = 5 * time.Minute

type PromotionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPromotionCache returns nil when client is nil; a nil cache always
// misses.
func NewPromotionCache(client *redis.Client, ttl time.Duration) *PromotionCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PromotionCache{client: client, ttl: ttl}
}

func promotionKey(tenantID, code string) string {
	return fmt.Sprintf("promotion:%s:%s", tenantID, code)
}

// Get returns (nil, nil) on a miss.
func (c *PromotionCache) Get(ctx context.Context, tenantID, code string) (*models.Promotion, error) {
	if c == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, promotionKey(tenantID, code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var p models.Promotion
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	if p.TenantID != tenantID {
		return nil, nil
	}
	return &p, nil
}

func (c *PromotionCache) Set(ctx context.Context, p *models.Promotion) error {
	if c == nil || p == nil || p.Code == nil {
		return nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, promotionKey(p.TenantID, *p.Code), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *PromotionCache) Invalidate(ctx context.Context, tenantID string, codes ...string) error {
	if c == nil || len(codes) == 0 {
		return nil
	}
	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		keys = append(keys, promotionKey(tenantID, code))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
