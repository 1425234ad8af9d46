package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/GTDGit/bakery_api/internal/models"
)

const settingsKey = "store:settings"

// SettingsCache keeps the store settings document in Redis so pricing does
// not read Postgres on every quote.
type SettingsCache struct {
	redis *RedisClient
	ttl   time.Duration
}

func NewSettingsCache(redis *RedisClient, ttl time.Duration) *SettingsCache {
	return &SettingsCache{redis: redis, ttl: ttl}
}

// Get returns the cached settings, or nil on a miss.
func (c *SettingsCache) Get(ctx context.Context) (*models.StoreSettings, error) {
	raw, err := c.redis.Get(ctx, settingsKey)
	if IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s models.StoreSettings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		// a payload from an older shape is treated as a miss
		return nil, nil
	}
	return &s, nil
}

// Set stores s for the configured TTL.
func (c *SettingsCache) Set(ctx context.Context, s *models.StoreSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, settingsKey, string(data), c.ttl)
}

// Invalidate drops the cached settings after an admin update.
func (c *SettingsCache) Invalidate(ctx context.Context) error {
	return c.redis.Delete(ctx, settingsKey)
}
