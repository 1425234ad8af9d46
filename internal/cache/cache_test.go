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

	"github.com/GTDGit/bakery_api/internal/models"
)

func newTestRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisClientFrom(client), mr
}

func TestSettingsCache(t *testing.T) {
	rc, mr := newTestRedis(t)
	c := NewSettingsCache(rc, time.Minute)
	ctx := context.Background()

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := &models.StoreSettings{
		StoreName:         "Sweet Crumbs",
		Currency:          models.CurrencyINR,
		TaxRate:           decimal.NewFromInt(5),
		FreeDeliveryAbove: decimal.NewFromInt(999),
		DefaultPincodes:   []string{"560001"},
	}
	require.NoError(t, c.Set(ctx, want))
	assert.Equal(t, time.Minute, mr.TTL(settingsKey))

	got, err = c.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Sweet Crumbs", got.StoreName)
	assert.True(t, want.FreeDeliveryAbove.Equal(got.FreeDeliveryAbove))

	require.NoError(t, c.Invalidate(ctx))
	got, err = c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSettingsCache_CorruptPayloadIsMiss(t *testing.T) {
	rc, mr := newTestRedis(t)
	require.NoError(t, mr.Set(settingsKey, "{not json"))

	got, err := NewSettingsCache(rc, time.Minute).Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestViewCounter_DrainAndAck(t *testing.T) {
	rc, _ := newTestRedis(t)
	v := NewViewCounter(rc)
	ctx := context.Background()

	empty, err := v.Drain(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, v.Record(ctx, "p1"))
	require.NoError(t, v.Record(ctx, "p1"))
	require.NoError(t, v.Record(ctx, "p2"))

	batch, err := v.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"p1": 2, "p2": 1}, batch)

	// views recorded mid-flush wait for the next batch
	require.NoError(t, v.Record(ctx, "p3"))

	// without Ack the same batch comes back
	again, err := v.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, batch, again)

	require.NoError(t, v.Ack(ctx))
	next, err := v.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"p3": 1}, next)
}

func TestViewCounter_AckFailureRedeliversBatch(t *testing.T) {
	rc, mr := newTestRedis(t)
	v := NewViewCounter(rc)
	ctx := context.Background()

	require.NoError(t, v.Record(ctx, "p1"))
	batch, err := v.Drain(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"p1": 1}, batch)
	assert.False(t, mr.Exists(viewsPendingKey))

	// the counts were stored but Ack never ran
	require.NoError(t, v.Record(ctx, "p2"))
	again, err := v.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, batch, again)
	assert.True(t, mr.Exists(viewsPendingKey))

	require.NoError(t, v.Ack(ctx))
	next, err := v.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"p2": 1}, next)
}

func TestViewCounter_SkipsCorruptCounts(t *testing.T) {
	rc, mr := newTestRedis(t)
	mr.HSet(viewsPendingKey, "p1", "3", "p2", "x", "p3", "-1")

	batch, err := NewViewCounter(rc).Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"p1": 3}, batch)
}

func TestRedisClient_RenameAndHGetAll(t *testing.T) {
	rc, _ := newTestRedis(t)
	ctx := context.Background()

	fields, err := rc.HGetAll(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, fields)

	assert.Error(t, rc.Rename(ctx, "missing", "elsewhere"))

	require.NoError(t, rc.HIncrBy(ctx, "src", "a", 2))
	require.NoError(t, rc.Rename(ctx, "src", "dst"))
	ok, err := rc.Exists(ctx, "src")
	require.NoError(t, err)
	assert.False(t, ok)

	fields, err = rc.HGetAll(ctx, "dst")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "2"}, fields)
}
