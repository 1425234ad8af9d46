package cache

import (
	"context"
	"strconv"
)

const (
	viewsPendingKey  = "product:views"
	viewsFlushingKey = "product:views:flushing"
)

// ViewCounter buffers product page views in a Redis hash until the flush
// worker writes them to Postgres.
type ViewCounter struct {
	redis *RedisClient
}

func NewViewCounter(redis *RedisClient) *ViewCounter {
	return &ViewCounter{redis: redis}
}

// Record counts one view of productID.
func (v *ViewCounter) Record(ctx context.Context, productID string) error {
	return v.redis.HIncrBy(ctx, viewsPendingKey, productID, 1)
}

// Drain moves the pending counts aside and returns them. Until Ack is called
// the same batch is returned again, so a failed flush is retried rather than
// lost; views recorded meanwhile go to the next batch.
//
// Delivery is at least once. If the counts are written but Ack fails, the
// next Drain returns the batch again and those views are added twice. A view
// total is a popularity signal, so that overcount is accepted over losing
// the batch.
func (v *ViewCounter) Drain(ctx context.Context) (map[string]int64, error) {
	leftover, err := v.redis.Exists(ctx, viewsFlushingKey)
	if err != nil {
		return nil, err
	}
	if !leftover {
		pending, err := v.redis.Exists(ctx, viewsPendingKey)
		if err != nil {
			return nil, err
		}
		if !pending {
			return map[string]int64{}, nil
		}
		// Only the flush worker renames, so pending cannot vanish in between.
		if err := v.redis.Rename(ctx, viewsPendingKey, viewsFlushingKey); err != nil {
			return nil, err
		}
	}

	raw, err := v.redis.HGetAll(ctx, viewsFlushingKey)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for id, s := range raw {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		out[id] = n
	}
	return out, nil
}

// Ack discards the batch returned by the last Drain. Call it only after the
// batch is stored.
func (v *ViewCounter) Ack(ctx context.Context) error {
	return v.redis.Delete(ctx, viewsFlushingKey)
}
