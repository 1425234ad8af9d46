package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type viewBuffer interface {
	Drain(ctx context.Context) (map[string]int64, error)
	Ack(ctx context.Context) error
}

type viewStore interface {
	AddViews(ctx context.Context, views map[string]int64) error
}

// ViewFlushWorker moves product view counts buffered in Redis into Postgres.
type ViewFlushWorker struct {
	buffer   viewBuffer
	store    viewStore
	interval time.Duration
}

// NewViewFlushWorker constructs a ViewFlushWorker.
func NewViewFlushWorker(buffer viewBuffer, store viewStore, interval time.Duration) *ViewFlushWorker {
	return &ViewFlushWorker{
		buffer:   buffer,
		store:    store,
		interval: interval,
	}
}

// Start begins the flush loop. A final flush runs on shutdown so buffered
// views are not left behind.
func (w *ViewFlushWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting view flush worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			w.run(flushCtx)
			cancel()
			log.Info().Msg("View flush worker stopped")
			return
		}
	}
}

func (w *ViewFlushWorker) run(ctx context.Context) {
	views, err := w.buffer.Drain(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to drain product views")
		return
	}
	if len(views) == 0 {
		return
	}
	if err := w.store.AddViews(ctx, views); err != nil {
		// The batch stays parked in Redis and is retried next tick.
		log.Error().Err(err).Int("products", len(views)).Msg("Failed to flush product views")
		return
	}
	if err := w.buffer.Ack(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to ack flushed product views")
		return
	}
	log.Debug().Int("products", len(views)).Msg("Product views flushed")
}
