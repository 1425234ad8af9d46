package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type outboxProcessor interface {
	ProcessDue(ctx context.Context, limit int) (int, error)
}

// FanoutWorker delivers outbox events whose inline attempt failed or never
// ran, on a fixed interval.
type FanoutWorker struct {
	fanout    outboxProcessor
	interval  time.Duration
	batchSize int
}

// NewFanoutWorker constructs a FanoutWorker.
func NewFanoutWorker(fanout outboxProcessor, interval time.Duration, batchSize int) *FanoutWorker {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &FanoutWorker{
		fanout:    fanout,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Start runs the delivery loop until ctx is cancelled. Rows left pending by a
// previous process are picked up on the first tick after start.
func (w *FanoutWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Int("batch_size", w.batchSize).Msg("Starting fan-out worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Fan-out worker stopped")
			return
		}
	}
}

func (w *FanoutWorker) run(ctx context.Context) {
	// Drain in batches so a backlog does not wait a full interval per batch.
	for ctx.Err() == nil {
		done, err := w.fanout.ProcessDue(ctx, w.batchSize)
		if err != nil {
			log.Error().Err(err).Msg("Failed to claim outbox events")
			return
		}
		if done > 0 {
			log.Info().Int("delivered", done).Msg("Outbox events delivered")
		}
		if done < w.batchSize {
			return
		}
	}
}
