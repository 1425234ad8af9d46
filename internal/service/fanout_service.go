package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_api/internal/events"
	"github.com/GTDGit/bakery_api/internal/metrics"
	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// claimLease keeps a claimed outbox event away from other workers while it
// is being delivered.
const claimLease = 2 * time.Minute

// retrySchedule is the delay before each retry of a failed delivery. An
// event that fails once more after the last entry is marked failed.
var retrySchedule = []time.Duration{
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
	30 * time.Minute,
	2 * time.Hour,
}

// retryDelay returns the wait before the next attempt, given how many
// attempts already failed, and false once retries are exhausted.
func retryDelay(failed int) (time.Duration, bool) {
	if failed < 0 || failed >= len(retrySchedule) {
		return 0, false
	}
	return retrySchedule[failed], true
}

type outboxStore interface {
	ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]models.OutboxEvent, error)
	ClaimByID(ctx context.Context, id string, lease time.Duration) (*models.OutboxEvent, error)
	MarkDone(ctx context.Context, id string) error
	ScheduleRetry(ctx context.Context, id string, next time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id string, lastErr string) error
}

type notificationFanout interface {
	FanOutToAllUsers(ctx context.Context, eventID string, n models.Notification) (int64, error)
}

// FanoutService delivers outbox events: it writes the per-user
// notifications and publishes the matching domain event. Delivery is
// idempotent per event, so an event may safely be delivered more than once.
type FanoutService struct {
	outbox        outboxStore
	notifications notificationFanout
	publisher     events.Publisher
	now           func() time.Time
}

func NewFanoutService(outbox outboxStore, notifications notificationFanout, publisher events.Publisher) *FanoutService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &FanoutService{
		outbox:        outbox,
		notifications: notifications,
		publisher:     publisher,
		now:           time.Now,
	}
}

// Deliver performs the side effects of ev without touching its outbox state.
func (s *FanoutService) Deliver(ctx context.Context, ev *models.OutboxEvent) error {
	switch ev.Kind {
	case models.OutboxProductsImported:
		var p models.ProductsImportedPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", ev.Kind, err)
		}
		n, err := s.notifications.FanOutToAllUsers(ctx, ev.ID, newProductsNotification(p.Count))
		if err != nil {
			return fmt.Errorf("fan out notifications: %w", err)
		}
		metrics.NotificationsFannedOut.Add(float64(n))
		log.Info().Str("event_id", ev.ID).Str("job_id", p.ImportJobID).Int64("users", n).Msg("new product notifications sent")

		return s.publisher.Publish(ctx, events.TopicProductsImported, p.ImportJobID, events.ProductsImported{
			ImportJobID: p.ImportJobID,
			Count:       p.Count,
			ProductIDs:  p.ProductIDs,
			ImportedAt:  ev.CreatedAt,
		})
	default:
		return fmt.Errorf("unknown outbox event kind %q", ev.Kind)
	}
}

func newProductsNotification(count int) models.Notification {
	msg := fmt.Sprintf("%d new products just came out of the oven. Take a look!", count)
	if count == 1 {
		msg = "A new product just came out of the oven. Take a look!"
	}
	return models.Notification{
		Type:    models.NotificationNewProducts,
		Title:   "Fresh from the oven",
		Message: msg,
		Link:    "/products?sort=newest",
	}
}

// DeliverByID claims and delivers one event right after it was written.
// An event already claimed or completed elsewhere is not an error.
func (s *FanoutService) DeliverByID(ctx context.Context, id string) error {
	ev, err := s.outbox.ClaimByID(ctx, id, claimLease)
	if errors.Is(err, utils.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.process(ctx, ev)
}

// ProcessDue delivers up to limit due events and reports how many were
// delivered successfully.
func (s *FanoutService) ProcessDue(ctx context.Context, limit int) (int, error) {
	due, err := s.outbox.ClaimDue(ctx, limit, claimLease)
	if err != nil {
		return 0, err
	}
	done := 0
	for i := range due {
		if ctx.Err() != nil {
			break
		}
		if err := s.process(ctx, &due[i]); err != nil {
			log.Error().Err(err).Str("event_id", due[i].ID).Int("attempt", due[i].Attempts+1).Msg("outbox delivery failed")
			continue
		}
		done++
	}
	return done, nil
}

func (s *FanoutService) process(ctx context.Context, ev *models.OutboxEvent) error {
	deliverErr := s.Deliver(ctx, ev)
	if deliverErr == nil {
		metrics.OutboxDeliveries.WithLabelValues(ev.Kind, "done").Inc()
		return s.outbox.MarkDone(ctx, ev.ID)
	}

	if delay, ok := retryDelay(ev.Attempts); ok {
		metrics.OutboxDeliveries.WithLabelValues(ev.Kind, "retry").Inc()
		if err := s.outbox.ScheduleRetry(ctx, ev.ID, s.now().Add(delay), deliverErr.Error()); err != nil {
			log.Error().Err(err).Str("event_id", ev.ID).Msg("failed to schedule outbox retry")
		}
		return deliverErr
	}

	metrics.OutboxDeliveries.WithLabelValues(ev.Kind, "failed").Inc()
	if err := s.outbox.MarkFailed(ctx, ev.ID, deliverErr.Error()); err != nil {
		log.Error().Err(err).Str("event_id", ev.ID).Msg("failed to mark outbox event failed")
	}
	return deliverErr
}
