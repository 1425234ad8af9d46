package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// OutboxRepository handles data access for outbox events.
type OutboxRepository struct {
	db *sqlx.DB
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(db *sqlx.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func insertOutbox(ctx context.Context, ext sqlx.ExtContext, ev *models.OutboxEvent) error {
	const q = `
		INSERT INTO outbox_events (id, kind, payload, status, attempts, next_attempt_at)
		VALUES (:id, :kind, :payload, :status, :attempts, :next_attempt_at)`
	_, err := sqlx.NamedExecContext(ctx, ext, q, ev)
	return err
}

// ClaimDue leases up to limit pending events whose retry time has come.
// Claimed events are pushed lease into the future so another worker does not
// pick them up while this one is delivering.
func (r *OutboxRepository) ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]models.OutboxEvent, error) {
	const q = `
		UPDATE outbox_events SET next_attempt_at = NOW() + $2::bigint * INTERVAL '1 millisecond'
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE status = 'pending' AND next_attempt_at <= NOW()
			ORDER BY next_attempt_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`
	events := []models.OutboxEvent{}
	err := r.db.SelectContext(ctx, &events, q, limit, lease.Milliseconds())
	return events, err
}

// ClaimByID leases a single pending event, returning ErrNotFound when it is
// already done or held by a worker.
func (r *OutboxRepository) ClaimByID(ctx context.Context, id string, lease time.Duration) (*models.OutboxEvent, error) {
	const q = `
		UPDATE outbox_events SET next_attempt_at = NOW() + $2::bigint * INTERVAL '1 millisecond'
		WHERE id = $1 AND status = 'pending' AND next_attempt_at <= NOW()
		RETURNING *`
	var ev models.OutboxEvent
	if err := r.db.GetContext(ctx, &ev, q, id, lease.Milliseconds()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	return &ev, nil
}

// MarkDone records a successful delivery.
func (r *OutboxRepository) MarkDone(ctx context.Context, id string) error {
	const q = `
		UPDATE outbox_events SET status = 'done', attempts = attempts + 1, last_error = NULL, processed_at = NOW()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// ScheduleRetry records a failed attempt and the time of the next one.
func (r *OutboxRepository) ScheduleRetry(ctx context.Context, id string, next time.Time, lastErr string) error {
	const q = `
		UPDATE outbox_events SET attempts = attempts + 1, next_attempt_at = $2, last_error = $3
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, next, lastErr)
	return err
}

// MarkFailed gives up on an event after its final attempt.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id string, lastErr string) error {
	const q = `
		UPDATE outbox_events SET status = 'failed', attempts = attempts + 1, last_error = $2, processed_at = NOW()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, lastErr)
	return err
}
