package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// NotificationRepository handles data access for in-app notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// FanOutToAllUsers copies n to every registered user in one statement. Rows
// are keyed by (eventID, user), so replaying the same event only fills in
// users that were missed and never duplicates.
func (r *NotificationRepository) FanOutToAllUsers(ctx context.Context, eventID string, n models.Notification) (int64, error) {
	const q = `
		INSERT INTO notifications (id, user_id, type, title, message, link, source_event_id)
		SELECT gen_random_uuid()::text, uid, $2, $3, $4, $5, $1
		FROM users
		ON CONFLICT (source_event_id, user_id) WHERE source_event_id IS NOT NULL DO NOTHING`
	res, err := r.db.ExecContext(ctx, q, eventID, n.Type, n.Title, n.Message, n.Link)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Create stores a notification for a single user.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	const q = `
		INSERT INTO notifications (id, user_id, type, title, message, link, source_event_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`
	return r.db.QueryRowxContext(ctx, q, n.ID, n.UserID, n.Type, n.Title, n.Message, n.Link, n.SourceEventID).
		Scan(&n.CreatedAt)
}

// ListByUser returns a user's most recent notifications.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	w := &where{}
	w.add("user_id = " + w.arg(userID))
	if unreadOnly {
		w.add("is_read = false")
	}
	if limit <= 0 {
		limit = 50
	}
	out := []models.Notification{}
	q := `SELECT * FROM notifications` + w.String() + ` ORDER BY created_at DESC LIMIT ` + w.arg(limit)
	err := r.db.SelectContext(ctx, &out, q, w.args...)
	return out, err
}

// UnreadCount returns how many notifications a user has not read.
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM notifications WHERE user_id = $1 AND is_read = false`, userID)
	return n, err
}

// MarkRead marks one of the user's notifications as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return expectAffected(res, utils.ErrNotificationNotFound)
}

// MarkAllRead marks every notification of the user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
