package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/bakery_api/internal/models"
)

// NewsletterRepository stores newsletter subscriptions.
type NewsletterRepository struct {
	db *sqlx.DB
}

// NewNewsletterRepository creates a new NewsletterRepository.
func NewNewsletterRepository(db *sqlx.DB) *NewsletterRepository {
	return &NewsletterRepository{db: db}
}

// Subscribe adds email and reports whether it was new.
func (r *NewsletterRepository) Subscribe(ctx context.Context, email string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO newsletter_subscribers (email) VALUES ($1) ON CONFLICT (email) DO NOTHING`,
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// List returns one page of subscribers, newest first, and the total count.
func (r *NewsletterRepository) List(ctx context.Context, page, limit int) ([]models.NewsletterSubscriber, int, error) {
	w := &where{}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM newsletter_subscribers`); err != nil {
		return nil, 0, err
	}
	out := []models.NewsletterSubscriber{}
	if err := r.db.SelectContext(ctx, &out, `SELECT * FROM newsletter_subscribers ORDER BY created_at DESC`+w.page(page, limit), w.args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
