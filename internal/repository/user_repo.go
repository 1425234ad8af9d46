package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// UserRepository handles data access for storefront customers.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert records a customer profile, refreshing contact details that the
// auth provider reports.
func (r *UserRepository) Upsert(ctx context.Context, u *models.User) error {
	const q = `
		INSERT INTO users (uid, name, email, phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (uid) DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
			email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
			phone = COALESCE(NULLIF(EXCLUDED.phone, ''), users.phone),
			updated_at = NOW()
		RETURNING name, email, phone, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q, u.UID, u.Name, u.Email, u.Phone).
		Scan(&u.Name, &u.Email, &u.Phone, &u.CreatedAt, &u.UpdatedAt)
}

// GetByUID returns a customer by uid.
func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	if err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE uid = $1`, uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List returns one page of customers and the total match count.
func (r *UserRepository) List(ctx context.Context, search string, page, limit int) ([]models.User, int, error) {
	w := &where{}
	if search != "" {
		p := w.arg(likePattern(search))
		w.add(fmt.Sprintf("(name ILIKE %s OR email ILIKE %s OR phone ILIKE %s)", p, p, p))
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM users`+w.String(), w.args...); err != nil {
		return nil, 0, err
	}
	users := []models.User{}
	q := `SELECT * FROM users` + w.String() + ` ORDER BY created_at DESC` + w.page(page, limit)
	if err := r.db.SelectContext(ctx, &users, q, w.args...); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
