package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// PromoRepository handles data access for promo codes. Codes are stored
// upper-cased and matched case-insensitively.
type PromoRepository struct {
	db *sqlx.DB
}

// NewPromoRepository creates a new PromoRepository.
func NewPromoRepository(db *sqlx.DB) *PromoRepository {
	return &PromoRepository{db: db}
}

// Create stores a new promo code.
func (r *PromoRepository) Create(ctx context.Context, p *models.PromoCode) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	const q = `
		INSERT INTO promo_codes (code, type, value, min_order, max_discount, usage_limit, valid_from, valid_to, is_active)
		VALUES (:code, :type, :value, :min_order, :max_discount, :usage_limit, :valid_from, :valid_to, :is_active)
		RETURNING created_at`
	stmt, err := r.db.PrepareNamedContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	if err := stmt.QueryRowxContext(ctx, p).Scan(&p.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return utils.ErrPromoExists
		}
		return err
	}
	return nil
}

// GetByCode returns a promo code.
func (r *PromoRepository) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var p models.PromoCode
	err := r.db.GetContext(ctx, &p, `SELECT * FROM promo_codes WHERE code = $1`, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrPromoNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns every promo code, newest first.
func (r *PromoRepository) List(ctx context.Context) ([]models.PromoCode, error) {
	out := []models.PromoCode{}
	err := r.db.SelectContext(ctx, &out, `SELECT * FROM promo_codes ORDER BY created_at DESC`)
	return out, err
}

// SetActive enables or disables a promo code.
func (r *PromoRepository) SetActive(ctx context.Context, code string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE promo_codes SET is_active = $2 WHERE code = $1`, strings.ToUpper(code), active)
	if err != nil {
		return err
	}
	return expectAffected(res, utils.ErrPromoNotFound)
}
