package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// CustomRequestRepository handles data access for custom cake requests.
type CustomRequestRepository struct {
	db *sqlx.DB
}

// NewCustomRequestRepository creates a new CustomRequestRepository.
func NewCustomRequestRepository(db *sqlx.DB) *CustomRequestRepository {
	return &CustomRequestRepository{db: db}
}

// Create stores a new request.
func (r *CustomRequestRepository) Create(ctx context.Context, req *models.CustomRequest) error {
	const q = `
		INSERT INTO custom_requests (
			id, user_id, name, phone, email, occasion, flavor, weight_kg, design_notes,
			reference_images, delivery_date, pincode, budget, status
		) VALUES (
			:id, :user_id, :name, :phone, :email, :occasion, :flavor, :weight_kg, :design_notes,
			:reference_images, :delivery_date, :pincode, :budget, :status
		)
		RETURNING created_at, updated_at`
	stmt, err := r.db.PrepareNamedContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	return stmt.QueryRowxContext(ctx, req).Scan(&req.CreatedAt, &req.UpdatedAt)
}

// GetByID returns a request by id.
func (r *CustomRequestRepository) GetByID(ctx context.Context, id string) (*models.CustomRequest, error) {
	var req models.CustomRequest
	if err := r.db.GetContext(ctx, &req, `SELECT * FROM custom_requests WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrCustomRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// List returns one page of requests, newest first, optionally by status.
func (r *CustomRequestRepository) List(ctx context.Context, status models.CustomRequestStatus, page, limit int) ([]models.CustomRequest, int, error) {
	w := &where{}
	if status != "" {
		w.add("status = " + w.arg(status))
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM custom_requests`+w.String(), w.args...); err != nil {
		return nil, 0, err
	}
	out := []models.CustomRequest{}
	q := `SELECT * FROM custom_requests` + w.String() + ` ORDER BY created_at DESC` + w.page(page, limit)
	if err := r.db.SelectContext(ctx, &out, q, w.args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateReview stores the back-office review of a request.
func (r *CustomRequestRepository) UpdateReview(ctx context.Context, req *models.CustomRequest) error {
	const q = `
		UPDATE custom_requests SET status = $2, quoted_price = $3, admin_notes = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, q, req.ID, req.Status, req.QuotedPrice, req.AdminNotes).Scan(&req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return utils.ErrCustomRequestNotFound
	}
	return err
}
