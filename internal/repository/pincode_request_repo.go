package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/bakery_api/internal/models"
)

// PincodeRequestRepository stores requests for delivery to unserved areas.
type PincodeRequestRepository struct {
	db *sqlx.DB
}

// NewPincodeRequestRepository creates a new PincodeRequestRepository.
func NewPincodeRequestRepository(db *sqlx.DB) *PincodeRequestRepository {
	return &PincodeRequestRepository{db: db}
}

func (r *PincodeRequestRepository) Create(ctx context.Context, p *models.PincodeRequest) error {
	const q = `
		INSERT INTO pincode_requests (id, pincode, contact, product_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	return r.db.QueryRowxContext(ctx, q, p.ID, p.Pincode, p.Contact, p.ProductID).Scan(&p.CreatedAt)
}

// PincodeDemand is how often an unserved pincode has been asked for.
type PincodeDemand struct {
	Pincode  string `db:"pincode" json:"pincode"`
	Requests int    `db:"requests" json:"requests"`
}

// List returns one page of requests, newest first, and the total count.
func (r *PincodeRequestRepository) List(ctx context.Context, page, limit int) ([]models.PincodeRequest, int, error) {
	w := &where{}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM pincode_requests`); err != nil {
		return nil, 0, err
	}
	out := []models.PincodeRequest{}
	if err := r.db.SelectContext(ctx, &out, `SELECT * FROM pincode_requests ORDER BY created_at DESC`+w.page(page, limit), w.args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Demand ranks requested pincodes by request count.
func (r *PincodeRequestRepository) Demand(ctx context.Context, limit int) ([]PincodeDemand, error) {
	const q = `
		SELECT pincode, COUNT(1) AS requests FROM pincode_requests
		GROUP BY pincode ORDER BY requests DESC, pincode LIMIT $1`
	out := []PincodeDemand{}
	err := r.db.SelectContext(ctx, &out, q, limit)
	return out, err
}
