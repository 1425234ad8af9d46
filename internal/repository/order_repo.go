package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/bakery_api/internal/database"
	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/pricing"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// OrderFilter narrows the back-office order list.
type OrderFilter struct {
	Status models.OrderStatus
	Search string
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

// OrderRepository handles data access for orders and their items.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create stores an order with its items. Stock for every item and the promo
// usage counter are reserved in the same transaction, so a sold-out product
// or an exhausted code leaves nothing behind.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, it := range o.Items {
			if err := decrementStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		if o.PromoCode != nil {
			const q = `
				UPDATE promo_codes SET used_count = used_count + 1
				WHERE code = $1 AND is_active = true AND (usage_limit = 0 OR used_count < usage_limit)`
			res, err := tx.ExecContext(ctx, q, *o.PromoCode)
			if err != nil {
				return err
			}
			if err := expectAffected(res, pricing.ErrPromoExhausted); err != nil {
				return err
			}
		}

		const insertOrder = `
			INSERT INTO orders (
				id, order_ref, user_id, customer_name, customer_phone, customer_email, address, city, pincode,
				delivery_method, delivery_date, delivery_slot, payment_method, promo_code, currency,
				subtotal, discount, tax, delivery_fee, packaging_fee, total, status, tracking_steps, notes
			) VALUES (
				:id, :order_ref, :user_id, :customer_name, :customer_phone, :customer_email, :address, :city, :pincode,
				:delivery_method, :delivery_date, :delivery_slot, :payment_method, :promo_code, :currency,
				:subtotal, :discount, :tax, :delivery_fee, :packaging_fee, :total, :status, :tracking_steps, :notes
			)
			RETURNING created_at, updated_at`
		stmt, err := tx.PrepareNamedContext(ctx, insertOrder)
		if err != nil {
			return err
		}
		defer stmt.Close()
		if err := stmt.QueryRowxContext(ctx, o).Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range o.Items {
			o.Items[i].OrderID = o.ID
		}
		const insertItems = `
			INSERT INTO order_items (
				order_id, product_id, name, image, unit_price, base_price, discount, quantity, weight_kg, message, line_total
			) VALUES (
				:order_id, :product_id, :name, :image, :unit_price, :base_price, :discount, :quantity, :weight_kg, :message, :line_total
			)`
		if _, err := tx.NamedExecContext(ctx, insertItems, o.Items); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
}

// GetByID returns an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return r.getOne(ctx, `SELECT * FROM orders WHERE id = $1`, id)
}

// GetByRef returns an order by its customer-facing reference.
func (r *OrderRepository) GetByRef(ctx context.Context, ref string) (*models.Order, error) {
	return r.getOne(ctx, `SELECT * FROM orders WHERE order_ref = $1`, strings.ToUpper(ref))
}

func (r *OrderRepository) getOne(ctx context.Context, q string, arg interface{}) (*models.Order, error) {
	var o models.Order
	if err := r.db.GetContext(ctx, &o, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrOrderNotFound
		}
		return nil, err
	}
	orders := []models.Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// List returns one page of orders, newest first, and the total match count.
func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, int, error) {
	w := &where{}
	if f.Status != "" {
		w.add("status = " + w.arg(f.Status))
	}
	if f.Search != "" {
		p := w.arg(likePattern(f.Search))
		w.add(fmt.Sprintf("(order_ref ILIKE %s OR customer_name ILIKE %s OR customer_phone ILIKE %s)", p, p, p))
	}
	if f.From != nil {
		w.add("created_at >= " + w.arg(*f.From))
	}
	if f.To != nil {
		w.add("created_at < " + w.arg(*f.To))
	}
	return r.list(ctx, w, f.Page, f.Limit)
}

// ListByUser returns one page of a customer's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Order, int, error) {
	w := &where{}
	w.add("user_id = " + w.arg(userID))
	return r.list(ctx, w, page, limit)
}

func (r *OrderRepository) list(ctx context.Context, w *where, page, limit int) ([]models.Order, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM orders`+w.String(), w.args...); err != nil {
		return nil, 0, err
	}
	orders := []models.Order{}
	q := `SELECT * FROM orders` + w.String() + ` ORDER BY created_at DESC` + w.page(page, limit)
	if err := r.db.SelectContext(ctx, &orders, q, w.args...); err != nil {
		return nil, 0, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderRepository) attachItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		orders[i].Items = []models.OrderItem{}
	}
	var items []models.OrderItem
	if err := r.db.SelectContext(ctx, &items, `SELECT * FROM order_items WHERE order_id = ANY($1) ORDER BY id`, pq.Array(ids)); err != nil {
		return err
	}
	byOrder := make(map[string]int, len(orders))
	for i := range orders {
		byOrder[orders[i].ID] = i
	}
	for _, it := range items {
		if i, ok := byOrder[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return nil
}

// UpdateStatus moves an order from one status to another. The write only
// applies while the order is still in from, so two concurrent admins cannot
// both win.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, steps models.TrackingSteps) error {
	const q = `
		UPDATE orders SET status = $3, tracking_steps = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, q, id, from, to, steps)
	if err != nil {
		return err
	}
	return expectAffected(res, utils.ErrInvalidStatusTransition)
}

// UpdateTracking overwrites the tracking steps of an order.
func (r *OrderRepository) UpdateTracking(ctx context.Context, id string, steps models.TrackingSteps) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET tracking_steps = $2, updated_at = NOW() WHERE id = $1`, id, steps)
	if err != nil {
		return err
	}
	return expectAffected(res, utils.ErrOrderNotFound)
}

// CountByStatus returns the number of orders per status for the dashboard.
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error) {
	var rows []struct {
		Status models.OrderStatus `db:"status"`
		Count  int                `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(1) AS count FROM orders GROUP BY status`); err != nil {
		return nil, err
	}
	out := make(map[models.OrderStatus]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
