package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/bakery_api/internal/database"
	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/utils"
)

// insertChunk bounds rows per INSERT so a large import stays under the
// Postgres bind parameter limit.
const insertChunk = 500

const insertProductSQL = `
	INSERT INTO products (
		id, name, description, category, base_price, currency, discount, stock, featured,
		tags, delivery_pincodes, seo_keywords, min_order, max_order, available_from, available_to,
		images, details, is_active, import_job_id
	) VALUES (
		:id, :name, :description, :category, :base_price, :currency, :discount, :stock, :featured,
		:tags, :delivery_pincodes, :seo_keywords, :min_order, :max_order, :available_from, :available_to,
		:images, :details, :is_active, :import_job_id
	)`

// ProductFilter narrows product listings. Zero values disable a filter.
type ProductFilter struct {
	Category        string
	Search          string
	Featured        *bool
	MinPrice        decimal.NullDecimal
	MaxPrice        decimal.NullDecimal
	Pincode         string
	PincodeDefault  bool // Pincode is one of the store-wide defaults
	IncludeInactive bool
	Sort            string
	Page            int
	Limit           int
}

var productSorts = map[string]string{
	"":           "featured DESC, created_at DESC",
	"newest":     "created_at DESC",
	"price_asc":  "base_price * (100 - discount) ASC, name",
	"price_desc": "base_price * (100 - discount) DESC, name",
	"popular":    "views DESC, name",
	"name":       "name ASC",
}

// ProductRepository handles data access for products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID returns a single product by id.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.db.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByIDs returns the products with the given ids keyed by id. Missing ids
// are simply absent from the map.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	out := make(map[string]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []models.Product
	if err := r.db.SelectContext(ctx, &list, `SELECT * FROM products WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, err
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

// List returns one page of products matching f and the total match count.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, int, error) {
	w := &where{}
	if !f.IncludeInactive {
		w.add("is_active = true")
	}
	if f.Category != "" {
		w.add("category = " + w.arg(f.Category))
	}
	if f.Search != "" {
		p := w.arg(likePattern(f.Search))
		w.add(fmt.Sprintf("(name ILIKE %s OR description ILIKE %s OR %s ILIKE ANY(tags))", p, p, p))
	}
	if f.Featured != nil {
		w.add("featured = " + w.arg(*f.Featured))
	}
	if f.MinPrice.Valid {
		w.add("base_price * (100 - discount) / 100 >= " + w.arg(f.MinPrice.Decimal))
	}
	if f.MaxPrice.Valid {
		w.add("base_price * (100 - discount) / 100 <= " + w.arg(f.MaxPrice.Decimal))
	}
	if f.Pincode != "" {
		p := w.arg(f.Pincode)
		if f.PincodeDefault {
			w.add(fmt.Sprintf("(cardinality(delivery_pincodes) = 0 OR %s = ANY(delivery_pincodes))", p))
		} else {
			w.add(p + " = ANY(delivery_pincodes)")
		}
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM products`+w.String(), w.args...); err != nil {
		return nil, 0, err
	}

	order, ok := productSorts[f.Sort]
	if !ok {
		order = productSorts[""]
	}
	q := `SELECT * FROM products` + w.String() + ` ORDER BY ` + order + w.page(f.Page, f.Limit)

	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, q, w.args...); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Categories returns the distinct categories of active products.
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	out := []string{}
	err := r.db.SelectContext(ctx, &out, `SELECT DISTINCT category FROM products WHERE is_active = true ORDER BY category`)
	return out, err
}

// Create inserts a single product.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return insertProducts(ctx, r.db, []models.Product{*p})
}

// Update overwrites the editable fields of p.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	const q = `
		UPDATE products SET
			name = :name, description = :description, category = :category,
			base_price = :base_price, currency = :currency, discount = :discount, stock = :stock,
			featured = :featured, tags = :tags, delivery_pincodes = :delivery_pincodes,
			seo_keywords = :seo_keywords, min_order = :min_order, max_order = :max_order,
			available_from = :available_from, available_to = :available_to,
			images = :images, details = :details, is_active = :is_active, updated_at = NOW()
		WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, q, p)
	if err != nil {
		return err
	}
	return expectAffected(res, utils.ErrProductNotFound)
}

// Delete removes a product. Orders keep their item snapshots.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, utils.ErrProductNotFound)
}

// DeleteMany removes every listed product and reports how many existed.
func (r *ProductRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetFeatured flips the featured flag.
func (r *ProductRepository) SetFeatured(ctx context.Context, id string, featured bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET featured = $2, updated_at = NOW() WHERE id = $1`, id, featured)
	if err != nil {
		return err
	}
	return expectAffected(res, utils.ErrProductNotFound)
}

// AddViews adds buffered view counts in one statement. Each product is
// incremented in place, so concurrent flushes never lose counts.
func (r *ProductRepository) AddViews(ctx context.Context, views map[string]int64) error {
	if len(views) == 0 {
		return nil
	}
	ids := make([]string, 0, len(views))
	counts := make([]int64, 0, len(views))
	for id, n := range views {
		ids = append(ids, id)
		counts = append(counts, n)
	}
	const q = `
		UPDATE products p SET views = p.views + v.n
		FROM unnest($1::text[], $2::bigint[]) AS v(id, n)
		WHERE p.id = v.id`
	_, err := r.db.ExecContext(ctx, q, pq.Array(ids), pq.Array(counts))
	return err
}

// CreateBatch writes an import in one transaction: every product, the
// import job record and the fan-out outbox event. Nothing is written if
// any insert fails.
func (r *ProductRepository) CreateBatch(ctx context.Context, products []models.Product, job *models.ImportJob, event *models.OutboxEvent) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := insertProducts(ctx, tx, products); err != nil {
			return fmt.Errorf("insert products: %w", err)
		}
		if err := insertImportJob(ctx, tx, job); err != nil {
			return fmt.Errorf("insert import job: %w", err)
		}
		if event != nil {
			if err := insertOutbox(ctx, tx, event); err != nil {
				return fmt.Errorf("insert outbox event: %w", err)
			}
		}
		return nil
	})
}

// decrementStock reserves qty units of a product inside an order
// transaction. Products without stock tracking always succeed.
func decrementStock(ctx context.Context, tx *sqlx.Tx, productID string, qty int) error {
	const q = `
		UPDATE products
		SET stock = CASE WHEN stock IS NULL THEN NULL ELSE stock - $2 END, updated_at = NOW()
		WHERE id = $1 AND (stock IS NULL OR stock >= $2)`
	res, err := tx.ExecContext(ctx, q, productID, qty)
	if err != nil {
		return err
	}
	return expectAffected(res, fmt.Errorf("%w: %s", utils.ErrOutOfStock, productID))
}

func insertProducts(ctx context.Context, ext sqlx.ExtContext, products []models.Product) error {
	for start := 0; start < len(products); start += insertChunk {
		end := min(start+insertChunk, len(products))
		if _, err := sqlx.NamedExecContext(ctx, ext, insertProductSQL, products[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func insertImportJob(ctx context.Context, ext sqlx.ExtContext, job *models.ImportJob) error {
	const q = `
		INSERT INTO import_jobs (id, file_name, format, total_rows, imported, rejected, errors, created_by)
		VALUES (:id, :file_name, :format, :total_rows, :imported, :rejected, :errors, :created_by)`
	_, err := sqlx.NamedExecContext(ctx, ext, q, job)
	return err
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
