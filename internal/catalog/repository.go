package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("not found")

// SearchMinLength is the minimum query length for product search; shorter
// queries return an empty result without touching the database.
const SearchMinLength = 3

// SearchDefaultLimit caps search results when the caller does not ask for
// a specific limit.
const SearchDefaultLimit = 5

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id string) (Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (Category, error)
	UpdateCategory(ctx context.Context, id string, p CategoryPatch) (Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListProducts(ctx context.Context, categoryID string) ([]Product, error)
	FeaturedProducts(ctx context.Context) ([]Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (Product, error)
	UpdateProduct(ctx context.Context, id string, p ProductPatch) (Product, error)
	DeleteProduct(ctx context.Context, id string) error

	AdjustStock(ctx context.Context, productID string, change int, reason, notes string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const categoryCols = `id, name, coalesce(description,''), coalesce(image_url,''), sort_order, is_active, created_at, updated_at`

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryCols+` FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetCategory(ctx context.Context, id string) (Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryCols+` FROM categories WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (id, name, description, image_url, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+categoryCols,
		uuid.NewString(), in.Name, in.Description, in.ImageURL, in.SortOrder, active)
	return scanCategory(row)
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, id string, p CategoryPatch) (Category, error) {
	set, args := buildSet(map[string]any{
		"name":        deref(p.Name),
		"description": deref(p.Description),
		"image_url":   deref(p.ImageURL),
		"sort_order":  deref(p.SortOrder),
		"is_active":   deref(p.IsActive),
	})
	if len(args) == 0 {
		return r.GetCategory(ctx, id)
	}
	args = append(args, id)
	row := r.pool.QueryRow(ctx, fmt.Sprintf(
		`UPDATE categories SET %s, updated_at=now() WHERE id=$%d RETURNING %s`, set, len(args), categoryCols), args...)
	c, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const productCols = `id, category_id, name, coalesce(description,''), price_in_cents, coalesce(image_url,''), stock, is_active, is_featured, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.PriceInCents, &p.ImageURL,
		&p.Stock, &p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresRepository) queryProducts(ctx context.Context, sql string, args ...any) ([]Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListProducts(ctx context.Context, categoryID string) ([]Product, error) {
	if categoryID != "" {
		return r.queryProducts(ctx, `SELECT `+productCols+` FROM products WHERE category_id=$1 ORDER BY name`, categoryID)
	}
	return r.queryProducts(ctx, `SELECT `+productCols+` FROM products ORDER BY name`)
}

func (r *PostgresRepository) FeaturedProducts(ctx context.Context) ([]Product, error) {
	return r.queryProducts(ctx, `SELECT `+productCols+` FROM products WHERE is_featured ORDER BY name`)
}

func (r *PostgresRepository) SearchProducts(ctx context.Context, query string, limit int) ([]Product, error) {
	if len([]rune(query)) < SearchMinLength {
		return nil, nil
	}
	if limit <= 0 {
		limit = SearchDefaultLimit
	}
	return r.queryProducts(ctx, `
		SELECT `+productCols+` FROM products
		WHERE name ILIKE '%' || $1 || '%' AND is_active
		ORDER BY name
		LIMIT $2`, query, limit)
}

func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	active, featured := true, false
	if in.IsActive != nil {
		active = *in.IsActive
	}
	if in.IsFeatured != nil {
		featured = *in.IsFeatured
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (id, category_id, name, description, price_in_cents, image_url, stock, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+productCols,
		uuid.NewString(), in.CategoryID, in.Name, in.Description, in.PriceInCents, in.ImageURL, in.Stock, active, featured)
	return scanProduct(row)
}

func (r *PostgresRepository) UpdateProduct(ctx context.Context, id string, p ProductPatch) (Product, error) {
	set, args := buildSet(map[string]any{
		"category_id":    deref(p.CategoryID),
		"name":           deref(p.Name),
		"description":    deref(p.Description),
		"price_in_cents": deref(p.PriceInCents),
		"image_url":      deref(p.ImageURL),
		"stock":          deref(p.Stock),
		"is_active":      deref(p.IsActive),
		"is_featured":    deref(p.IsFeatured),
	})
	if len(args) == 0 {
		return r.GetProduct(ctx, id)
	}
	args = append(args, id)
	row := r.pool.QueryRow(ctx, fmt.Sprintf(
		`UPDATE products SET %s, updated_at=now() WHERE id=$%d RETURNING %s`, set, len(args), productCols), args...)
	prod, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return prod, err
}

func (r *PostgresRepository) DeleteProduct(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustStock applies a stock delta and records the movement in one
// transaction so the products table and the movement log cannot drift.
func (r *PostgresRepository) AdjustStock(ctx context.Context, productID string, change int, reason, notes string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `UPDATE products SET stock = stock + $2, updated_at=now() WHERE id=$1`, productID, change)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO stock_movements (id, product_id, quantity_change, reason, notes)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), productID, change, reason, notes)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}

	return tx.Commit(ctx)
}

// buildSet assembles "col=$n" pairs for the non-nil values in cols.
// Iteration order is made deterministic by sorting the keys.
func buildSet(cols map[string]any) (string, []any) {
	keys := make([]string, 0, len(cols))
	for k, v := range cols {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	set := ""
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		if i > 0 {
			set += ", "
		}
		args = append(args, cols[k])
		set += fmt.Sprintf("%s=$%d", k, len(args))
	}
	return set, args
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
