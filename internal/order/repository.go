package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("not found")

// InsufficientStockError rejects an order whose lines exceed the live
// stock. The whole order transaction rolls back; no partial fulfillment.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (Order, error)
	List(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Order, error)
	DashboardStats(ctx context.Context, now time.Time) (Stats, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const orderCols = `id, user_id, status, total_amount_in_cents, payment_method,
	region_id, camping_location_id, coalesce(custom_address,''), delivery_slot_id,
	coalesce(estimated_delivery_time,''), created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalAmountInCents, &o.PaymentMethod,
		&o.RegionID, &o.CampingLocationID, &o.CustomAddress, &o.DeliverySlotID,
		&o.EstimatedDeliveryTime, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// Create inserts the order, its item snapshots, and the matching stock
// decrements in a single transaction. Each line locks its product row,
// rejects the whole order when stock is short, and records a stock
// movement referencing the order. A mid-sequence failure therefore can
// never leave an order without items or stock out of step with sales.
func (r *PostgresRepository) Create(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = StatusPreparing
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, status, total_amount_in_cents, payment_method,
			region_id, camping_location_id, custom_address, delivery_slot_id, estimated_delivery_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.Status, o.TotalAmountInCents, o.PaymentMethod,
		o.RegionID, o.CampingLocationID, nullIfEmpty(o.CustomAddress), o.DeliverySlotID,
		nullIfEmpty(o.EstimatedDeliveryTime),
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.OrderID = o.ID

		var available int
		err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1 FOR UPDATE`, it.ProductID).Scan(&available)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				available = 0
			} else {
				return fmt.Errorf("lock stock: %w", err)
			}
		}
		if available < it.Quantity {
			return &InsufficientStockError{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Requested:   it.Quantity,
				Available:   available,
			}
		}

		if _, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock - $2, updated_at=now() WHERE id=$1`,
			it.ProductID, it.Quantity); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO stock_movements (id, product_id, quantity_change, reason, notes)
			VALUES ($1, $2, $3, 'order', $4)`,
			uuid.NewString(), it.ProductID, -it.Quantity, o.ID); err != nil {
			return fmt.Errorf("insert stock movement: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, product_price_in_cents, quantity, subtotal_in_cents)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, o.ID, it.ProductID, it.ProductName, it.ProductPriceInCents, it.Quantity, it.SubtotalInCents); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("select order: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, product_name, product_price_in_cents, quantity, subtotal_in_cents, created_at
		FROM order_items WHERE order_id=$1`, id)
	if err != nil {
		return Order{}, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.ProductPriceInCents, &it.Quantity, &it.SubtotalInCents, &it.CreatedAt); err != nil {
			return Order{}, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

// List returns orders newest first; an empty userID means all orders
// (the staff view).
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Order, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if userID != "" {
		rows, err = r.pool.Query(ctx, `SELECT `+orderCols+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	} else {
		rows, err = r.pool.Query(ctx, `SELECT `+orderCols+` FROM orders ORDER BY created_at DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) (Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `
		UPDATE orders SET status=$2, updated_at=now() WHERE id=$1
		RETURNING `+orderCols, id, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

// DashboardStats recomputes the admin aggregates from scratch; there is no
// caching layer in front of it.
func (r *PostgresRepository) DashboardStats(ctx context.Context, now time.Time) (Stats, error) {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := now.Add(-7 * 24 * time.Hour)

	var s Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			count(*),
			coalesce(sum(total_amount_in_cents), 0),
			count(*) FILTER (WHERE created_at >= $1),
			coalesce(sum(total_amount_in_cents) FILTER (WHERE created_at >= $1), 0),
			count(*) FILTER (WHERE created_at >= $2),
			coalesce(sum(total_amount_in_cents) FILTER (WHERE created_at >= $2), 0)
		FROM orders`, todayStart, weekStart,
	).Scan(&s.TotalOrders, &s.TotalRevenue, &s.TodayOrders, &s.TodayRevenue, &s.WeekOrders, &s.WeekRevenue)
	if err != nil {
		return Stats{}, fmt.Errorf("order totals: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT product_id, product_name, sum(quantity)::int, sum(subtotal_in_cents)::int
		FROM order_items
		GROUP BY product_id, product_name
		ORDER BY sum(subtotal_in_cents) DESC
		LIMIT 5`)
	if err != nil {
		return Stats{}, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.ProductName, &tp.TotalSold, &tp.Revenue); err != nil {
			return Stats{}, fmt.Errorf("scan top product: %w", err)
		}
		s.TopProducts = append(s.TopProducts, tp)
	}
	return s, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
