package order

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestCreateDecrementsStockAndCommits(t *testing.T) {
	ctx := context.Background()
	pool := newMockPool(map[string]int{"p1": 5, "p2": 3})
	repo := NewPostgresRepository(pool)

	o := &Order{
		UserID:             "u1",
		PaymentMethod:      PaymentCash,
		TotalAmountInCents: 6000,
		Items: []Item{
			{ProductID: "p1", ProductName: "Kahve", ProductPriceInCents: 1500, Quantity: 2, SubtotalInCents: 3000},
			{ProductID: "p2", ProductName: "Ekmek", ProductPriceInCents: 3000, Quantity: 1, SubtotalInCents: 3000},
		},
	}

	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.ID == "" || o.Status != StatusPreparing {
		t.Fatalf("order not initialized: %+v", o)
	}
	if pool.stocks["p1"] != 3 || pool.stocks["p2"] != 2 {
		t.Fatalf("stocks not decremented: %+v", pool.stocks)
	}
	if pool.lastTx == nil || !pool.lastTx.committed {
		t.Fatal("transaction not committed")
	}
	if got := len(pool.lastTx.itemInserts); got != 2 {
		t.Fatalf("expected 2 item inserts, got %d", got)
	}
	if got := len(pool.lastTx.movementInserts); got != 2 {
		t.Fatalf("expected 2 stock movements, got %d", got)
	}
}

func TestCreateInsufficientStockRollsBack(t *testing.T) {
	ctx := context.Background()
	pool := newMockPool(map[string]int{"p1": 1})
	repo := NewPostgresRepository(pool)

	o := &Order{
		UserID:        "u1",
		PaymentMethod: PaymentCash,
		Items: []Item{
			{ProductID: "p1", ProductName: "Kahve", Quantity: 2},
		},
	}

	err := repo.Create(ctx, o)
	var short *InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if short.ProductName != "Kahve" || short.Requested != 2 || short.Available != 1 {
		t.Fatalf("unexpected error detail: %+v", short)
	}
	if pool.stocks["p1"] != 1 {
		t.Fatalf("stock mutated despite rejection: %d", pool.stocks["p1"])
	}
	if pool.lastTx == nil || !pool.lastTx.rolledBack || pool.lastTx.committed {
		t.Fatal("transaction should have rolled back")
	}
}

func TestCreateUnknownProductTreatedAsZeroStock(t *testing.T) {
	ctx := context.Background()
	pool := newMockPool(nil)
	repo := NewPostgresRepository(pool)

	o := &Order{
		UserID:        "u1",
		PaymentMethod: PaymentBankTransfer,
		Items:         []Item{{ProductID: "ghost", ProductName: "Ghost", Quantity: 1}},
	}

	err := repo.Create(ctx, o)
	var short *InsufficientStockError
	if !errors.As(err, &short) || short.Available != 0 {
		t.Fatalf("expected zero-availability rejection, got %v", err)
	}
}

func TestCreateCommitFailureDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	pool := newMockPool(map[string]int{"p1": 5})
	pool.commitErr = errors.New("commit fail")
	repo := NewPostgresRepository(pool)

	o := &Order{
		UserID:        "u1",
		PaymentMethod: PaymentCash,
		Items:         []Item{{ProductID: "p1", ProductName: "Kahve", Quantity: 1}},
	}

	if err := repo.Create(ctx, o); err == nil {
		t.Fatal("expected commit error")
	}
	if pool.stocks["p1"] != 5 {
		t.Fatalf("stock changed after commit failure: %d", pool.stocks["p1"])
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPreparing, StatusOnDelivery, StatusDelivered, StatusCancelled} {
		if !ValidStatus(s) {
			t.Errorf("status %q should be valid", s)
		}
	}
	if ValidStatus("shipped") {
		t.Error("unknown status accepted")
	}
}

// --- mock pool -------------------------------------------------------------

type mockPool struct {
	stocks map[string]int

	beginErr  error
	commitErr error

	lastTx *mockTx
}

func newMockPool(initial map[string]int) *mockPool {
	cp := make(map[string]int, len(initial))
	for k, v := range initial {
		cp[k] = v
	}
	return &mockPool{stocks: cp}
}

func (p *mockPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (p *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return mockRow{err: pgx.ErrNoRows}
}

func (p *mockPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not implemented")
}

func (p *mockPool) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	tx := &mockTx{pool: p, pending: map[string]int{}}
	p.lastTx = tx
	return tx, nil
}

type mockTx struct {
	pgx.Tx // panic on anything not overridden below

	pool    *mockPool
	pending map[string]int

	itemInserts     [][]any
	movementInserts [][]any

	committed  bool
	rolledBack bool
}

func (tx *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "INSERT INTO orders"):
		now := time.Now()
		return mockRow{values: []any{now, now}}
	case strings.Contains(sql, "SELECT stock"):
		productID := args[0].(string)
		available, ok := tx.pool.stocks[productID]
		if !ok {
			return mockRow{err: pgx.ErrNoRows}
		}
		return mockRow{values: []any{available}}
	}
	return mockRow{err: errors.New("unexpected query: " + sql)}
}

func (tx *mockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "UPDATE products"):
		productID := args[0].(string)
		tx.pending[productID] += args[1].(int)
	case strings.Contains(sql, "INSERT INTO stock_movements"):
		tx.movementInserts = append(tx.movementInserts, args)
	case strings.Contains(sql, "INSERT INTO order_items"):
		tx.itemInserts = append(tx.itemInserts, args)
	default:
		return pgconn.CommandTag{}, errors.New("unexpected exec: " + sql)
	}
	return pgconn.NewCommandTag("EXEC 1"), nil
}

func (tx *mockTx) Commit(ctx context.Context) error {
	if tx.pool.commitErr != nil {
		return tx.pool.commitErr
	}
	for productID, dec := range tx.pending {
		tx.pool.stocks[productID] -= dec
	}
	tx.committed = true
	return nil
}

func (tx *mockTx) Rollback(ctx context.Context) error {
	tx.rolledBack = true
	return nil
}

type mockRow struct {
	values []any
	err    error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return errors.New("unsupported scan dest")
		}
	}
	return nil
}
