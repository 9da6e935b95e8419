package user

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrEmailExists = errors.New("email already registered")
)

type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, u User) (User, error)
	UpdateProfile(ctx context.Context, id string, p ProfilePatch) (User, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userCols = `id, email, password, first_name, last_name, phone, coalesce(profile_image_url,''), role, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone,
		&u.ProfileImageURL, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email=$1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	created, err := scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password, first_name, last_name, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userCols,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.Role))
	if err != nil && isUniqueViolation(err) {
		return User{}, ErrEmailExists
	}
	return created, err
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, p ProfilePatch) (User, error) {
	set, args := buildSet(map[string]any{
		"first_name": deref(p.FirstName),
		"last_name":  deref(p.LastName),
		"phone":      deref(p.Phone),
	})
	if len(args) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	u, err := scanUser(r.pool.QueryRow(ctx, fmt.Sprintf(
		`UPDATE users SET %s, updated_at=now() WHERE id=$%d RETURNING %s`, set, len(args), userCols), args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func isUniqueViolation(err error) bool {
	type sqlState interface{ SQLState() string }
	var s sqlState
	return errors.As(err, &s) && s.SQLState() == "23505"
}

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
