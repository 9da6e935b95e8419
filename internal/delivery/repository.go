package delivery

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

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	ListRegions(ctx context.Context) ([]Region, error)
	GetRegion(ctx context.Context, id string) (Region, error)
	CreateRegion(ctx context.Context, in RegionInput) (Region, error)
	UpdateRegion(ctx context.Context, id string, p RegionPatch) (Region, error)
	DeleteRegion(ctx context.Context, id string) error

	ListLocations(ctx context.Context, regionID string) ([]CampingLocation, error)
	CreateLocation(ctx context.Context, in CampingLocationInput) (CampingLocation, error)
	UpdateLocation(ctx context.Context, id string, p CampingLocationPatch) (CampingLocation, error)
	DeleteLocation(ctx context.Context, id string) error

	ListSlots(ctx context.Context, regionID string) ([]Slot, error)
	CreateSlot(ctx context.Context, in SlotInput) (Slot, error)
	UpdateSlot(ctx context.Context, id string, p SlotPatch) (Slot, error)
	DeleteSlot(ctx context.Context, id string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const regionCols = `id, name, min_eta_minutes, max_eta_minutes, is_active, created_at, updated_at`

func scanRegion(row pgx.Row) (Region, error) {
	var r Region
	err := row.Scan(&r.ID, &r.Name, &r.MinETAMinutes, &r.MaxETAMinutes, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r *PostgresRepository) ListRegions(ctx context.Context) ([]Region, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+regionCols+` FROM delivery_regions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select regions: %w", err)
	}
	defer rows.Close()

	var out []Region
	for rows.Next() {
		reg, err := scanRegion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetRegion(ctx context.Context, id string) (Region, error) {
	reg, err := scanRegion(r.pool.QueryRow(ctx, `SELECT `+regionCols+` FROM delivery_regions WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Region{}, ErrNotFound
	}
	return reg, err
}

func (r *PostgresRepository) CreateRegion(ctx context.Context, in RegionInput) (Region, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	minETA, maxETA := in.MinETAMinutes, in.MaxETAMinutes
	if minETA == 0 {
		minETA = 30
	}
	if maxETA == 0 {
		maxETA = 120
	}
	return scanRegion(r.pool.QueryRow(ctx, `
		INSERT INTO delivery_regions (id, name, min_eta_minutes, max_eta_minutes, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+regionCols,
		uuid.NewString(), in.Name, minETA, maxETA, active))
}

func (r *PostgresRepository) UpdateRegion(ctx context.Context, id string, p RegionPatch) (Region, error) {
	set, args := buildSet(map[string]any{
		"name":            deref(p.Name),
		"min_eta_minutes": deref(p.MinETAMinutes),
		"max_eta_minutes": deref(p.MaxETAMinutes),
		"is_active":       deref(p.IsActive),
	})
	if len(args) == 0 {
		return r.GetRegion(ctx, id)
	}
	args = append(args, id)
	reg, err := scanRegion(r.pool.QueryRow(ctx, fmt.Sprintf(
		`UPDATE delivery_regions SET %s, updated_at=now() WHERE id=$%d RETURNING %s`, set, len(args), regionCols), args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Region{}, ErrNotFound
	}
	return reg, err
}

func (r *PostgresRepository) DeleteRegion(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `delivery_regions`, id)
}

const locationCols = `id, region_id, name, coalesce(address,''), is_active, created_at, updated_at`

func scanLocation(row pgx.Row) (CampingLocation, error) {
	var l CampingLocation
	err := row.Scan(&l.ID, &l.RegionID, &l.Name, &l.Address, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *PostgresRepository) ListLocations(ctx context.Context, regionID string) ([]CampingLocation, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if regionID != "" {
		rows, err = r.pool.Query(ctx, `SELECT `+locationCols+` FROM camping_locations WHERE region_id=$1 ORDER BY name`, regionID)
	} else {
		rows, err = r.pool.Query(ctx, `SELECT `+locationCols+` FROM camping_locations ORDER BY name`)
	}
	if err != nil {
		return nil, fmt.Errorf("select locations: %w", err)
	}
	defer rows.Close()

	var out []CampingLocation
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateLocation(ctx context.Context, in CampingLocationInput) (CampingLocation, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return scanLocation(r.pool.QueryRow(ctx, `
		INSERT INTO camping_locations (id, region_id, name, address, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+locationCols,
		uuid.NewString(), in.RegionID, in.Name, in.Address, active))
}

func (r *PostgresRepository) UpdateLocation(ctx context.Context, id string, p CampingLocationPatch) (CampingLocation, error) {
	set, args := buildSet(map[string]any{
		"region_id": deref(p.RegionID),
		"name":      deref(p.Name),
		"address":   deref(p.Address),
		"is_active": deref(p.IsActive),
	})
	if len(args) == 0 {
		l, err := scanLocation(r.pool.QueryRow(ctx, `SELECT `+locationCols+` FROM camping_locations WHERE id=$1`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return CampingLocation{}, ErrNotFound
		}
		return l, err
	}
	args = append(args, id)
	l, err := scanLocation(r.pool.QueryRow(ctx, fmt.Sprintf(
		`UPDATE camping_locations SET %s, updated_at=now() WHERE id=$%d RETURNING %s`, set, len(args), locationCols), args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return CampingLocation{}, ErrNotFound
	}
	return l, err
}

func (r *PostgresRepository) DeleteLocation(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `camping_locations`, id)
}

const slotCols = `id, region_id, start_time, end_time, is_active, created_at, updated_at`

func scanSlot(row pgx.Row) (Slot, error) {
	var s Slot
	err := row.Scan(&s.ID, &s.RegionID, &s.StartTime, &s.EndTime, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *PostgresRepository) ListSlots(ctx context.Context, regionID string) ([]Slot, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if regionID != "" {
		rows, err = r.pool.Query(ctx, `SELECT `+slotCols+` FROM delivery_slots WHERE region_id=$1 ORDER BY start_time`, regionID)
	} else {
		rows, err = r.pool.Query(ctx, `SELECT `+slotCols+` FROM delivery_slots ORDER BY start_time`)
	}
	if err != nil {
		return nil, fmt.Errorf("select slots: %w", err)
	}
	defer rows.Close()

	var out []Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateSlot(ctx context.Context, in SlotInput) (Slot, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return scanSlot(r.pool.QueryRow(ctx, `
		INSERT INTO delivery_slots (id, region_id, start_time, end_time, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+slotCols,
		uuid.NewString(), in.RegionID, in.StartTime, in.EndTime, active))
}

func (r *PostgresRepository) UpdateSlot(ctx context.Context, id string, p SlotPatch) (Slot, error) {
	set, args := buildSet(map[string]any{
		"region_id":  deref(p.RegionID),
		"start_time": deref(p.StartTime),
		"end_time":   deref(p.EndTime),
		"is_active":  deref(p.IsActive),
	})
	if len(args) == 0 {
		s, err := scanSlot(r.pool.QueryRow(ctx, `SELECT `+slotCols+` FROM delivery_slots WHERE id=$1`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return Slot{}, ErrNotFound
		}
		return s, err
	}
	args = append(args, id)
	s, err := scanSlot(r.pool.QueryRow(ctx, fmt.Sprintf(
		`UPDATE delivery_slots SET %s, updated_at=now() WHERE id=$%d RETURNING %s`, set, len(args), slotCols), args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Slot{}, ErrNotFound
	}
	return s, err
}

func (r *PostgresRepository) DeleteSlot(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `delivery_slots`, id)
}

func (r *PostgresRepository) deleteByID(ctx context.Context, table, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
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
