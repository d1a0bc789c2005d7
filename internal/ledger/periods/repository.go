package periods

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// Repository persists accounting period rows.
type Repository interface {
	Create(ctx context.Context, period Period) (Period, error)
	Get(ctx context.Context, id int64) (Period, error)
	List(ctx context.Context) ([]Period, error)
	SetLocked(ctx context.Context, id int64, locked bool) error
	AnyLockedCovering(ctx context.Context, date time.Time) (bool, error)
	AnyOverlapping(ctx context.Context, start, end time.Time) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, period Period) (Period, error) {
	var p Period
	err := r.pool.QueryRow(ctx, `INSERT INTO accounting_periods (start_date, end_date, locked, note)
VALUES ($1, $2, $3, $4)
RETURNING id, start_date, end_date, locked, note, created_at, updated_at`,
		period.Start, period.End, period.Locked, period.Note).
		Scan(&p.ID, &p.Start, &p.End, &p.Locked, &p.Note, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Period{}, err
	}
	return p, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Period, error) {
	var p Period
	err := r.pool.QueryRow(ctx, `SELECT id, start_date, end_date, locked, note, created_at, updated_at
FROM accounting_periods WHERE id = $1`, id).
		Scan(&p.ID, &p.Start, &p.End, &p.Locked, &p.Note, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, fmt.Errorf("%w: period %d", shared.ErrNotFound, id)
		}
		return Period{}, err
	}
	return p, nil
}

func (r *repository) List(ctx context.Context) ([]Period, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, start_date, end_date, locked, note, created_at, updated_at
FROM accounting_periods ORDER BY start_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []Period
	for rows.Next() {
		var p Period
		if err := rows.Scan(&p.ID, &p.Start, &p.End, &p.Locked, &p.Note, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (r *repository) SetLocked(ctx context.Context, id int64, locked bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE accounting_periods SET locked = $2, updated_at = NOW() WHERE id = $1`, id, locked)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: period %d", shared.ErrNotFound, id)
	}
	return nil
}

func (r *repository) AnyLockedCovering(ctx context.Context, date time.Time) (bool, error) {
	var locked bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM accounting_periods WHERE locked AND $1 BETWEEN start_date AND end_date)`, date).Scan(&locked)
	return locked, err
}

func (r *repository) AnyOverlapping(ctx context.Context, start, end time.Time) (bool, error) {
	var overlapping bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM accounting_periods WHERE start_date <= $2 AND end_date >= $1)`, start, end).Scan(&overlapping)
	return overlapping, err
}
