package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
	"github.com/meridian-bms/meridian-bms/internal/platform/db"
)

const uniqueViolation = "23505"

// Repository persists chart of accounts rows. WithTx hands fn a Repository
// bound to one transaction, so a read-then-write pair like the retype
// guard sees a consistent snapshot.
type Repository interface {
	Create(ctx context.Context, account Account) error
	GetByCode(ctx context.Context, code string) (Account, error)
	List(ctx context.Context, filter ListFilter) ([]Account, error)
	Update(ctx context.Context, code string, updates map[string]any) error
	CountPostedLines(ctx context.Context, code string) (int64, error)
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}

// querier covers both pgx.Tx and *pgxpool.Pool.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	q    querier
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by Postgres.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{q: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if r.pool == nil {
		return fn(ctx, r)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{q: tx})
	})
}

func (r *repository) Create(ctx context.Context, account Account) error {
	_, err := r.q.Exec(ctx, `INSERT INTO accounts (code, name, type, parent_code, is_active)
VALUES ($1, $2, $3, $4, $5)`, account.Code, account.Name, account.Type, account.ParentCode, account.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: account code %s", shared.ErrAlreadyExists, account.Code)
		}
		return err
	}
	return nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (Account, error) {
	var a Account
	err := r.q.QueryRow(ctx, `SELECT code, name, type, parent_code, is_active, created_at, updated_at
FROM accounts WHERE code = $1`, code).
		Scan(&a.Code, &a.Name, &a.Type, &a.ParentCode, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, fmt.Errorf("%w: account %s", shared.ErrNotFound, code)
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Account, error) {
	query := `SELECT code, name, type, parent_code, is_active, created_at, updated_at FROM accounts`
	var conditions []string
	var args []any
	argPos := 1

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argPos))
		args = append(args, *filter.Type)
		argPos++
	}
	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(code ILIKE $%d OR name ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+*filter.Search+"%")
		argPos++
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *filter.IsActive)
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY code"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.Code, &a.Name, &a.Type, &a.ParentCode, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) Update(ctx context.Context, code string, updates map[string]any) error {
	query := "UPDATE accounts SET updated_at = NOW()"
	var args []any
	argPos := 1

	for _, col := range []string{"name", "type", "parent_code", "is_active"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}
	query += fmt.Sprintf(" WHERE code = $%d", argPos)
	args = append(args, code)

	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", shared.ErrNotFound, code)
	}
	return nil
}

func (r *repository) CountPostedLines(ctx context.Context, code string) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM journal_lines WHERE account_code = $1`, code).Scan(&count)
	return count, err
}
