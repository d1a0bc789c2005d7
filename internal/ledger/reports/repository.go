package reports

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// Repository reads committed journal data for aggregation. Posting is
// atomic, so these queries never observe a header without its lines.
type Repository interface {
	AccountExists(ctx context.Context, code string) (bool, error)
	AccountLines(ctx context.Context, code string, window Window) ([]LedgerRow, error)
	EntityLines(ctx context.Context, entity shared.Entity, window Window) ([]LedgerRow, error)
	BalancesByAccount(ctx context.Context, window Window) ([]AccountBalance, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) AccountExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

const ledgerSelect = `SELECT e.id, l.id, e.date, e.memo, e.ref_no, l.account_code, l.debit, l.credit, l.entity_type, l.entity_id
FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id`

func (r *repository) AccountLines(ctx context.Context, code string, window Window) ([]LedgerRow, error) {
	query, args := windowed(ledgerSelect+` WHERE l.account_code = $1`, []any{code}, window)
	return r.queryLines(ctx, query, args)
}

func (r *repository) EntityLines(ctx context.Context, entity shared.Entity, window Window) ([]LedgerRow, error) {
	query, args := windowed(ledgerSelect+` WHERE l.entity_type = $1 AND l.entity_id = $2`,
		[]any{string(entity.Type), entity.ID}, window)
	return r.queryLines(ctx, query, args)
}

func (r *repository) queryLines(ctx context.Context, query string, args []any) ([]LedgerRow, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerRow
	for rows.Next() {
		var row LedgerRow
		var entityType *string
		var entityID *uuid.UUID
		if err := rows.Scan(&row.EntryID, &row.LineID, &row.Date, &row.Memo, &row.RefNo,
			&row.AccountCode, &row.Debit, &row.Credit, &entityType, &entityID); err != nil {
			return nil, err
		}
		if entityType != nil && entityID != nil {
			row.Entity = &shared.Entity{Type: shared.EntityType(*entityType), ID: *entityID}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) BalancesByAccount(ctx context.Context, window Window) ([]AccountBalance, error) {
	query, args := balancesQuery(window)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.Code, &b.Name, &b.Type, &b.Debit, &b.Credit); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// balancesQuery aggregates per-account debit and credit totals. The window
// conditions live on the inner lines-to-entries join: a line whose entry
// falls outside the window must drop out before the outer join, otherwise
// it still matches the account and inflates the sums. Accounts without
// movement survive the outer join with zero totals.
func balancesQuery(window Window) (string, []any) {
	join := `journal_lines l JOIN journal_entries e ON e.id = l.entry_id`
	var args []any
	if !window.From.IsZero() {
		args = append(args, window.From)
		join += fmt.Sprintf(" AND e.date >= $%d", len(args))
	}
	if !window.To.IsZero() {
		args = append(args, window.To)
		join += fmt.Sprintf(" AND e.date <= $%d", len(args))
	}
	query := `SELECT a.code, a.name, a.type,
COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
FROM accounts a
LEFT JOIN (` + join + `) ON l.account_code = a.code
GROUP BY a.code, a.name, a.type ORDER BY a.code`
	return query, args
}

func windowed(base string, args []any, window Window) (string, []any) {
	query := base
	if !window.From.IsZero() {
		args = append(args, window.From)
		query += fmt.Sprintf(" AND e.date >= $%d", len(args))
	}
	if !window.To.IsZero() {
		args = append(args, window.To)
		query += fmt.Sprintf(" AND e.date <= $%d", len(args))
	}
	query += " ORDER BY e.date, e.id, l.id"
	return query, args
}
