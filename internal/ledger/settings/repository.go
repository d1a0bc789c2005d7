package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the singleton settings row.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	EnsureDefaults(ctx context.Context) error
	Update(ctx context.Context, updates map[string]any) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const selectColumns = `base_currency, currency_exponent, fiscal_year_start_month,
cash_account, bank_account, ar_parent, ap_parent, salary_expense_account, salary_payable_parent, revenue_account,
brand_name, statement_footer, updated_at`

func (r *repository) Get(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM accounting_settings WHERE id = 1`).
		Scan(&s.BaseCurrency, &s.CurrencyExponent, &s.FiscalYearStartMonth,
			&s.CashAccount, &s.BankAccount, &s.ARParent, &s.APParent,
			&s.SalaryExpenseAccount, &s.SalaryPayableParent, &s.RevenueAccount,
			&s.BrandName, &s.StatementFooter, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, pgx.ErrNoRows
		}
		return Settings{}, err
	}
	return s, nil
}

// EnsureDefaults inserts the defaults row if absent. ON CONFLICT makes the
// lazy creation safe under concurrent first reads.
func (r *repository) EnsureDefaults(ctx context.Context) error {
	d := Defaults()
	_, err := r.pool.Exec(ctx, `INSERT INTO accounting_settings
(id, base_currency, currency_exponent, fiscal_year_start_month,
 cash_account, bank_account, ar_parent, ap_parent, salary_expense_account, salary_payable_parent, revenue_account,
 brand_name, statement_footer)
VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO NOTHING`,
		d.BaseCurrency, d.CurrencyExponent, d.FiscalYearStartMonth,
		d.CashAccount, d.BankAccount, d.ARParent, d.APParent,
		d.SalaryExpenseAccount, d.SalaryPayableParent, d.RevenueAccount,
		d.BrandName, d.StatementFooter)
	return err
}

func (r *repository) Update(ctx context.Context, updates map[string]any) error {
	query := "UPDATE accounting_settings SET updated_at = NOW()"
	var args []any
	argPos := 1
	for _, col := range []string{
		"base_currency", "fiscal_year_start_month",
		"cash_account", "bank_account", "ar_parent", "ap_parent",
		"salary_expense_account", "salary_payable_parent", "revenue_account",
		"brand_name", "statement_footer",
	} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}
	query += " WHERE id = 1"
	_, err := r.pool.Exec(ctx, query, args...)
	return err
}
