package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-bms/meridian-bms/internal/ledger/money"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// Repository defines persistence operations for invoices and payments.
type Repository interface {
	CreateInvoice(ctx context.Context, invoice Invoice) (Invoice, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (Invoice, error)
	ListInvoices(ctx context.Context, clientID *uuid.UUID) ([]Invoice, error)
	SetInvoiceEntry(ctx context.Context, id uuid.UUID, entryID int64) error
	SetInvoiceStatus(ctx context.Context, id uuid.UUID, status InvoiceStatus) error

	CreatePayment(ctx context.Context, payment Payment) (Payment, error)
	ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
	PaymentsTotal(ctx context.Context, invoiceID uuid.UUID) (money.Amount, error)
	SetPaymentEntry(ctx context.Context, id uuid.UUID, entryID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const invoiceSelect = `SELECT id, client_id, number, date, due_date, amount, tax_percent, tax_amount, total, status, entry_id, created_at, updated_at FROM invoices`

func (r *repository) CreateInvoice(ctx context.Context, invoice Invoice) (Invoice, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO invoices (id, client_id, number, date, due_date, amount, tax_percent, tax_amount, total, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
RETURNING id, client_id, number, date, due_date, amount, tax_percent, tax_amount, total, status, entry_id, created_at, updated_at`,
		invoice.ID, invoice.ClientID, invoice.Number, invoice.Date, invoice.DueDate,
		invoice.Amount, invoice.TaxPercent, invoice.TaxAmount, invoice.Total, invoice.Status)
	return scanInvoice(row)
}

func (r *repository) GetInvoice(ctx context.Context, id uuid.UUID) (Invoice, error) {
	out, err := scanInvoice(r.pool.QueryRow(ctx, invoiceSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, fmt.Errorf("%w: invoice %s", shared.ErrNotFound, id)
	}
	return out, err
}

func (r *repository) ListInvoices(ctx context.Context, clientID *uuid.UUID) ([]Invoice, error) {
	query := invoiceSelect
	var args []any
	if clientID != nil {
		query += ` WHERE client_id = $1`
		args = append(args, *clientID)
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, invoice)
	}
	return out, rows.Err()
}

func (r *repository) SetInvoiceEntry(ctx context.Context, id uuid.UUID, entryID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE invoices SET entry_id = $1, updated_at = NOW() WHERE id = $2`, entryID, id)
	return err
}

func (r *repository) SetInvoiceStatus(ctx context.Context, id uuid.UUID, status InvoiceStatus) error {
	_, err := r.pool.Exec(ctx, `UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	return err
}

func (r *repository) CreatePayment(ctx context.Context, payment Payment) (Payment, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO payments (id, invoice_id, date, amount, method, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())
RETURNING id, invoice_id, date, amount, method, entry_id, created_at`,
		payment.ID, payment.InvoiceID, payment.Date, payment.Amount, payment.Method)
	return scanPayment(row)
}

func (r *repository) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, invoice_id, date, amount, method, entry_id, created_at FROM payments WHERE invoice_id = $1 ORDER BY date, created_at`,
		invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, payment)
	}
	return out, rows.Err()
}

func (r *repository) PaymentsTotal(ctx context.Context, invoiceID uuid.UUID) (money.Amount, error) {
	var total money.Amount
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = $1`, invoiceID).Scan(&total)
	return total, err
}

func (r *repository) SetPaymentEntry(ctx context.Context, id uuid.UUID, entryID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE payments SET entry_id = $1 WHERE id = $2`, entryID, id)
	return err
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.ClientID, &inv.Number, &inv.Date, &inv.DueDate,
		&inv.Amount, &inv.TaxPercent, &inv.TaxAmount, &inv.Total, &inv.Status,
		&inv.EntryID, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.InvoiceID, &p.Date, &p.Amount, &p.Method, &p.EntryID, &p.CreatedAt)
	return p, err
}
