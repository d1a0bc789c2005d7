package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
	"github.com/meridian-bms/meridian-bms/internal/platform/db"
)

// TxRepository exposes the operations available inside a posting
// transaction. Header and lines commit together or not at all.
type TxRepository interface {
	AccountExists(ctx context.Context, code string) (bool, error)
	InsertEntry(ctx context.Context, in PostingInput, reversalOf *int64) (JournalEntry, error)
	InsertLines(ctx context.Context, entryID int64, lines []LineInput) error
	GetEntryWithLines(ctx context.Context, entryID int64) (JournalEntry, error)
}

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetEntry(ctx context.Context, entryID int64) (JournalEntry, error)
	ListEntries(ctx context.Context, limit, offset int) ([]JournalEntry, error)
}

// Repository persists journal entries in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes fn within a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *Repository) GetEntry(ctx context.Context, entryID int64) (JournalEntry, error) {
	return getEntryWithLines(ctx, r.pool, entryID)
}

func (r *Repository) ListEntries(ctx context.Context, limit, offset int) ([]JournalEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, date, memo, ref_no, currency, posted_by, posted_at, adjusting, reversal_of, created_at
FROM journal_entries ORDER BY id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.Memo, &e.RefNo, &e.Currency, &e.PostedBy, &e.PostedAt, &e.Adjusting, &e.ReversalOf, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

// querier covers both pgx.Tx and *pgxpool.Pool.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *txRepository) AccountExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

func (r *txRepository) InsertEntry(ctx context.Context, in PostingInput, reversalOf *int64) (JournalEntry, error) {
	entry := JournalEntry{
		Date:       in.Date,
		Memo:       in.Memo,
		RefNo:      in.RefNo,
		Currency:   in.Currency,
		PostedBy:   in.PostedBy,
		Adjusting:  in.Adjusting,
		ReversalOf: reversalOf,
	}
	err := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (date, memo, ref_no, currency, posted_by, adjusting, reversal_of)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, posted_at, created_at`,
		in.Date, in.Memo, in.RefNo, in.Currency, in.PostedBy, in.Adjusting, reversalOf).
		Scan(&entry.ID, &entry.PostedAt, &entry.CreatedAt)
	if err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []LineInput) error {
	for _, line := range lines {
		var entityType *string
		var entityID *uuid.UUID
		if line.Entity != nil {
			kind := string(line.Entity.Type)
			id := line.Entity.ID
			entityType = &kind
			entityID = &id
		}
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_lines (entry_id, account_code, debit, credit, entity_type, entity_id)
VALUES ($1, $2, $3, $4, $5, $6)`,
			entryID, line.AccountCode, line.Debit, line.Credit, entityType, entityID); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) GetEntryWithLines(ctx context.Context, entryID int64) (JournalEntry, error) {
	return getEntryWithLines(ctx, r.tx, entryID)
}

func getEntryWithLines(ctx context.Context, q querier, entryID int64) (JournalEntry, error) {
	var e JournalEntry
	err := q.QueryRow(ctx, `SELECT id, date, memo, ref_no, currency, posted_by, posted_at, adjusting, reversal_of, created_at
FROM journal_entries WHERE id = $1`, entryID).
		Scan(&e.ID, &e.Date, &e.Memo, &e.RefNo, &e.Currency, &e.PostedBy, &e.PostedAt, &e.Adjusting, &e.ReversalOf, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, fmt.Errorf("%w: journal entry %d", shared.ErrNotFound, entryID)
		}
		return JournalEntry{}, err
	}

	rows, err := q.Query(ctx, `SELECT id, entry_id, account_code, debit, credit, entity_type, entity_id
FROM journal_lines WHERE entry_id = $1 ORDER BY id`, entryID)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var line JournalLine
		var entityType *string
		var entityID *uuid.UUID
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountCode, &line.Debit, &line.Credit, &entityType, &entityID); err != nil {
			return JournalEntry{}, err
		}
		if entityType != nil && entityID != nil {
			line.Entity = &shared.Entity{Type: shared.EntityType(*entityType), ID: *entityID}
		}
		e.Lines = append(e.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return JournalEntry{}, err
	}
	return e, nil
}
