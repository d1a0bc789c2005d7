package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// Repository defines persistence operations for clients.
type Repository interface {
	Create(ctx context.Context, client Client) (Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (Client, error)
	List(ctx context.Context, filter ListFilter) ([]Client, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Client, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const clientSelect = `SELECT id, name, email, phone, notes, is_active, created_at, updated_at FROM clients`

func (r *repository) Create(ctx context.Context, client Client) (Client, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO clients (id, name, email, phone, notes, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
RETURNING id, name, email, phone, notes, is_active, created_at, updated_at`,
		client.ID, client.Name, client.Email, client.Phone, client.Notes)
	return scanClient(row)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (Client, error) {
	out, err := scanClient(r.pool.QueryRow(ctx, clientSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, fmt.Errorf("%w: client %s", shared.ErrNotFound, id)
	}
	return out, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	query := clientSelect
	var conditions []string
	var args []any
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, client)
	}
	return out, rows.Err()
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Client, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if in.Name != nil {
		appendSet("name", *in.Name)
	}
	if in.Email != nil {
		appendSet("email", *in.Email)
	}
	if in.Phone != nil {
		appendSet("phone", *in.Phone)
	}
	if in.Notes != nil {
		appendSet("notes", *in.Notes)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE clients SET %s WHERE id = $%d
RETURNING id, name, email, phone, notes, is_active, created_at, updated_at`,
		strings.Join(sets, ", "), len(args))

	out, err := scanClient(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, fmt.Errorf("%w: client %s", shared.ErrNotFound, id)
	}
	return out, err
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE clients SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: client %s", shared.ErrNotFound, id)
	}
	return nil
}

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
