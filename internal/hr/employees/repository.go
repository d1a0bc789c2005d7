package employees

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

// Repository defines persistence operations for employees.
type Repository interface {
	Create(ctx context.Context, employee Employee) (Employee, error)
	GetByID(ctx context.Context, id uuid.UUID) (Employee, error)
	List(ctx context.Context, filter ListFilter) ([]Employee, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Employee, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const employeeSelect = `SELECT id, name, email, position, salary, is_active, created_at, updated_at FROM employees`

func (r *repository) Create(ctx context.Context, employee Employee) (Employee, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO employees (id, name, email, position, salary, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
RETURNING id, name, email, position, salary, is_active, created_at, updated_at`,
		employee.ID, employee.Name, employee.Email, employee.Position, employee.Salary)
	return scanEmployee(row)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (Employee, error) {
	out, err := scanEmployee(r.pool.QueryRow(ctx, employeeSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, fmt.Errorf("%w: employee %s", shared.ErrNotFound, id)
	}
	return out, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Employee, error) {
	query := employeeSelect
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

	var out []Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, employee)
	}
	return out, rows.Err()
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Employee, error) {
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
	if in.Position != nil {
		appendSet("position", *in.Position)
	}
	if in.Salary != nil {
		appendSet("salary", *in.Salary)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE employees SET %s WHERE id = $%d
RETURNING id, name, email, position, salary, is_active, created_at, updated_at`,
		strings.Join(sets, ", "), len(args))

	out, err := scanEmployee(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, fmt.Errorf("%w: employee %s", shared.ErrNotFound, id)
	}
	return out, err
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE employees SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: employee %s", shared.ErrNotFound, id)
	}
	return nil
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Position, &e.Salary, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
