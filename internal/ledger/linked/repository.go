package linked

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-bms/meridian-bms/internal/ledger/accounts"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// Repository gives the provisioner atomic find-or-create primitives over
// the chart of accounts.
type Repository interface {
	FindByCode(ctx context.Context, code string) (accounts.Account, error)
	// InsertIfAbsent inserts the account, doing nothing when the code is
	// already taken. The uniqueness constraint on accounts.code is what
	// makes concurrent first-time provisioning converge.
	InsertIfAbsent(ctx context.Context, account accounts.Account) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) FindByCode(ctx context.Context, code string) (accounts.Account, error) {
	var a accounts.Account
	err := r.pool.QueryRow(ctx, `SELECT code, name, type, parent_code, is_active, created_at, updated_at
FROM accounts WHERE code = $1`, code).
		Scan(&a.Code, &a.Name, &a.Type, &a.ParentCode, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accounts.Account{}, fmt.Errorf("%w: account %s", shared.ErrNotFound, code)
		}
		return accounts.Account{}, err
	}
	return a, nil
}

func (r *repository) InsertIfAbsent(ctx context.Context, account accounts.Account) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO accounts (code, name, type, parent_code, is_active)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (code) DO NOTHING`,
		account.Code, account.Name, account.Type, account.ParentCode, account.IsActive)
	return err
}
