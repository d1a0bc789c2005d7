// Package linked provisions subsidiary ledger accounts for business
// entities on first use.
package linked

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meridian-bms/meridian-bms/internal/ledger/accounts"
	"github.com/meridian-bms/meridian-bms/internal/ledger/settings"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// Provisioner lazily creates per-entity subsidiary accounts. The settings
// snapshot is injected at construction, not fetched per call.
type Provisioner struct {
	repo   Repository
	cfg    settings.Settings
	logger *slog.Logger
}

func NewProvisioner(repo Repository, cfg settings.Settings, logger *slog.Logger) *Provisioner {
	return &Provisioner{repo: repo, cfg: cfg, logger: logger}
}

// ensureAttempts bounds the find/insert rounds under a duplicate-code race.
const ensureAttempts = 2

// Ensure returns the subsidiary account for the entity, creating it if
// needed. Concurrent first-time calls for the same entity converge on one
// row: the insert is an upsert guarded by the unique code constraint, and
// a loser of the race simply re-reads the winner's row.
func (p *Provisioner) Ensure(ctx context.Context, entity shared.Entity, displayName string) (accounts.Account, error) {
	parent, accountType, err := p.resolveControl(entity.Type)
	if err != nil {
		return accounts.Account{}, err
	}
	code := parent + "-" + entity.CodeSuffix()

	for attempt := 0; attempt < ensureAttempts; attempt++ {
		existing, err := p.repo.FindByCode(ctx, code)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return accounts.Account{}, err
		}
		candidate := accounts.Account{
			Code:       code,
			Name:       fmt.Sprintf("%s (%s)", displayName, entity.Type),
			Type:       accountType,
			ParentCode: &parent,
			IsActive:   true,
		}
		if err := p.repo.InsertIfAbsent(ctx, candidate); err != nil {
			return accounts.Account{}, fmt.Errorf("provision account %s: %w", code, err)
		}
		if attempt > 0 {
			p.logger.Warn("linked account provisioning retried", slog.String("code", code))
		}
	}

	// Both rounds raced; one more read before giving up.
	existing, err := p.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return accounts.Account{}, fmt.Errorf("%w: account %s", shared.ErrConflict, code)
		}
		return accounts.Account{}, err
	}
	return existing, nil
}

func (p *Provisioner) resolveControl(kind shared.EntityType) (string, accounts.AccountType, error) {
	switch kind {
	case shared.EntityClient:
		return p.cfg.ARParent, accounts.AccountTypeAsset, nil
	case shared.EntityEmployee:
		return p.cfg.SalaryPayableParent, accounts.AccountTypeLiability, nil
	case shared.EntityVendor:
		return p.cfg.APParent, accounts.AccountTypeLiability, nil
	default:
		return "", "", fmt.Errorf("%w: unknown entity type %q", shared.ErrValidation, kind)
	}
}
