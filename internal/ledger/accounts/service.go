package accounts

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// Service exposes chart of accounts operations.
type Service struct {
	repo Repository
}

// NewService constructs the chart of accounts service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries fields for a new account.
type CreateInput struct {
	Code       string
	Name       string
	Type       AccountType
	ParentCode *string
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name       *string
	Type       *AccountType
	ParentCode *string
	IsActive   *bool
}

// Create registers a new account. Fails with ErrAlreadyExists when the
// code is taken; codes are stable and never reused.
func (s *Service) Create(ctx context.Context, input CreateInput) (Account, error) {
	code := strings.TrimSpace(strings.ToUpper(input.Code))
	name := strings.TrimSpace(input.Name)
	if code == "" {
		return Account{}, fmt.Errorf("%w: account code required", shared.ErrValidation)
	}
	if name == "" {
		return Account{}, fmt.Errorf("%w: account name required", shared.ErrValidation)
	}
	if !input.Type.Valid() {
		return Account{}, fmt.Errorf("%w: invalid account type %q", shared.ErrValidation, input.Type)
	}

	account := Account{
		Code:       code,
		Name:       name,
		Type:       input.Type,
		ParentCode: input.ParentCode,
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return Account{}, err
	}
	return s.repo.GetByCode(ctx, code)
}

// Get resolves a single account by code.
func (s *Service) Get(ctx context.Context, code string) (Account, error) {
	return s.repo.GetByCode(ctx, code)
}

// List returns accounts ordered by code.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Account, error) {
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: invalid account type %q", shared.ErrValidation, *filter.Type)
	}
	return s.repo.List(ctx, filter)
}

// Update applies a partial update. Changing the type of an account that
// already has posted lines would retroactively corrupt historical reports,
// so it is rejected with ErrAccountInUse; the posted-lines count and the
// update run in the same transaction.
func (s *Service) Update(ctx context.Context, code string, input UpdateInput) (Account, error) {
	var out Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		current, err := repo.GetByCode(ctx, code)
		if err != nil {
			return err
		}

		updates := make(map[string]any)
		if input.Name != nil {
			if strings.TrimSpace(*input.Name) == "" {
				return fmt.Errorf("%w: account name required", shared.ErrValidation)
			}
			updates["name"] = strings.TrimSpace(*input.Name)
		}
		if input.Type != nil && *input.Type != current.Type {
			if !input.Type.Valid() {
				return fmt.Errorf("%w: invalid account type %q", shared.ErrValidation, *input.Type)
			}
			posted, err := repo.CountPostedLines(ctx, code)
			if err != nil {
				return fmt.Errorf("count posted lines: %w", err)
			}
			if posted > 0 {
				return fmt.Errorf("%w: cannot retype account %s", shared.ErrAccountInUse, code)
			}
			updates["type"] = *input.Type
		}
		if input.ParentCode != nil {
			updates["parent_code"] = *input.ParentCode
		}
		if input.IsActive != nil {
			updates["is_active"] = *input.IsActive
		}

		if len(updates) == 0 {
			out = current
			return nil
		}
		if err := repo.Update(ctx, code, updates); err != nil {
			return err
		}
		out, err = repo.GetByCode(ctx, code)
		return err
	})
	if err != nil {
		return Account{}, err
	}
	return out, nil
}

// Deactivate marks the account inactive. There is no delete.
func (s *Service) Deactivate(ctx context.Context, code string) (Account, error) {
	inactive := false
	return s.Update(ctx, code, UpdateInput{IsActive: &inactive})
}
