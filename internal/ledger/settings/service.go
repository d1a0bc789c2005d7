package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// Service reads and patches the singleton settings record.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the settings row, inserting the defaults if absent.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	current, err := s.repo.Get(ctx)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, err
	}
	if err := s.repo.EnsureDefaults(ctx); err != nil {
		return Settings{}, fmt.Errorf("ensure settings defaults: %w", err)
	}
	return s.repo.Get(ctx)
}

// Update merges only the recognized fields into the settings row and
// returns the fresh state.
func (s *Service) Update(ctx context.Context, input UpdateInput) (Settings, error) {
	// Guarantee the row exists before patching it.
	if _, err := s.Get(ctx); err != nil {
		return Settings{}, err
	}

	updates := make(map[string]any)
	if input.BaseCurrency != nil {
		if len(*input.BaseCurrency) != 3 {
			return Settings{}, fmt.Errorf("%w: base currency must be a 3-letter code", shared.ErrValidation)
		}
		updates["base_currency"] = *input.BaseCurrency
	}
	if input.FiscalYearStartMonth != nil {
		if *input.FiscalYearStartMonth < 1 || *input.FiscalYearStartMonth > 12 {
			return Settings{}, fmt.Errorf("%w: fiscal year start month out of range", shared.ErrValidation)
		}
		updates["fiscal_year_start_month"] = *input.FiscalYearStartMonth
	}
	for col, v := range map[string]*string{
		"cash_account":           input.CashAccount,
		"bank_account":           input.BankAccount,
		"ar_parent":              input.ARParent,
		"ap_parent":              input.APParent,
		"salary_expense_account": input.SalaryExpenseAccount,
		"salary_payable_parent":  input.SalaryPayableParent,
		"revenue_account":        input.RevenueAccount,
		"brand_name":             input.BrandName,
		"statement_footer":       input.StatementFooter,
	} {
		if v != nil {
			updates[col] = *v
		}
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, updates); err != nil {
			return Settings{}, err
		}
	}
	return s.repo.Get(ctx)
}
