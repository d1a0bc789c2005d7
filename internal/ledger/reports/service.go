package reports

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// Service is the read-only reporting surface. Every report is a pure
// function of committed journal lines plus the chart of accounts; derived
// values are never stored.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GeneralLedger returns the chronological statement for one account with
// running balances.
func (s *Service) GeneralLedger(ctx context.Context, code string, window Window) (Ledger, error) {
	exists, err := s.repo.AccountExists(ctx, code)
	if err != nil {
		return Ledger{}, err
	}
	if !exists {
		return Ledger{}, fmt.Errorf("%w: account %s", shared.ErrNotFound, code)
	}
	rows, err := s.repo.AccountLines(ctx, code, window)
	if err != nil {
		return Ledger{}, err
	}
	return BuildLedger(rows), nil
}

// EntityLedger returns the statement for one business entity across all
// its tagged lines. Entity identity was canonicalised at write time, so
// this is a plain typed-column filter.
func (s *Service) EntityLedger(ctx context.Context, entity shared.Entity, window Window) (Ledger, error) {
	rows, err := s.repo.EntityLines(ctx, entity, window)
	if err != nil {
		return Ledger{}, err
	}
	return BuildLedger(rows), nil
}

// TrialBalance aggregates debit/credit totals per account over the window.
func (s *Service) TrialBalance(ctx context.Context, window Window) (TrialBalance, error) {
	balances, err := s.repo.BalancesByAccount(ctx, window)
	if err != nil {
		return TrialBalance{}, err
	}
	return BuildTrialBalance(balances), nil
}

// IncomeStatement reports revenue, expense, and net income for the window.
func (s *Service) IncomeStatement(ctx context.Context, window Window) (IncomeStatement, error) {
	balances, err := s.repo.BalancesByAccount(ctx, window)
	if err != nil {
		return IncomeStatement{}, err
	}
	return BuildIncomeStatement(balances), nil
}

// BalanceSheet reports the as-of snapshot of assets, liabilities, and
// equity.
func (s *Service) BalanceSheet(ctx context.Context, asOf time.Time) (BalanceSheet, error) {
	balances, err := s.repo.BalancesByAccount(ctx, Window{To: asOf})
	if err != nil {
		return BalanceSheet{}, err
	}
	return BuildBalanceSheet(balances), nil
}

// Statements bundles the income statement and balance sheet for one
// reporting date, built concurrently.
type Statements struct {
	IncomeStatement IncomeStatement `json:"incomeStatement"`
	BalanceSheet    BalanceSheet    `json:"balanceSheet"`
}

// BuildStatements produces both financial statements for the window, with
// the balance sheet snapshotted at the window end.
func (s *Service) BuildStatements(ctx context.Context, window Window) (Statements, error) {
	var out Statements
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pl, err := s.IncomeStatement(gctx, window)
		if err != nil {
			return err
		}
		out.IncomeStatement = pl
		return nil
	})
	g.Go(func() error {
		bs, err := s.BalanceSheet(gctx, window.To)
		if err != nil {
			return err
		}
		out.BalanceSheet = bs
		return nil
	})
	if err := g.Wait(); err != nil {
		return Statements{}, err
	}
	return out, nil
}
