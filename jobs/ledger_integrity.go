package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridian-bms/meridian-bms/internal/ledger/reports"
)

// TrialBalanceProvider builds the all-time trial balance.
type TrialBalanceProvider interface {
	TrialBalance(ctx context.Context, window reports.Window) (reports.TrialBalance, error)
}

// NewLedgerIntegrityHandler returns the asynq handler for the nightly
// integrity check. An unbalanced grand total means a posting bypassed the
// invariant checks or a locked period was mutated; the check runs over all
// time so drift cannot hide outside a window.
func NewLedgerIntegrityHandler(provider TrialBalanceProvider, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tb, err := provider.TrialBalance(ctx, reports.Window{})
		if err != nil {
			logger.Error("ledger integrity check failed", slog.Any("error", err))
			return err
		}
		if !tb.Balanced {
			logger.Error("ledger integrity violation",
				slog.Int64("total_debit", tb.TotalDebit),
				slog.Int64("total_credit", tb.TotalCredit))
			return nil
		}
		logger.Info("ledger integrity check passed",
			slog.Int64("total_debit", tb.TotalDebit),
			slog.Int("accounts", len(tb.Rows)))
		return nil
	}
}
