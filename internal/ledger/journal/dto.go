package journal

import (
	"fmt"
	"time"

	"github.com/meridian-bms/meridian-bms/internal/ledger/money"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// LineInput describes one journal line of a posting request. Amounts are
// integer minor units; exactly one of Debit/Credit must be positive.
type LineInput struct {
	AccountCode string
	Debit       money.Amount
	Credit      money.Amount
	Entity      *shared.Entity
}

// PostingInput groups the fields required to post a journal entry.
type PostingInput struct {
	Date      time.Time
	Memo      string
	RefNo     string
	Currency  string
	PostedBy  int64
	Adjusting bool
	Lines     []LineInput
}

// ReverseInput wraps parameters for a reversal.
type ReverseInput struct {
	EntryID int64
	ActorID int64
	Memo    string
}

// Validate enforces the posting invariants: at least two lines, exactly
// one strictly positive side per line, and debits equal to credits in
// exact integer minor units.
func (in PostingInput) Validate() error {
	if in.Date.IsZero() {
		return fmt.Errorf("%w: posting date required", shared.ErrValidation)
	}
	if len(in.Lines) < 2 {
		return fmt.Errorf("%w: journal requires at least two lines", shared.ErrValidation)
	}
	var debit, credit money.Amount
	for idx, line := range in.Lines {
		if line.AccountCode == "" {
			return fmt.Errorf("%w: line %d missing account code", shared.ErrValidation, idx)
		}
		if line.Debit < 0 || line.Credit < 0 {
			return fmt.Errorf("%w: line %d negative amount", shared.ErrValidation, idx)
		}
		if (line.Debit > 0) == (line.Credit > 0) {
			return fmt.Errorf("%w: line %d must have exactly one of debit or credit", shared.ErrValidation, idx)
		}
		debit += line.Debit
		credit += line.Credit
	}
	if debit != credit {
		return fmt.Errorf("%w: debits %d != credits %d", shared.ErrUnbalanced, debit, credit)
	}
	return nil
}
