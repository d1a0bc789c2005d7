package reports

import (
	"time"

	"github.com/meridian-bms/meridian-bms/internal/ledger/money"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// AccountBalance is the per-account aggregation all reports fold over.
// Amounts are integer minor units summed from posted journal lines;
// nothing here is ever stored.
type AccountBalance struct {
	Code   string
	Name   string
	Type   string
	Debit  money.Amount
	Credit money.Amount
}

// Net returns the debit-normal balance Σ(debit − credit).
func (a AccountBalance) Net() money.Amount {
	return a.Debit - a.Credit
}

// LedgerRow is one journal line in a ledger view, joined with its entry
// header and ordered by date then insertion order.
type LedgerRow struct {
	EntryID     int64          `json:"entryId"`
	LineID      int64          `json:"lineId"`
	Date        time.Time      `json:"date"`
	Memo        string         `json:"memo"`
	RefNo       string         `json:"refNo"`
	AccountCode string         `json:"accountCode"`
	Debit       money.Amount   `json:"debit"`
	Credit      money.Amount   `json:"credit"`
	Entity      *shared.Entity `json:"entity,omitempty"`
}

// Window bounds a report; zero times mean unbounded.
type Window struct {
	From time.Time
	To   time.Time
}
