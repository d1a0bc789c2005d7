package journal

import (
	"time"

	"github.com/meridian-bms/meridian-bms/internal/ledger/money"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// JournalEntry is an immutable, balanced set of debit/credit lines posted
// on a date. Corrections are new entries referencing the original via
// ReversalOf, never in-place edits.
type JournalEntry struct {
	ID         int64         `json:"id"`
	Date       time.Time     `json:"date"`
	Memo       string        `json:"memo"`
	RefNo      string        `json:"refNo"`
	Currency   string        `json:"currency"`
	PostedBy   int64         `json:"postedBy"`
	PostedAt   time.Time     `json:"postedAt"`
	Adjusting  bool          `json:"adjusting"`
	ReversalOf *int64        `json:"reversalOf,omitempty"`
	Lines      []JournalLine `json:"lines"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// JournalLine holds a debit or credit amount in minor units against one
// account, optionally tagged with the business entity it concerns.
type JournalLine struct {
	ID          int64          `json:"id"`
	EntryID     int64          `json:"entryId"`
	AccountCode string         `json:"accountCode"`
	Debit       money.Amount   `json:"debit"`
	Credit      money.Amount   `json:"credit"`
	Entity      *shared.Entity `json:"entity,omitempty"`
}
