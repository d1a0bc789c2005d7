package reports

import "github.com/meridian-bms/meridian-bms/internal/ledger/money"

// GeneralLedgerLine is a ledger row plus the running balance up to and
// including that row.
type GeneralLedgerLine struct {
	LedgerRow
	Balance money.Amount `json:"balance"`
}

// Ledger is a chronological account (or entity) statement.
type Ledger struct {
	Lines       []GeneralLedgerLine `json:"lines"`
	TotalDebit  money.Amount        `json:"totalDebit"`
	TotalCredit money.Amount        `json:"totalCredit"`
	Closing     money.Amount        `json:"closing"`
}

// BuildLedger computes running balances Σ(debit − credit) over rows that
// must already be ordered by date then insertion order.
func BuildLedger(rows []LedgerRow) Ledger {
	ledger := Ledger{Lines: make([]GeneralLedgerLine, 0, len(rows))}
	var running money.Amount
	for _, row := range rows {
		running += row.Debit - row.Credit
		ledger.TotalDebit += row.Debit
		ledger.TotalCredit += row.Credit
		ledger.Lines = append(ledger.Lines, GeneralLedgerLine{LedgerRow: row, Balance: running})
	}
	ledger.Closing = running
	return ledger
}
