package reports

import (
	"sort"

	"github.com/meridian-bms/meridian-bms/internal/ledger/money"
)

// TrialBalanceRow summarises one account's movement over the window.
type TrialBalanceRow struct {
	Code   string       `json:"code"`
	Name   string       `json:"name"`
	Type   string       `json:"type"`
	Debit  money.Amount `json:"debit"`
	Credit money.Amount `json:"credit"`
	Net    money.Amount `json:"net"`
}

// TrialBalance aggregates debit/credit totals per account. Because the
// journal engine enforces per-entry balance, Balanced acts as a
// self-consistency regression check rather than a business decision point.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  money.Amount      `json:"totalDebit"`
	TotalCredit money.Amount      `json:"totalCredit"`
	Balanced    bool              `json:"balanced"`
}

// BuildTrialBalance folds account balances into trial balance rows
// ordered by code.
func BuildTrialBalance(accounts []AccountBalance) TrialBalance {
	tb := TrialBalance{Rows: make([]TrialBalanceRow, 0, len(accounts))}
	for _, acc := range accounts {
		if acc.Debit == 0 && acc.Credit == 0 {
			continue
		}
		tb.Rows = append(tb.Rows, TrialBalanceRow{
			Code:   acc.Code,
			Name:   acc.Name,
			Type:   acc.Type,
			Debit:  acc.Debit,
			Credit: acc.Credit,
			Net:    acc.Net(),
		})
		tb.TotalDebit += acc.Debit
		tb.TotalCredit += acc.Credit
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].Code < tb.Rows[j].Code })
	tb.Balanced = tb.TotalDebit == tb.TotalCredit
	return tb
}
