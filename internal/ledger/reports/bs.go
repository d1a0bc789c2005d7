package reports

import (
	"sort"

	"github.com/meridian-bms/meridian-bms/internal/ledger/accounts"
	"github.com/meridian-bms/meridian-bms/internal/ledger/money"
)

// BalanceSheetRow summarises one account as of the snapshot date.
type BalanceSheetRow struct {
	Code    string       `json:"code"`
	Name    string       `json:"name"`
	Balance money.Amount `json:"balance"`
}

// BalanceSheetSection contains the rows and total for a classification.
type BalanceSheetSection struct {
	Label string            `json:"label"`
	Rows  []BalanceSheetRow `json:"rows"`
	Total money.Amount      `json:"total"`
}

// BalanceSheet is a point-in-time snapshot. Period income is not rolled
// forward into retained earnings, so Balanced is a diagnostic flag, not a
// correctness guarantee; Note spells that out for report consumers.
type BalanceSheet struct {
	Assets      BalanceSheetSection `json:"assets"`
	Liabilities BalanceSheetSection `json:"liabilities"`
	Equity      BalanceSheetSection `json:"equity"`
	Balanced    bool                `json:"balanced"`
	Note        string              `json:"note"`
}

const balanceSheetNote = "Period income is not rolled into retained earnings; assets may differ from liabilities plus equity until closing entries are posted."

// BuildBalanceSheet classifies balances into assets (debit-normal) and
// liabilities/equity (credit-normal, reported as positive credit
// balances).
func BuildBalanceSheet(balances []AccountBalance) BalanceSheet {
	assets := BalanceSheetSection{Label: "Assets"}
	liabilities := BalanceSheetSection{Label: "Liabilities"}
	equity := BalanceSheetSection{Label: "Equity"}

	for _, acc := range balances {
		switch accounts.AccountType(acc.Type) {
		case accounts.AccountTypeAsset:
			row := BalanceSheetRow{Code: acc.Code, Name: acc.Name, Balance: acc.Net()}
			assets.Rows = append(assets.Rows, row)
			assets.Total += row.Balance
		case accounts.AccountTypeLiability:
			row := BalanceSheetRow{Code: acc.Code, Name: acc.Name, Balance: -acc.Net()}
			liabilities.Rows = append(liabilities.Rows, row)
			liabilities.Total += row.Balance
		case accounts.AccountTypeEquity:
			row := BalanceSheetRow{Code: acc.Code, Name: acc.Name, Balance: -acc.Net()}
			equity.Rows = append(equity.Rows, row)
			equity.Total += row.Balance
		}
	}

	for _, section := range []*BalanceSheetSection{&assets, &liabilities, &equity} {
		rows := section.Rows
		sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
	}

	return BalanceSheet{
		Assets:      assets,
		Liabilities: liabilities,
		Equity:      equity,
		Balanced:    assets.Total == liabilities.Total+equity.Total,
		Note:        balanceSheetNote,
	}
}
