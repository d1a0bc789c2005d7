package reports

import (
	"sort"

	"github.com/meridian-bms/meridian-bms/internal/ledger/accounts"
	"github.com/meridian-bms/meridian-bms/internal/ledger/money"
)

// IncomeStatementRow is a revenue or expense account summary.
type IncomeStatementRow struct {
	Code   string       `json:"code"`
	Name   string       `json:"name"`
	Amount money.Amount `json:"amount"`
}

// IncomeStatementSection groups rows by nature.
type IncomeStatementSection struct {
	Label string               `json:"label"`
	Rows  []IncomeStatementRow `json:"rows"`
	Total money.Amount         `json:"total"`
}

// IncomeStatement is the structured profit-and-loss output.
type IncomeStatement struct {
	Revenue   IncomeStatementSection `json:"revenue"`
	Expense   IncomeStatementSection `json:"expense"`
	NetIncome money.Amount           `json:"netIncome"`
}

// BuildIncomeStatement aggregates revenue as Σ(credit − debit) and
// expense as Σ(debit − credit) over the typed accounts.
func BuildIncomeStatement(balances []AccountBalance) IncomeStatement {
	revenue := IncomeStatementSection{Label: "Revenue"}
	expense := IncomeStatementSection{Label: "Expense"}

	for _, acc := range balances {
		switch accounts.AccountType(acc.Type) {
		case accounts.AccountTypeRevenue:
			row := IncomeStatementRow{Code: acc.Code, Name: acc.Name, Amount: -acc.Net()}
			revenue.Rows = append(revenue.Rows, row)
			revenue.Total += row.Amount
		case accounts.AccountTypeExpense:
			row := IncomeStatementRow{Code: acc.Code, Name: acc.Name, Amount: acc.Net()}
			expense.Rows = append(expense.Rows, row)
			expense.Total += row.Amount
		}
	}

	sort.Slice(revenue.Rows, func(i, j int) bool { return revenue.Rows[i].Code < revenue.Rows[j].Code })
	sort.Slice(expense.Rows, func(i, j int) bool { return expense.Rows[i].Code < expense.Rows[j].Code })

	return IncomeStatement{
		Revenue:   revenue,
		Expense:   expense,
		NetIncome: revenue.Total - expense.Total,
	}
}
