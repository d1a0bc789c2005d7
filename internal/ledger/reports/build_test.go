package reports

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-bms/meridian-bms/internal/ledger/money"
)

func row(day int, code string, debit, credit money.Amount) LedgerRow {
	return LedgerRow{
		Date:        time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		AccountCode: code,
		Debit:       debit,
		Credit:      credit,
	}
}

func TestBuildLedgerRunningBalance(t *testing.T) {
	ledger := BuildLedger([]LedgerRow{
		row(1, "1000", 50000, 0),
		row(2, "1000", 0, 20000),
		row(3, "1000", 10000, 0),
	})

	require.Len(t, ledger.Lines, 3)
	assert.Equal(t, money.Amount(50000), ledger.Lines[0].Balance)
	assert.Equal(t, money.Amount(30000), ledger.Lines[1].Balance)
	assert.Equal(t, money.Amount(40000), ledger.Lines[2].Balance)
	assert.Equal(t, money.Amount(60000), ledger.TotalDebit)
	assert.Equal(t, money.Amount(20000), ledger.TotalCredit)
	assert.Equal(t, money.Amount(40000), ledger.Closing)
}

func TestBuildLedgerEmpty(t *testing.T) {
	ledger := BuildLedger(nil)
	assert.Empty(t, ledger.Lines)
	assert.Zero(t, ledger.Closing)
}

func TestBuildTrialBalance(t *testing.T) {
	tb := BuildTrialBalance([]AccountBalance{
		{Code: "4000", Name: "Revenue", Type: "REVENUE", Debit: 0, Credit: 50000},
		{Code: "1000", Name: "Cash", Type: "ASSET", Debit: 50000, Credit: 0},
		{Code: "1010", Name: "Bank", Type: "ASSET"},
	})

	// Zero-movement accounts are skipped and rows come back sorted by code.
	require.Len(t, tb.Rows, 2)
	assert.Equal(t, "1000", tb.Rows[0].Code)
	assert.Equal(t, "4000", tb.Rows[1].Code)
	assert.Equal(t, money.Amount(50000), tb.TotalDebit)
	assert.Equal(t, money.Amount(50000), tb.TotalCredit)
	assert.True(t, tb.Balanced)
}

// Any sequence of balanced postings must produce a balanced trial balance.
func TestTrialBalanceNeverUnbalancedUnderRandomPostings(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	codes := []string{"1000", "1100", "2100", "4000", "5100"}

	totals := make(map[string]*AccountBalance, len(codes))
	for i, code := range codes {
		totals[code] = &AccountBalance{Code: code, Name: code, Type: []string{"ASSET", "ASSET", "LIABILITY", "REVENUE", "EXPENSE"}[i]}
	}

	for posting := 0; posting < 500; posting++ {
		amount := money.Amount(rng.Intn(1_000_000) + 1)
		debitAcc := codes[rng.Intn(len(codes))]
		creditAcc := codes[rng.Intn(len(codes))]
		totals[debitAcc].Debit += amount
		totals[creditAcc].Credit += amount
	}

	var balances []AccountBalance
	for _, b := range totals {
		balances = append(balances, *b)
	}
	tb := BuildTrialBalance(balances)
	assert.True(t, tb.Balanced, fmt.Sprintf("debits %d credits %d", tb.TotalDebit, tb.TotalCredit))
}

func TestBuildIncomeStatement(t *testing.T) {
	pl := BuildIncomeStatement([]AccountBalance{
		{Code: "4000", Name: "Revenue", Type: "REVENUE", Debit: 0, Credit: 50000},
		{Code: "5100", Name: "Salaries", Type: "EXPENSE", Debit: 30000, Credit: 0},
		{Code: "1000", Name: "Cash", Type: "ASSET", Debit: 50000, Credit: 30000},
	})

	require.Len(t, pl.Revenue.Rows, 1)
	assert.Equal(t, money.Amount(50000), pl.Revenue.Total)
	require.Len(t, pl.Expense.Rows, 1)
	assert.Equal(t, money.Amount(30000), pl.Expense.Total)
	assert.Equal(t, money.Amount(20000), pl.NetIncome)
}

func TestBuildBalanceSheet(t *testing.T) {
	bs := BuildBalanceSheet([]AccountBalance{
		{Code: "1000", Name: "Cash", Type: "ASSET", Debit: 80000, Credit: 10000},
		{Code: "2100", Name: "Payables", Type: "LIABILITY", Debit: 0, Credit: 40000},
		{Code: "3000", Name: "Capital", Type: "EQUITY", Debit: 0, Credit: 30000},
	})

	assert.Equal(t, money.Amount(70000), bs.Assets.Total)
	assert.Equal(t, money.Amount(40000), bs.Liabilities.Total)
	assert.Equal(t, money.Amount(30000), bs.Equity.Total)
	assert.True(t, bs.Balanced)
	assert.NotEmpty(t, bs.Note)
}

func TestBalanceSheetDiagnosticWhenIncomeNotClosed(t *testing.T) {
	// Revenue earned but not rolled into equity: assets exceed
	// liabilities plus equity and the flag surfaces it.
	bs := BuildBalanceSheet([]AccountBalance{
		{Code: "1000", Name: "Cash", Type: "ASSET", Debit: 50000, Credit: 0},
		{Code: "4000", Name: "Revenue", Type: "REVENUE", Debit: 0, Credit: 50000},
	})
	assert.False(t, bs.Balanced)
	assert.NotEmpty(t, bs.Note)
}
