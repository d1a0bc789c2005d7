package settings

import "time"

// Settings is the singleton accounting configuration row. It is created
// lazily with defaults on first read and injected into the journal engine
// and provisioner at construction time.
type Settings struct {
	BaseCurrency         string `json:"baseCurrency"`
	CurrencyExponent     int    `json:"currencyExponent"`
	FiscalYearStartMonth int    `json:"fiscalYearStartMonth"`

	CashAccount          string `json:"cashAccount"`
	BankAccount          string `json:"bankAccount"`
	ARParent             string `json:"arParent"`
	APParent             string `json:"apParent"`
	SalaryExpenseAccount string `json:"salaryExpenseAccount"`
	SalaryPayableParent  string `json:"salaryPayableParent"`
	RevenueAccount       string `json:"revenueAccount"`

	BrandName       string `json:"brandName"`
	StatementFooter string `json:"statementFooter"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Defaults returns the row inserted on first read.
func Defaults() Settings {
	return Settings{
		BaseCurrency:         "USD",
		CurrencyExponent:     2,
		FiscalYearStartMonth: 1,
		CashAccount:          "1000",
		BankAccount:          "1010",
		ARParent:             "1100",
		APParent:             "2100",
		SalaryExpenseAccount: "5100",
		SalaryPayableParent:  "2200",
		RevenueAccount:       "4000",
		BrandName:            "Meridian",
		StatementFooter:      "",
	}
}

// UpdateInput carries the recognized patchable fields; nil means keep.
// Referenced account codes are not cross-checked against the chart of
// accounts; callers must not rely on that silently.
type UpdateInput struct {
	BaseCurrency         *string `json:"baseCurrency"`
	FiscalYearStartMonth *int    `json:"fiscalYearStartMonth"`
	CashAccount          *string `json:"cashAccount"`
	BankAccount          *string `json:"bankAccount"`
	ARParent             *string `json:"arParent"`
	APParent             *string `json:"apParent"`
	SalaryExpenseAccount *string `json:"salaryExpenseAccount"`
	SalaryPayableParent  *string `json:"salaryPayableParent"`
	RevenueAccount       *string `json:"revenueAccount"`
	BrandName            *string `json:"brandName"`
	StatementFooter      *string `json:"statementFooter"`
}
