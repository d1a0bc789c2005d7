// Package employees manages the staff registry and payroll runs.
package employees

import (
	"time"

	"github.com/google/uuid"

	"github.com/meridian-bms/meridian-bms/internal/ledger/money"
)

// Employee is a staff member with a monthly salary in minor units.
type Employee struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email,omitempty"`
	Position  string       `json:"position,omitempty"`
	Salary    money.Amount `json:"salary"`
	IsActive  bool         `json:"isActive"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ListFilter narrows employee listings.
type ListFilter struct {
	Search   string
	IsActive *bool
}

// UpdateInput carries optional field updates.
type UpdateInput struct {
	Name     *string
	Email    *string
	Position *string
	Salary   *money.Amount
}

// PayrollLine reports the outcome for one employee in a payroll run.
type PayrollLine struct {
	EmployeeID uuid.UUID    `json:"employeeId"`
	Name       string       `json:"name"`
	Amount     money.Amount `json:"amount"`
	EntryID    int64        `json:"entryId,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// PayrollResult summarises a payroll run.
type PayrollResult struct {
	Period string        `json:"period"`
	Lines  []PayrollLine `json:"lines"`
	Posted int           `json:"posted"`
	Failed int           `json:"failed"`
}
