// Package billing manages invoices and payments, mirroring each business
// document into the ledger as a journal entry.
package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/meridian-bms/meridian-bms/internal/ledger/money"
)

// InvoiceStatus tracks the settlement state of an invoice.
type InvoiceStatus string

const (
	StatusIssued InvoiceStatus = "issued"
	StatusPaid   InvoiceStatus = "paid"
)

// Invoice is a receivable issued to a client. Amount is the net charge;
// TaxAmount and Total are derived once at issue time and stored.
type Invoice struct {
	ID         uuid.UUID     `json:"id"`
	ClientID   uuid.UUID     `json:"clientId"`
	Number     string        `json:"number"`
	Date       time.Time     `json:"date"`
	DueDate    time.Time     `json:"dueDate"`
	Amount     money.Amount  `json:"amount"`
	TaxPercent int           `json:"taxPercent"`
	TaxAmount  money.Amount  `json:"taxAmount"`
	Total      money.Amount  `json:"total"`
	Status     InvoiceStatus `json:"status"`
	EntryID    *int64        `json:"entryId,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// PaymentMethod selects the receiving asset account.
type PaymentMethod string

const (
	MethodCash PaymentMethod = "cash"
	MethodBank PaymentMethod = "bank"
)

// Payment settles part or all of an invoice.
type Payment struct {
	ID        uuid.UUID     `json:"id"`
	InvoiceID uuid.UUID     `json:"invoiceId"`
	Date      time.Time     `json:"date"`
	Amount    money.Amount  `json:"amount"`
	Method    PaymentMethod `json:"method"`
	EntryID   *int64        `json:"entryId,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// taxFor computes the flat tax in minor units, rounding half up.
func taxFor(amount money.Amount, percent int) money.Amount {
	if percent <= 0 {
		return 0
	}
	return (amount*money.Amount(percent) + 50) / 100
}
