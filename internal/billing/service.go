package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/meridian-bms/meridian-bms/internal/crm/clients"
	"github.com/meridian-bms/meridian-bms/internal/ledger/accounts"
	"github.com/meridian-bms/meridian-bms/internal/ledger/journal"
	"github.com/meridian-bms/meridian-bms/internal/ledger/money"
	"github.com/meridian-bms/meridian-bms/internal/ledger/settings"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// ClientDirectory resolves clients for invoicing.
type ClientDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (clients.Client, error)
}

// AccountProvisioner ensures a subsidiary ledger account for an entity.
type AccountProvisioner interface {
	Ensure(ctx context.Context, entity shared.Entity, displayName string) (accounts.Account, error)
}

// JournalPort posts entries into the financial log.
type JournalPort interface {
	Post(ctx context.Context, input journal.PostingInput) (journal.JournalEntry, error)
}

// Notifier announces invoice events to clients.
type Notifier interface {
	InvoiceIssued(ctx context.Context, email, invoiceNumber, total string)
}

// IssueInput describes a new invoice.
type IssueInput struct {
	ClientID   uuid.UUID
	Date       time.Time
	DueDate    time.Time
	Amount     money.Amount
	TaxPercent int
}

// PaymentInput describes an incoming payment.
type PaymentInput struct {
	InvoiceID uuid.UUID
	Date      time.Time
	Amount    money.Amount
	Method    PaymentMethod
}

// Service issues invoices and records payments. The business document is
// the source of truth: it commits first, and the mirroring journal entry
// is posted best-effort afterwards. A posting failure is logged with the
// document id and never rolls the document back; the entry can be
// re-posted during reconciliation.
type Service struct {
	repo        Repository
	directory   ClientDirectory
	provisioner AccountProvisioner
	journal     JournalPort
	notifier    Notifier
	cfg         settings.Settings
	logger      *slog.Logger
}

func NewService(repo Repository, directory ClientDirectory, provisioner AccountProvisioner, journalPort JournalPort, notifier Notifier, cfg settings.Settings, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		directory:   directory,
		provisioner: provisioner,
		journal:     journalPort,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
	}
}

// IssueInvoice creates an invoice and posts the receivable entry: the
// client's AR subsidiary is debited for the total and revenue credited.
func (s *Service) IssueInvoice(ctx context.Context, in IssueInput, actorID int64) (Invoice, error) {
	if in.Amount <= 0 {
		return Invoice{}, fmt.Errorf("%w: invoice amount must be positive", shared.ErrValidation)
	}
	if in.TaxPercent < 0 || in.TaxPercent > 100 {
		return Invoice{}, fmt.Errorf("%w: tax percent out of range", shared.ErrValidation)
	}
	if in.Date.IsZero() {
		return Invoice{}, fmt.Errorf("%w: invoice date required", shared.ErrValidation)
	}
	client, err := s.directory.Get(ctx, in.ClientID)
	if err != nil {
		return Invoice{}, err
	}

	tax := taxFor(in.Amount, in.TaxPercent)
	invoice := Invoice{
		ID:         uuid.New(),
		ClientID:   client.ID,
		Number:     "INV-" + ulid.Make().String(),
		Date:       in.Date,
		DueDate:    in.DueDate,
		Amount:     in.Amount,
		TaxPercent: in.TaxPercent,
		TaxAmount:  tax,
		Total:      in.Amount + tax,
		Status:     StatusIssued,
	}
	created, err := s.repo.CreateInvoice(ctx, invoice)
	if err != nil {
		return Invoice{}, err
	}

	if entryID, err := s.postInvoiceEntry(ctx, created, client, actorID); err != nil {
		s.logger.Error("invoice journal posting failed",
			slog.String("invoice_id", created.ID.String()),
			slog.String("number", created.Number),
			slog.Any("error", err))
	} else {
		created.EntryID = &entryID
		if err := s.repo.SetInvoiceEntry(ctx, created.ID, entryID); err != nil {
			s.logger.Warn("record invoice entry id", slog.String("invoice_id", created.ID.String()), slog.Any("error", err))
		}
	}

	if s.notifier != nil {
		s.notifier.InvoiceIssued(ctx, client.Email, created.Number, money.String(created.Total, s.cfg.CurrencyExponent))
	}
	return created, nil
}

// GetInvoice returns one invoice.
func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

// ListInvoices returns invoices, optionally for one client.
func (s *Service) ListInvoices(ctx context.Context, clientID *uuid.UUID) ([]Invoice, error) {
	return s.repo.ListInvoices(ctx, clientID)
}

// RecordPayment registers a payment against an invoice and posts the
// settlement entry: cash or bank is debited, the client's AR subsidiary
// credited. The invoice flips to paid once payments cover the total.
func (s *Service) RecordPayment(ctx context.Context, in PaymentInput, actorID int64) (Payment, error) {
	if in.Amount <= 0 {
		return Payment{}, fmt.Errorf("%w: payment amount must be positive", shared.ErrValidation)
	}
	if in.Method != MethodCash && in.Method != MethodBank {
		return Payment{}, fmt.Errorf("%w: unknown payment method %q", shared.ErrValidation, in.Method)
	}
	if in.Date.IsZero() {
		return Payment{}, fmt.Errorf("%w: payment date required", shared.ErrValidation)
	}
	invoice, err := s.repo.GetInvoice(ctx, in.InvoiceID)
	if err != nil {
		return Payment{}, err
	}

	payment := Payment{
		ID:        uuid.New(),
		InvoiceID: invoice.ID,
		Date:      in.Date,
		Amount:    in.Amount,
		Method:    in.Method,
	}
	created, err := s.repo.CreatePayment(ctx, payment)
	if err != nil {
		return Payment{}, err
	}

	if entryID, err := s.postPaymentEntry(ctx, invoice, created, actorID); err != nil {
		s.logger.Error("payment journal posting failed",
			slog.String("payment_id", created.ID.String()),
			slog.String("invoice_id", invoice.ID.String()),
			slog.Any("error", err))
	} else {
		created.EntryID = &entryID
		if err := s.repo.SetPaymentEntry(ctx, created.ID, entryID); err != nil {
			s.logger.Warn("record payment entry id", slog.String("payment_id", created.ID.String()), slog.Any("error", err))
		}
	}

	settled, err := s.repo.PaymentsTotal(ctx, invoice.ID)
	if err != nil {
		s.logger.Warn("payments total", slog.String("invoice_id", invoice.ID.String()), slog.Any("error", err))
		return created, nil
	}
	if settled >= invoice.Total && invoice.Status != StatusPaid {
		if err := s.repo.SetInvoiceStatus(ctx, invoice.ID, StatusPaid); err != nil {
			s.logger.Warn("mark invoice paid", slog.String("invoice_id", invoice.ID.String()), slog.Any("error", err))
		}
	}
	return created, nil
}

// ListPayments returns an invoice's payments.
func (s *Service) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error) {
	if _, err := s.repo.GetInvoice(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, invoiceID)
}

func (s *Service) postInvoiceEntry(ctx context.Context, invoice Invoice, client clients.Client, actorID int64) (int64, error) {
	entity := shared.Entity{Type: shared.EntityClient, ID: client.ID}
	receivable, err := s.provisioner.Ensure(ctx, entity, client.Name)
	if err != nil {
		return 0, err
	}
	input := journal.PostingInput{
		Date:     invoice.Date,
		Memo:     fmt.Sprintf("Invoice %s for %s", invoice.Number, client.Name),
		RefNo:    invoice.Number,
		PostedBy: actorID,
		Lines: []journal.LineInput{
			{AccountCode: receivable.Code, Debit: invoice.Total, Entity: &entity},
			{AccountCode: s.cfg.RevenueAccount, Credit: invoice.Total},
		},
	}
	entry, err := s.journal.Post(ctx, input)
	if err != nil {
		return 0, err
	}
	return entry.ID, nil
}

func (s *Service) postPaymentEntry(ctx context.Context, invoice Invoice, payment Payment, actorID int64) (int64, error) {
	client, err := s.directory.Get(ctx, invoice.ClientID)
	if err != nil {
		return 0, err
	}
	entity := shared.Entity{Type: shared.EntityClient, ID: client.ID}
	receivable, err := s.provisioner.Ensure(ctx, entity, client.Name)
	if err != nil {
		return 0, err
	}
	asset := s.cfg.CashAccount
	if payment.Method == MethodBank {
		asset = s.cfg.BankAccount
	}
	input := journal.PostingInput{
		Date:     payment.Date,
		Memo:     fmt.Sprintf("Payment for invoice %s", invoice.Number),
		PostedBy: actorID,
		Lines: []journal.LineInput{
			{AccountCode: asset, Debit: payment.Amount},
			{AccountCode: receivable.Code, Credit: payment.Amount, Entity: &entity},
		},
	}
	entry, err := s.journal.Post(ctx, input)
	if err != nil {
		return 0, err
	}
	return entry.ID, nil
}
