// Package messaging enqueues outbound notifications as background tasks.
package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridian-bms/meridian-bms/jobs"
)

// Enqueuer submits mail tasks to the job queue.
type Enqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Notifier turns business events into queued emails. Delivery is
// asynchronous; enqueue failures are logged and never propagate to the
// triggering operation.
type Notifier struct {
	queue  Enqueuer
	logger *slog.Logger
}

func NewNotifier(queue Enqueuer, logger *slog.Logger) *Notifier {
	return &Notifier{queue: queue, logger: logger}
}

// InvoiceIssued notifies a client that an invoice was issued.
func (n *Notifier) InvoiceIssued(ctx context.Context, email, invoiceNumber, total string) {
	if n == nil || n.queue == nil || email == "" {
		return
	}
	payload := jobs.SendEmailPayload{
		To:      email,
		Subject: fmt.Sprintf("Invoice %s issued", invoiceNumber),
		Body:    fmt.Sprintf("Invoice %s for %s has been issued.", invoiceNumber, total),
	}
	if _, err := n.queue.EnqueueSendEmail(ctx, payload); err != nil {
		n.logger.Warn("enqueue invoice notification", slog.String("invoice", invoiceNumber), slog.Any("error", err))
	}
}

// PayrollCompleted notifies an employee that a payroll run posted.
func (n *Notifier) PayrollCompleted(ctx context.Context, email, period string) {
	if n == nil || n.queue == nil || email == "" {
		return
	}
	payload := jobs.SendEmailPayload{
		To:      email,
		Subject: fmt.Sprintf("Payroll for %s processed", period),
		Body:    fmt.Sprintf("Your salary for %s has been recorded.", period),
	}
	if _, err := n.queue.EnqueueSendEmail(ctx, payload); err != nil {
		n.logger.Warn("enqueue payroll notification", slog.String("period", period), slog.Any("error", err))
	}
}
