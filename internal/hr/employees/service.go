package employees

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-bms/meridian-bms/internal/ledger/accounts"
	"github.com/meridian-bms/meridian-bms/internal/ledger/journal"
	"github.com/meridian-bms/meridian-bms/internal/ledger/settings"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// AccountProvisioner ensures a subsidiary ledger account for an entity.
type AccountProvisioner interface {
	Ensure(ctx context.Context, entity shared.Entity, displayName string) (accounts.Account, error)
}

// JournalPort posts entries into the financial log.
type JournalPort interface {
	Post(ctx context.Context, input journal.PostingInput) (journal.JournalEntry, error)
}

// Notifier announces payroll completion to employees.
type Notifier interface {
	PayrollCompleted(ctx context.Context, email, period string)
}

// Service manages employees and payroll runs. Payroll posting is
// best-effort per employee: a failed posting is recorded in the run result
// and logged, and the remaining employees still process.
type Service struct {
	repo        Repository
	provisioner AccountProvisioner
	journal     JournalPort
	notifier    Notifier
	cfg         settings.Settings
	logger      *slog.Logger
}

func NewService(repo Repository, provisioner AccountProvisioner, journalPort JournalPort, notifier Notifier, cfg settings.Settings, logger *slog.Logger) *Service {
	return &Service{repo: repo, provisioner: provisioner, journal: journalPort, notifier: notifier, cfg: cfg, logger: logger}
}

// Create registers an employee and provisions its payable account.
func (s *Service) Create(ctx context.Context, name, email, position string, salary int64) (Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Employee{}, fmt.Errorf("%w: employee name required", shared.ErrValidation)
	}
	if salary < 0 {
		return Employee{}, fmt.Errorf("%w: salary cannot be negative", shared.ErrValidation)
	}
	employee := Employee{ID: uuid.New(), Name: name, Email: strings.TrimSpace(email), Position: position, Salary: salary}
	created, err := s.repo.Create(ctx, employee)
	if err != nil {
		return Employee{}, err
	}

	if s.provisioner != nil {
		entity := shared.Entity{Type: shared.EntityEmployee, ID: created.ID}
		if _, err := s.provisioner.Ensure(ctx, entity, created.Name); err != nil {
			s.logger.Warn("employee account provisioning deferred",
				slog.String("employee_id", created.ID.String()), slog.Any("error", err))
		}
	}
	return created, nil
}

// Get returns one employee.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Employee, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns employees matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Employee, error) {
	return s.repo.List(ctx, filter)
}

// Update applies partial changes to an employee.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Employee, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return Employee{}, fmt.Errorf("%w: employee name cannot be empty", shared.ErrValidation)
	}
	if in.Salary != nil && *in.Salary < 0 {
		return Employee{}, fmt.Errorf("%w: salary cannot be negative", shared.ErrValidation)
	}
	return s.repo.Update(ctx, id, in)
}

// Deactivate removes an employee from active payroll.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActive(ctx, id, false)
}

// RunPayroll posts one salary entry per active employee for the period:
// salary expense is debited, the employee's payable subsidiary is
// credited and tagged. Individual posting failures do not abort the run.
func (s *Service) RunPayroll(ctx context.Context, period string, payDate time.Time, actorID int64) (PayrollResult, error) {
	if strings.TrimSpace(period) == "" {
		return PayrollResult{}, fmt.Errorf("%w: payroll period required", shared.ErrValidation)
	}
	if payDate.IsZero() {
		return PayrollResult{}, fmt.Errorf("%w: pay date required", shared.ErrValidation)
	}

	active := true
	staff, err := s.repo.List(ctx, ListFilter{IsActive: &active})
	if err != nil {
		return PayrollResult{}, err
	}

	result := PayrollResult{Period: period}
	for _, employee := range staff {
		line := PayrollLine{EmployeeID: employee.ID, Name: employee.Name, Amount: employee.Salary}
		if employee.Salary == 0 {
			result.Lines = append(result.Lines, line)
			continue
		}

		entry, err := s.postSalary(ctx, employee, period, payDate, actorID)
		if err != nil {
			s.logger.Error("payroll posting failed",
				slog.String("employee_id", employee.ID.String()),
				slog.String("period", period),
				slog.Any("error", err))
			line.Error = err.Error()
			result.Failed++
		} else {
			line.EntryID = entry.ID
			result.Posted++
			if s.notifier != nil {
				s.notifier.PayrollCompleted(ctx, employee.Email, period)
			}
		}
		result.Lines = append(result.Lines, line)
	}
	return result, nil
}

func (s *Service) postSalary(ctx context.Context, employee Employee, period string, payDate time.Time, actorID int64) (journal.JournalEntry, error) {
	entity := shared.Entity{Type: shared.EntityEmployee, ID: employee.ID}
	payable, err := s.provisioner.Ensure(ctx, entity, employee.Name)
	if err != nil {
		return journal.JournalEntry{}, err
	}
	input := journal.PostingInput{
		Date:     payDate,
		Memo:     fmt.Sprintf("Salary %s for %s", period, employee.Name),
		PostedBy: actorID,
		Lines: []journal.LineInput{
			{AccountCode: s.cfg.SalaryExpenseAccount, Debit: employee.Salary},
			{AccountCode: payable.Code, Credit: employee.Salary, Entity: &entity},
		},
	}
	return s.journal.Post(ctx, input)
}
