package employees

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-bms/meridian-bms/internal/ledger/accounts"
	"github.com/meridian-bms/meridian-bms/internal/ledger/journal"
	"github.com/meridian-bms/meridian-bms/internal/ledger/money"
	"github.com/meridian-bms/meridian-bms/internal/ledger/settings"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

type memRepo struct {
	employees map[uuid.UUID]Employee
}

func newMemRepo() *memRepo {
	return &memRepo{employees: make(map[uuid.UUID]Employee)}
}

func (m *memRepo) Create(ctx context.Context, employee Employee) (Employee, error) {
	employee.IsActive = true
	m.employees[employee.ID] = employee
	return employee, nil
}

func (m *memRepo) GetByID(ctx context.Context, id uuid.UUID) (Employee, error) {
	employee, ok := m.employees[id]
	if !ok {
		return Employee{}, fmt.Errorf("%w: employee %s", shared.ErrNotFound, id)
	}
	return employee, nil
}

func (m *memRepo) List(ctx context.Context, filter ListFilter) ([]Employee, error) {
	var out []Employee
	for _, employee := range m.employees {
		if filter.IsActive != nil && employee.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, employee)
	}
	return out, nil
}

func (m *memRepo) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Employee, error) {
	employee, ok := m.employees[id]
	if !ok {
		return Employee{}, fmt.Errorf("%w: employee %s", shared.ErrNotFound, id)
	}
	if in.Name != nil {
		employee.Name = *in.Name
	}
	if in.Salary != nil {
		employee.Salary = *in.Salary
	}
	m.employees[id] = employee
	return employee, nil
}

func (m *memRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	employee, ok := m.employees[id]
	if !ok {
		return fmt.Errorf("%w: employee %s", shared.ErrNotFound, id)
	}
	employee.IsActive = active
	m.employees[id] = employee
	return nil
}

type stubProvisioner struct{}

func (s *stubProvisioner) Ensure(ctx context.Context, entity shared.Entity, displayName string) (accounts.Account, error) {
	return accounts.Account{Code: "2200-" + entity.CodeSuffix(), Name: displayName, Type: accounts.AccountTypeLiability}, nil
}

type stubJournal struct {
	failFor map[uuid.UUID]error
	nextID  int64
	inputs  []journal.PostingInput
}

func (s *stubJournal) Post(ctx context.Context, input journal.PostingInput) (journal.JournalEntry, error) {
	for _, line := range input.Lines {
		if line.Entity != nil {
			if err, ok := s.failFor[line.Entity.ID]; ok {
				return journal.JournalEntry{}, err
			}
		}
	}
	s.nextID++
	s.inputs = append(s.inputs, input)
	return journal.JournalEntry{ID: s.nextID, Date: input.Date, Memo: input.Memo}, nil
}

type stubNotifier struct {
	notified []string
}

func (s *stubNotifier) PayrollCompleted(ctx context.Context, email, period string) {
	s.notified = append(s.notified, email)
}

func newTestService(repo Repository, jrnl JournalPort, notifier Notifier) *Service {
	return NewService(repo, &stubProvisioner{}, jrnl, notifier, settings.Defaults(), slog.New(slog.DiscardHandler))
}

func TestRunPayrollPostsPerEmployee(t *testing.T) {
	repo := newMemRepo()
	jrnl := &stubJournal{}
	notifier := &stubNotifier{}
	svc := newTestService(repo, jrnl, notifier)

	_, err := svc.Create(context.Background(), "Jordan Lee", "jordan@meridian.test", "Engineer", 500000)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "Sam Reyes", "sam@meridian.test", "Designer", 400000)
	require.NoError(t, err)

	result, err := svc.RunPayroll(context.Background(), "2026-03", time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), 9)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Posted)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, jrnl.inputs, 2)
	assert.Len(t, notifier.notified, 2)

	for _, input := range jrnl.inputs {
		require.Len(t, input.Lines, 2)
		assert.Equal(t, "5100", input.Lines[0].AccountCode)
		assert.Equal(t, input.Lines[0].Debit, input.Lines[1].Credit)
		require.NotNil(t, input.Lines[1].Entity)
		assert.Equal(t, shared.EntityEmployee, input.Lines[1].Entity.Type)
		assert.Equal(t, int64(9), input.PostedBy)
	}
}

func TestRunPayrollContinuesAfterFailure(t *testing.T) {
	repo := newMemRepo()
	jrnl := &stubJournal{failFor: map[uuid.UUID]error{}}
	svc := newTestService(repo, jrnl, &stubNotifier{})

	broken, err := svc.Create(context.Background(), "Jordan Lee", "", "Engineer", 500000)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "Sam Reyes", "", "Designer", 400000)
	require.NoError(t, err)
	jrnl.failFor[broken.ID] = errors.New("period locked")

	result, err := svc.RunPayroll(context.Background(), "2026-03", time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Posted)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Lines, 2)

	var failedLine *PayrollLine
	for i := range result.Lines {
		if result.Lines[i].EmployeeID == broken.ID {
			failedLine = &result.Lines[i]
		}
	}
	require.NotNil(t, failedLine)
	assert.Contains(t, failedLine.Error, "period locked")
	assert.Zero(t, failedLine.EntryID)
}

func TestRunPayrollSkipsZeroSalary(t *testing.T) {
	repo := newMemRepo()
	jrnl := &stubJournal{}
	svc := newTestService(repo, jrnl, &stubNotifier{})

	_, err := svc.Create(context.Background(), "Unpaid Intern", "", "Intern", 0)
	require.NoError(t, err)

	result, err := svc.RunPayroll(context.Background(), "2026-03", time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Posted)
	assert.Empty(t, jrnl.inputs)
	require.Len(t, result.Lines, 1)
	assert.Equal(t, money.Amount(0), result.Lines[0].Amount)
}

func TestRunPayrollValidation(t *testing.T) {
	svc := newTestService(newMemRepo(), &stubJournal{}, &stubNotifier{})

	_, err := svc.RunPayroll(context.Background(), "", time.Now(), 1)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.RunPayroll(context.Background(), "2026-03", time.Time{}, 1)
	require.ErrorIs(t, err, shared.ErrValidation)
}
