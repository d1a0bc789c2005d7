package periods

import (
	"context"
	"fmt"
	"time"

	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// Service maintains the lock registry and evaluates the lock predicate.
// Authorization for period CRUD is an external concern.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries fields for a new period record.
type CreateInput struct {
	Start  time.Time
	End    time.Time
	Locked bool
	Note   string
}

// Create registers a period. Overlapping ranges are rejected so a date
// never has ambiguous lock state.
func (s *Service) Create(ctx context.Context, input CreateInput) (Period, error) {
	if input.Start.IsZero() || input.End.IsZero() {
		return Period{}, fmt.Errorf("%w: period start and end required", shared.ErrValidation)
	}
	if input.End.Before(input.Start) {
		return Period{}, fmt.Errorf("%w: period end before start", shared.ErrValidation)
	}
	overlapping, err := s.repo.AnyOverlapping(ctx, input.Start, input.End)
	if err != nil {
		return Period{}, fmt.Errorf("check period overlap: %w", err)
	}
	if overlapping {
		return Period{}, fmt.Errorf("%w: period overlaps an existing range", shared.ErrValidation)
	}
	return s.repo.Create(ctx, Period{
		Start:  input.Start,
		End:    input.End,
		Locked: input.Locked,
		Note:   input.Note,
	})
}

// List returns all period records ordered by start date.
func (s *Service) List(ctx context.Context) ([]Period, error) {
	return s.repo.List(ctx)
}

// SetLocked flips the lock flag on a period.
func (s *Service) SetLocked(ctx context.Context, id int64, locked bool) (Period, error) {
	if err := s.repo.SetLocked(ctx, id, locked); err != nil {
		return Period{}, err
	}
	return s.repo.Get(ctx, id)
}

// AssertNotLocked fails with ErrPeriodLocked when any locked period covers
// the date. The check is optimistic: a lock applied concurrently with an
// in-flight post can land microseconds after the posting commits. That
// window is accepted policy; the nightly integrity job is the backstop.
func (s *Service) AssertNotLocked(ctx context.Context, date time.Time) error {
	locked, err := s.repo.AnyLockedCovering(ctx, date)
	if err != nil {
		return fmt.Errorf("evaluate period lock: %w", err)
	}
	if locked {
		return fmt.Errorf("%w: %s", shared.ErrPeriodLocked, date.Format("2006-01-02"))
	}
	return nil
}
