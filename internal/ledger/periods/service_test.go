package periods

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

type memRepo struct {
	periods []Period
	nextID  int64
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1}
}

func (m *memRepo) Create(ctx context.Context, period Period) (Period, error) {
	period.ID = m.nextID
	m.nextID++
	m.periods = append(m.periods, period)
	return period, nil
}

func (m *memRepo) Get(ctx context.Context, id int64) (Period, error) {
	for _, p := range m.periods {
		if p.ID == id {
			return p, nil
		}
	}
	return Period{}, shared.ErrNotFound
}

func (m *memRepo) List(ctx context.Context) ([]Period, error) {
	return m.periods, nil
}

func (m *memRepo) SetLocked(ctx context.Context, id int64, locked bool) error {
	for i := range m.periods {
		if m.periods[i].ID == id {
			m.periods[i].Locked = locked
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memRepo) AnyLockedCovering(ctx context.Context, date time.Time) (bool, error) {
	for _, p := range m.periods {
		if p.Locked && !date.Before(p.Start) && !date.After(p.End) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) AnyOverlapping(ctx context.Context, start, end time.Time) (bool, error) {
	for _, p := range m.periods {
		if !p.Start.After(end) && !p.End.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateRejectsInvertedRange(t *testing.T) {
	svc := NewService(newMemRepo())
	_, err := svc.Create(context.Background(), CreateInput{
		Start: date(2026, time.February, 1),
		End:   date(2026, time.January, 1),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRejectsOverlap(t *testing.T) {
	svc := NewService(newMemRepo())
	_, err := svc.Create(context.Background(), CreateInput{
		Start: date(2026, time.January, 1),
		End:   date(2026, time.January, 31),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		Start: date(2026, time.January, 15),
		End:   date(2026, time.February, 15),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAssertNotLocked(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateInput{
		Start:  date(2026, time.January, 1),
		End:    date(2026, time.January, 31),
		Locked: true,
		Note:   "year-end close",
	})
	require.NoError(t, err)

	err = svc.AssertNotLocked(context.Background(), date(2026, time.January, 15))
	require.ErrorIs(t, err, shared.ErrPeriodLocked)

	// Outside the locked range posting is allowed.
	require.NoError(t, svc.AssertNotLocked(context.Background(), date(2026, time.February, 1)))

	// Unlocking reopens the range.
	unlocked, err := svc.SetLocked(context.Background(), created.ID, false)
	require.NoError(t, err)
	assert.False(t, unlocked.Locked)
	require.NoError(t, svc.AssertNotLocked(context.Background(), date(2026, time.January, 15)))
}

func TestAssertNotLockedBoundaryDates(t *testing.T) {
	svc := NewService(newMemRepo())
	_, err := svc.Create(context.Background(), CreateInput{
		Start:  date(2026, time.March, 1),
		End:    date(2026, time.March, 31),
		Locked: true,
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.AssertNotLocked(context.Background(), date(2026, time.March, 1)), shared.ErrPeriodLocked)
	require.ErrorIs(t, svc.AssertNotLocked(context.Background(), date(2026, time.March, 31)), shared.ErrPeriodLocked)
	require.NoError(t, svc.AssertNotLocked(context.Background(), date(2026, time.April, 1)))
}
