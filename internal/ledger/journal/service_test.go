package journal

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-bms/meridian-bms/internal/ledger/settings"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
	internalshared "github.com/meridian-bms/meridian-bms/internal/shared"
)

// memRepo is an in-memory RepositoryPort. WithTx snapshots state before fn
// and restores it on error so rollback semantics hold.
type memRepo struct {
	mu       sync.Mutex
	accounts map[string]bool
	entries  map[int64]JournalEntry
	nextID   int64
}

func newMemRepo(accountCodes ...string) *memRepo {
	accounts := make(map[string]bool, len(accountCodes))
	for _, code := range accountCodes {
		accounts[code] = true
	}
	return &memRepo{accounts: accounts, entries: make(map[int64]JournalEntry), nextID: 1}
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make(map[int64]JournalEntry, len(m.entries))
	for id, e := range m.entries {
		snapshot[id] = e
	}
	snapshotNext := m.nextID
	if err := fn(ctx, (*memTx)(m)); err != nil {
		m.entries = snapshot
		m.nextID = snapshotNext
		return err
	}
	return nil
}

func (m *memRepo) GetEntry(ctx context.Context, entryID int64) (JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[entryID]
	if !ok {
		return JournalEntry{}, fmt.Errorf("%w: journal entry %d", shared.ErrNotFound, entryID)
	}
	return entry, nil
}

func (m *memRepo) ListEntries(ctx context.Context, limit, offset int) ([]JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []JournalEntry
	for id := m.nextID - 1; id >= 1 && len(out) < limit; id-- {
		if entry, ok := m.entries[id]; ok {
			out = append(out, entry)
		}
	}
	return out, nil
}

type memTx memRepo

func (m *memTx) AccountExists(ctx context.Context, code string) (bool, error) {
	return m.accounts[code], nil
}

func (m *memTx) InsertEntry(ctx context.Context, in PostingInput, reversalOf *int64) (JournalEntry, error) {
	entry := JournalEntry{
		ID:         m.nextID,
		Date:       in.Date,
		Memo:       in.Memo,
		RefNo:      in.RefNo,
		Currency:   in.Currency,
		PostedBy:   in.PostedBy,
		PostedAt:   time.Now(),
		Adjusting:  in.Adjusting,
		ReversalOf: reversalOf,
	}
	m.nextID++
	m.entries[entry.ID] = entry
	return entry, nil
}

func (m *memTx) InsertLines(ctx context.Context, entryID int64, lines []LineInput) error {
	entry := m.entries[entryID]
	for idx, line := range lines {
		entry.Lines = append(entry.Lines, JournalLine{
			ID:          int64(idx + 1),
			EntryID:     entryID,
			AccountCode: line.AccountCode,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Entity:      line.Entity,
		})
	}
	m.entries[entryID] = entry
	return nil
}

func (m *memTx) GetEntryWithLines(ctx context.Context, entryID int64) (JournalEntry, error) {
	entry, ok := m.entries[entryID]
	if !ok {
		return JournalEntry{}, fmt.Errorf("%w: journal entry %d", shared.ErrNotFound, entryID)
	}
	return entry, nil
}

type stubGuard struct {
	locked bool
}

func (g *stubGuard) AssertNotLocked(ctx context.Context, date time.Time) error {
	if g.locked {
		return fmt.Errorf("%w: %s", shared.ErrPeriodLocked, date.Format("2006-01-02"))
	}
	return nil
}

type recordingAudit struct {
	logs []internalshared.AuditLog
}

func (a *recordingAudit) Record(ctx context.Context, log internalshared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func testSettings() settings.Settings {
	cfg := settings.Defaults()
	return cfg
}

func newTestService(repo RepositoryPort, guard PeriodGuard) (*Service, *recordingAudit) {
	audit := &recordingAudit{}
	svc := NewService(repo, guard, audit, testSettings())
	return svc, audit
}

func TestPostBalancedEntry(t *testing.T) {
	repo := newMemRepo("1000", "4000")
	svc, audit := newTestService(repo, &stubGuard{})

	entry, err := svc.Post(context.Background(), PostingInput{
		Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Memo: "Cash sale",
		Lines: []LineInput{
			{AccountCode: "1000", Debit: 50000},
			{AccountCode: "4000", Credit: 50000},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.Len(t, entry.Lines, 2)
	assert.Equal(t, "USD", entry.Currency)
	require.NotEmpty(t, entry.RefNo)
	assert.Contains(t, entry.RefNo, "JE-")

	require.Len(t, audit.logs, 1)
	assert.Equal(t, "journal.post", audit.logs[0].Action)
}

func TestPostUnbalancedEntryRejected(t *testing.T) {
	repo := newMemRepo("1000", "4000")
	svc, _ := newTestService(repo, &stubGuard{})

	_, err := svc.Post(context.Background(), PostingInput{
		Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Lines: []LineInput{
			{AccountCode: "1000", Debit: 50000},
			{AccountCode: "4000", Credit: 40000},
		},
	})
	require.ErrorIs(t, err, shared.ErrUnbalanced)
	assert.Empty(t, repo.entries)
}

func TestPostRequiresTwoLines(t *testing.T) {
	repo := newMemRepo("1000")
	svc, _ := newTestService(repo, &stubGuard{})

	_, err := svc.Post(context.Background(), PostingInput{
		Date:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Lines: []LineInput{{AccountCode: "1000", Debit: 100}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestPostRejectsBothSidesSet(t *testing.T) {
	repo := newMemRepo("1000", "4000")
	svc, _ := newTestService(repo, &stubGuard{})

	_, err := svc.Post(context.Background(), PostingInput{
		Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Lines: []LineInput{
			{AccountCode: "1000", Debit: 100, Credit: 100},
			{AccountCode: "4000", Credit: 0},
		},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestPostUnknownAccountRollsBack(t *testing.T) {
	repo := newMemRepo("1000")
	svc, _ := newTestService(repo, &stubGuard{})

	_, err := svc.Post(context.Background(), PostingInput{
		Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Lines: []LineInput{
			{AccountCode: "1000", Debit: 100},
			{AccountCode: "9999", Credit: 100},
		},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, repo.entries)
}

func TestPostUnknownAccountOnLockedDate(t *testing.T) {
	repo := newMemRepo("1000")
	svc, _ := newTestService(repo, &stubGuard{locked: true})

	// Account resolution precedes the lock check.
	_, err := svc.Post(context.Background(), PostingInput{
		Date: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Lines: []LineInput{
			{AccountCode: "1000", Debit: 100},
			{AccountCode: "9999", Credit: 100},
		},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.NotErrorIs(t, err, shared.ErrPeriodLocked)
}

func TestPostLockedPeriodThenUnlock(t *testing.T) {
	repo := newMemRepo("1000", "4000")
	guard := &stubGuard{locked: true}
	svc, _ := newTestService(repo, guard)

	input := PostingInput{
		Date: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Lines: []LineInput{
			{AccountCode: "1000", Debit: 2500},
			{AccountCode: "4000", Credit: 2500},
		},
	}
	_, err := svc.Post(context.Background(), input)
	require.ErrorIs(t, err, shared.ErrPeriodLocked)

	guard.locked = false
	entry, err := svc.Post(context.Background(), input)
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
}

func TestReverseSwapsSides(t *testing.T) {
	repo := newMemRepo("1000", "4000")
	svc, audit := newTestService(repo, &stubGuard{})

	original, err := svc.Post(context.Background(), PostingInput{
		Date:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Memo:     "Cash sale",
		PostedBy: 7,
		Lines: []LineInput{
			{AccountCode: "1000", Debit: 50000},
			{AccountCode: "4000", Credit: 50000},
		},
	})
	require.NoError(t, err)

	reversal, err := svc.Reverse(context.Background(), ReverseInput{EntryID: original.ID, ActorID: 7})
	require.NoError(t, err)

	require.NotNil(t, reversal.ReversalOf)
	assert.Equal(t, original.ID, *reversal.ReversalOf)
	assert.Equal(t, fmt.Sprintf("Reversal of entry %d", original.ID), reversal.Memo)
	require.Len(t, reversal.Lines, 2)
	assert.Equal(t, original.Lines[0].Credit, reversal.Lines[0].Debit)
	assert.Equal(t, original.Lines[0].Debit, reversal.Lines[0].Credit)
	assert.Equal(t, original.Lines[1].Credit, reversal.Lines[1].Debit)
	assert.Equal(t, original.Lines[1].Debit, reversal.Lines[1].Credit)

	require.Len(t, audit.logs, 2)
	assert.Equal(t, "journal.reverse", audit.logs[1].Action)
}

func TestReverseMissingEntry(t *testing.T) {
	repo := newMemRepo("1000")
	svc, _ := newTestService(repo, &stubGuard{})

	_, err := svc.Reverse(context.Background(), ReverseInput{EntryID: 42})
	require.ErrorIs(t, err, shared.ErrNotFound)
}
