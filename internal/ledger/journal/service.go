package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/meridian-bms/meridian-bms/internal/ledger/settings"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
	internalshared "github.com/meridian-bms/meridian-bms/internal/shared"
)

// PeriodGuard evaluates the period-lock predicate for a posting date.
type PeriodGuard interface {
	AssertNotLocked(ctx context.Context, date time.Time) error
}

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalshared.AuditLog) error
}

// Service validates and durably persists balanced journal entries. It is
// the single write path into the financial log.
type Service struct {
	repo  RepositoryPort
	guard PeriodGuard
	audit AuditPort
	cfg   settings.Settings
	now   func() time.Time
}

// NewService constructs the journal engine. The settings snapshot supplies
// the default currency; it is injected once, not re-read per call.
func NewService(repo RepositoryPort, guard PeriodGuard, audit AuditPort, cfg settings.Settings) *Service {
	return &Service{repo: repo, guard: guard, audit: audit, cfg: cfg, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Post validates the input, then resolves accounts, evaluates the period
// lock, and persists the entry header and all lines inside one
// transaction. Readers never observe a header without its lines.
func (s *Service) Post(ctx context.Context, input PostingInput) (JournalEntry, error) {
	return s.post(ctx, input, nil)
}

// Reverse creates a correcting entry for a posted original: every line's
// debit and credit are swapped and the new entry references the original
// via ReversalOf. The reversal runs through the full posting pipeline.
func (s *Service) Reverse(ctx context.Context, input ReverseInput) (JournalEntry, error) {
	if input.EntryID == 0 {
		return JournalEntry{}, fmt.Errorf("%w: entry id required", shared.ErrValidation)
	}
	original, err := s.repo.GetEntry(ctx, input.EntryID)
	if err != nil {
		return JournalEntry{}, err
	}

	memo := input.Memo
	if memo == "" {
		memo = fmt.Sprintf("Reversal of entry %d", original.ID)
	}
	posting := PostingInput{
		Date:     original.Date,
		Memo:     memo,
		Currency: original.Currency,
		PostedBy: input.ActorID,
		Lines:    reverseLines(original.Lines),
	}
	return s.post(ctx, posting, &original.ID)
}

func (s *Service) post(ctx context.Context, input PostingInput, reversalOf *int64) (JournalEntry, error) {
	if input.Currency == "" {
		input.Currency = s.cfg.BaseCurrency
	}
	if input.RefNo == "" {
		input.RefNo = "JE-" + ulid.Make().String()
	}
	if err := input.Validate(); err != nil {
		return JournalEntry{}, err
	}

	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		// Accounts resolve first, then the lock; an unknown code on a
		// locked date reports ErrNotFound.
		for _, line := range input.Lines {
			exists, err := tx.AccountExists(ctx, line.AccountCode)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: account %s", shared.ErrNotFound, line.AccountCode)
			}
		}
		if err := s.guard.AssertNotLocked(ctx, input.Date); err != nil {
			return err
		}
		inserted, err := tx.InsertEntry(ctx, input, reversalOf)
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, inserted.ID, input.Lines); err != nil {
			return err
		}
		entry, err = tx.GetEntryWithLines(ctx, inserted.ID)
		return err
	})
	if err != nil {
		return JournalEntry{}, err
	}

	if s.audit != nil {
		action := "journal.post"
		if reversalOf != nil {
			action = "journal.reverse"
		}
		meta := map[string]any{"ref_no": entry.RefNo, "lines": len(entry.Lines)}
		if reversalOf != nil {
			meta["reversal_of"] = *reversalOf
		}
		_ = s.audit.Record(ctx, internalshared.AuditLog{
			ActorID:  input.PostedBy,
			Action:   action,
			Entity:   "journal_entry",
			EntityID: fmt.Sprintf("%d", entry.ID),
			Meta:     meta,
			At:       s.now(),
		})
	}
	return entry, nil
}

// Get returns a posted entry with its lines.
func (s *Service) Get(ctx context.Context, entryID int64) (JournalEntry, error) {
	return s.repo.GetEntry(ctx, entryID)
}

// List returns recent entry headers, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]JournalEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListEntries(ctx, limit, offset)
}

func reverseLines(lines []JournalLine) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, LineInput{
			AccountCode: line.AccountCode,
			Debit:       line.Credit,
			Credit:      line.Debit,
			Entity:      line.Entity,
		})
	}
	return out
}
