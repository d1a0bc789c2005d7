// Package shared holds the error taxonomy and entity identity types used
// across the accounting core.
package shared

import "errors"

var (
	// ErrValidation indicates malformed input (too few lines, bad amounts).
	ErrValidation = errors.New("ledger: validation failed")
	// ErrNotFound indicates an unknown account or record.
	ErrNotFound = errors.New("ledger: record not found")
	// ErrAlreadyExists indicates a duplicate account code.
	ErrAlreadyExists = errors.New("ledger: record already exists")
	// ErrUnbalanced indicates debits != credits on a journal entry.
	ErrUnbalanced = errors.New("ledger: journal lines must balance")
	// ErrPeriodLocked indicates the posting date falls in a locked period.
	ErrPeriodLocked = errors.New("ledger: period locked")
	// ErrConflict indicates a duplicate-code race that survived retry.
	ErrConflict = errors.New("ledger: code conflict")
	// ErrAccountInUse indicates the account already has posted lines.
	ErrAccountInUse = errors.New("ledger: account has posted lines")
	// ErrImmutable indicates an attempt to modify a posted journal entry.
	ErrImmutable = errors.New("ledger: journal entries are immutable")
)
