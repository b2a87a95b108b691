package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrMissingReference is returned for an entry without a transaction
	// reference id.
	ErrMissingReference = errors.New("ledger: entry has no transaction reference")

	// ErrOneSidedEntry is returned when an entry does not carry exactly one
	// non-zero side.
	ErrOneSidedEntry = errors.New("ledger: entry must have exactly one of debit or credit non-zero")

	// ErrNegativeAmount is returned for a negative debit or credit.
	ErrNegativeAmount = errors.New("ledger: entry amounts must not be negative")

	// ErrNoEntries is returned when a balance check receives nothing to check.
	ErrNoEntries = errors.New("ledger: no entries")

	// ErrMixedReferences is returned when entries under one balance check
	// reference different transactions.
	ErrMixedReferences = errors.New("ledger: entries reference different transactions")

	// ErrAlreadyPosted is returned when a transaction reference already has
	// ledger entries. Posting is idempotent: re-invoking never duplicates.
	ErrAlreadyPosted = errors.New("ledger: transaction already posted")

	// ErrUnknownKind is returned for a transaction kind outside the closed set.
	ErrUnknownKind = errors.New("ledger: unknown transaction kind")

	// ErrZeroAmount is returned when a transaction would post a zero value.
	ErrZeroAmount = errors.New("ledger: transaction amount must be positive")
)

// UnresolvedAccountError reports a chart position whose backing account could
// not be found. The posting engine emits no entries in that case; the
// transaction stays unposted rather than half-posted.
type UnresolvedAccountError struct {
	Position string
	Code     string
}

func (e *UnresolvedAccountError) Error() string {
	if e.Position != "" {
		return fmt.Sprintf("ledger: account for %s position (code %q) could not be resolved", e.Position, e.Code)
	}
	return fmt.Sprintf("ledger: account code %q could not be resolved", e.Code)
}

// UnbalancedPostingError reports a set of entries whose debit and credit
// totals diverge. It must abort the posting; the books never absorb an
// unbalanced set.
type UnbalancedPostingError struct {
	ReferenceID string
	Debits      decimal.Decimal
	Credits     decimal.Decimal
}

func (e *UnbalancedPostingError) Error() string {
	return fmt.Sprintf("ledger: unbalanced posting for %s: debits %s, credits %s",
		e.ReferenceID, e.Debits.StringFixed(2), e.Credits.StringFixed(2))
}
