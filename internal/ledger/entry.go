package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one ledger row. Exactly one of Debit and Credit is non-zero.
// Entries are created only by the posting engine and are immutable once
// persisted; corrections are reversing entries, never edits. An entry
// references its transaction by weak id only — never a live object.
type Entry struct {
	ID          int64
	Date        time.Time
	AccountCode string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Module      string
	ReferenceID string
}

// Validate checks the one-sided invariant on a single row.
func (e *Entry) Validate() error {
	if e.ReferenceID == "" {
		return ErrMissingReference
	}
	if e.AccountCode == "" {
		return &UnresolvedAccountError{Code: ""}
	}
	debitSet := e.Debit.IsPositive()
	creditSet := e.Credit.IsPositive()
	if e.Debit.IsNegative() || e.Credit.IsNegative() {
		return ErrNegativeAmount
	}
	if debitSet == creditSet {
		return ErrOneSidedEntry
	}
	return nil
}

// SumSides totals the debit and credit columns of a set of entries.
func SumSides(entries []Entry) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range entries {
		debits = debits.Add(e.Debit)
		credits = credits.Add(e.Credit)
	}
	return debits, credits
}

// VerifyBalanced checks the double-entry invariant over a set of entries that
// share one transaction reference: total debits equal total credits and both
// are non-zero.
func VerifyBalanced(entries []Entry) error {
	if len(entries) == 0 {
		return ErrNoEntries
	}
	ref := entries[0].ReferenceID
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return err
		}
		if entries[i].ReferenceID != ref {
			return ErrMixedReferences
		}
	}
	debits, credits := SumSides(entries)
	if !debits.Equal(credits) || debits.IsZero() {
		return &UnbalancedPostingError{ReferenceID: ref, Debits: debits, Credits: credits}
	}
	return nil
}
