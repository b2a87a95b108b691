// Package document tracks the lifecycle of issued fiscal documents. A
// document's sequence number is consumed at issuance and survives voiding;
// voiding reverses the ledger posting instead of deleting it.
package document

import (
	"fmt"
	"time"
)

// Status represents the lifecycle state of a fiscal document.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusIssued Status = "issued"
	StatusVoided Status = "voided" // terminal
)

// InvalidTransitionError reports a lifecycle move the state machine forbids.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("document: invalid status transition from %s to %s", e.From, e.To)
}

// allowedTransitions defines the valid lifecycle moves. Voided is terminal.
var allowedTransitions = map[Status][]Status{
	StatusDraft:  {StatusIssued},
	StatusIssued: {StatusVoided},
	StatusVoided: {},
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s Status) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a lifecycle move and returns the new status.
func Transition(from, to Status) (Status, error) {
	if !ValidStatus(from) || !ValidStatus(to) {
		return from, &InvalidTransitionError{From: from, To: to}
	}
	if !CanTransition(from, to) {
		return from, &InvalidTransitionError{From: from, To: to}
	}
	return to, nil
}

// Record is the lifecycle view of one issued document.
type Record struct {
	ID           int64
	SeriesPrefix string
	Number       uint64
	ReferenceID  string
	Status       Status
	Digest       string
	IssuedAt     time.Time
}

// Voidable reports whether the document can still be voided.
func (r *Record) Voidable() bool {
	return CanTransition(r.Status, StatusVoided)
}
