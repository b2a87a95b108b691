// Package sequence allocates document numbers for a series against the
// numeric range its regulator authorized.
//
// The allocator itself is pure: it derives the next number from the last one
// issued. Correctness under concurrency is the caller's obligation — the
// read-last/compute/insert cycle must run as one serializable unit against
// the store, or duplicate numbers can be issued.
package sequence

import (
	"fmt"
)

// RangeExhaustedError is returned when a series has no authorized numbers
// left. It is fatal to the transaction: the allocator never wraps or reuses a
// number.
type RangeExhaustedError struct {
	Prefix string
	High   uint64
}

func (e *RangeExhaustedError) Error() string {
	return fmt.Sprintf("sequence: series %s exhausted its authorized range (high %d)", e.Prefix, e.High)
}

// Allocator issues numbers for one series within the inclusive range
// [Low, High].
type Allocator struct {
	Prefix string
	Low    uint64
	High   uint64
}

// NewAllocator validates the range and builds an allocator.
func NewAllocator(prefix string, low, high uint64) (*Allocator, error) {
	if prefix == "" {
		return nil, fmt.Errorf("sequence: series prefix is required")
	}
	if low == 0 || high < low {
		return nil, fmt.Errorf("sequence: invalid authorized range [%d, %d] for series %s", low, high, prefix)
	}
	return &Allocator{Prefix: prefix, Low: low, High: high}, nil
}

// Next returns the number following last. A candidate below the range's low
// bound is raised to it; a candidate past the high bound fails with
// RangeExhaustedError. Numbers are never reused, even for transactions later
// voided.
func (a *Allocator) Next(last uint64) (uint64, error) {
	if last >= a.High {
		return 0, &RangeExhaustedError{Prefix: a.Prefix, High: a.High}
	}
	candidate := last + 1
	if candidate < a.Low {
		candidate = a.Low
	}
	if candidate > a.High {
		return 0, &RangeExhaustedError{Prefix: a.Prefix, High: a.High}
	}
	return candidate, nil
}

// Remaining reports how many numbers the series can still issue after last.
func (a *Allocator) Remaining(last uint64) uint64 {
	if last < a.Low {
		last = a.Low - 1
	}
	if last >= a.High {
		return 0
	}
	return a.High - last
}

// RunningLow reports whether fewer than threshold numbers remain. Useful for
// surfacing a warning before the range hard-stops issuance.
func (a *Allocator) RunningLow(last, threshold uint64) bool {
	return a.Remaining(last) < threshold
}

// Format renders a full document number with its series prefix.
func (a *Allocator) Format(number uint64) string {
	return fmt.Sprintf("%s%d", a.Prefix, number)
}
