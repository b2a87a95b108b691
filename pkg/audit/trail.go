// Package audit keeps a tamper-evident record of fiscal events. Every
// record carries the hash of its predecessor, so rewriting history breaks
// the chain at the altered record.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Action identifies the fiscal event being recorded.
type Action string

const (
	ActionIssued        Action = "document_issued"
	ActionPosted        Action = "entries_posted"
	ActionReversed      Action = "entries_reversed"
	ActionFingerprinted Action = "fingerprint_saved"
)

// Record is one link in the audit chain.
type Record struct {
	Timestamp    string `json:"timestamp"`
	PreviousHash string `json:"previous_hash"`
	Action       Action `json:"action"`
	SeriesPrefix string `json:"series_prefix,omitempty"`
	Number       uint64 `json:"number,omitempty"`
	ReferenceID  string `json:"reference_id"`
	Detail       string `json:"detail,omitempty"`
	Hash         string `json:"hash"`
}

func (r *Record) hashInput() string {
	return fmt.Sprintf("%s|%s|%s|%s|%d|%s|%s",
		r.PreviousHash, r.Timestamp, r.Action, r.SeriesPrefix, r.Number, r.ReferenceID, r.Detail)
}

func (r *Record) computeHash() string {
	sum := sha256.Sum256([]byte(r.hashInput()))
	return hex.EncodeToString(sum[:])
}

// Trail accumulates hash-chained records. Safe for concurrent use.
type Trail struct {
	mu           sync.Mutex
	previousHash string
	records      []*Record
	now          func() time.Time
}

// NewTrail creates an empty trail anchored at the zero hash.
func NewTrail() *Trail {
	return &Trail{
		previousHash: strings.Repeat("0", 64),
		now:          time.Now,
	}
}

// Append records a fiscal event and links it to the chain.
func (t *Trail) Append(action Action, seriesPrefix string, number uint64, referenceID, detail string) *Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	record := &Record{
		Timestamp:    t.now().UTC().Format(time.RFC3339),
		PreviousHash: t.previousHash,
		Action:       action,
		SeriesPrefix: seriesPrefix,
		Number:       number,
		ReferenceID:  referenceID,
		Detail:       detail,
	}
	record.Hash = record.computeHash()

	t.previousHash = record.Hash
	t.records = append(t.records, record)
	return record
}

// Records returns a snapshot of the chain in append order.
func (t *Trail) Records() []*Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Record, len(t.records))
	copy(out, t.records)
	return out
}

// Verify checks that records form an unbroken, untampered chain.
func Verify(records []*Record) bool {
	for i, record := range records {
		if i > 0 && record.PreviousHash != records[i-1].Hash {
			return false
		}
		if record.computeHash() != record.Hash {
			return false
		}
	}
	return true
}
