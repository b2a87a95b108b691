package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/example/fiscal-ledger/internal/document"
)

// Store is the persistence surface the issuing and voiding flows depend on.
// PostgresStore serves production; SQLiteStore serves development and tests.
//
// WithinTx runs fn against a transaction-scoped view of the same store.
// Every method called on that view joins the one database transaction; an
// error from fn rolls the whole unit back, so a document row never commits
// without its ledger entries.
type Store interface {
	AccountReader
	EntryWriter

	SeedAccount(ctx context.Context, code, name string, class Class) error
	EntriesByReference(ctx context.Context, referenceID string) ([]Entry, error)

	RecordDocument(ctx context.Context, seriesPrefix string, number uint64, referenceID string) (int64, error)
	LastNumber(ctx context.Context, seriesPrefix string) (uint64, error)
	SaveFingerprint(ctx context.Context, documentID int64, digest, payload string) error
	DocumentByNumber(ctx context.Context, seriesPrefix string, number uint64) (*document.Record, error)
	SetDocumentStatus(ctx context.Context, documentID int64, from, to document.Status) error

	AdjustStock(ctx context.Context, productID int64, delta decimal.Decimal, newCost *decimal.Decimal) error
	TrialBalance(ctx context.Context) ([]BalanceLine, error)

	WithinTx(ctx context.Context, fn func(Store) error) error
	Close() error
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
