package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/example/fiscal-ledger/internal/document"
	"github.com/example/fiscal-ledger/internal/logger"
)

// pgQuerier is the query surface shared by *pgxpool.Pool and pgx.Tx, so
// every store method can run either standalone or inside a WithinTx scope.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store over a pgx pool. Transaction scopes run
// under SERIALIZABLE isolation with retry on serialization failure, so that
// a document, its fingerprint and its posting commit as one unit. A non-nil
// tx marks a transaction-scoped view created by WithinTx.
type PostgresStore struct {
	Pool *pgxpool.Pool
	tx   pgx.Tx
	log  zerolog.Logger
}

// NewPostgresStore wraps a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		Pool: pool,
		log:  logger.WithComponent("ledger.postgres"),
	}
}

func (ps *PostgresStore) q() pgQuerier {
	if ps.tx != nil {
		return ps.tx
	}
	return ps.Pool
}

// WithinTx runs fn against a SERIALIZABLE transaction scope, retrying the
// whole scope on serialization failure (SQLSTATE 40001). fn must therefore
// be safe to re-run. Nested calls join the enclosing transaction.
func (ps *PostgresStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if ps.tx != nil {
		return fn(ps)
	}

	const maxRetries = 3
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = ps.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "40001" {
			// Serialization failure, retry
			time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
			continue
		}
		return err
	}
	return fmt.Errorf("transaction failed after %d retries due to serialization failure: %w", maxRetries, err)
}

func (ps *PostgresStore) runTx(ctx context.Context, fn func(Store) error) error {
	tx, err := ps.Pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	scoped := &PostgresStore{Pool: ps.Pool, tx: tx, log: ps.log}
	if err := fn(scoped); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SeedAccount inserts a chart account, ignoring duplicates.
func (ps *PostgresStore) SeedAccount(ctx context.Context, code, name string, class Class) error {
	if !ValidClass(class) {
		return fmt.Errorf("invalid account class %q", class)
	}
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := ps.q().Exec(queryCtx, `
		INSERT INTO accounts (code, name, class)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO NOTHING
	`, code, name, string(class))
	if err != nil {
		return fmt.Errorf("failed to seed account %s: %w", code, err)
	}
	return nil
}

// AccountByCode resolves a chart account. A missing code returns (nil, nil)
// so the engine can distinguish absence from infrastructure failure.
func (ps *PostgresStore) AccountByCode(ctx context.Context, code string) (*Account, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var account Account
	err := ps.q().QueryRow(queryCtx, `
		SELECT id, code, name, class
		FROM accounts
		WHERE code = $1
	`, code).Scan(&account.ID, &account.Code, &account.Name, &account.Class)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account %s: %w", code, err)
	}
	return &account, nil
}

// HasEntries reports whether any ledger rows exist for a transaction
// reference.
func (ps *PostgresStore) HasEntries(ctx context.Context, referenceID string) (bool, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	err := ps.q().QueryRow(queryCtx,
		"SELECT EXISTS(SELECT 1 FROM ledger_entries WHERE reference_id = $1)",
		referenceID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check entries for %s: %w", referenceID, err)
	}
	return exists, nil
}

// AppendEntries inserts a balanced entry set atomically. Standalone calls
// open their own SERIALIZABLE transaction; calls inside WithinTx join the
// enclosing one.
func (ps *PostgresStore) AppendEntries(ctx context.Context, entries []Entry) error {
	if err := VerifyBalanced(entries); err != nil {
		return err
	}
	err := ps.WithinTx(ctx, func(s Store) error {
		return s.(*PostgresStore).appendEntries(ctx, entries)
	})
	if err != nil {
		return err
	}

	ps.log.Debug().
		Str("reference_id", entries[0].ReferenceID).
		Str("module", entries[0].Module).
		Int("entries", len(entries)).
		Msg("posted ledger entries")
	return nil
}

func (ps *PostgresStore) appendEntries(ctx context.Context, entries []Entry) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	err := ps.q().QueryRow(queryCtx,
		"SELECT EXISTS(SELECT 1 FROM ledger_entries WHERE reference_id = $1 FOR UPDATE)",
		entries[0].ReferenceID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to re-check prior postings: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAlreadyPosted, entries[0].ReferenceID)
	}

	for _, e := range entries {
		_, err = ps.q().Exec(queryCtx, `
			INSERT INTO ledger_entries (entry_date, account_code, description, debit, credit, module, reference_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, e.Date, e.AccountCode, e.Description, e.Debit.StringFixed(2), e.Credit.StringFixed(2), e.Module, e.ReferenceID)
		if err != nil {
			return fmt.Errorf("failed to insert ledger entry: %w", err)
		}
	}
	return nil
}

// EntriesByReference fetches the rows of one posting, ordered by insertion.
func (ps *PostgresStore) EntriesByReference(ctx context.Context, referenceID string) ([]Entry, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := ps.q().Query(queryCtx, `
		SELECT id, entry_date, account_code, description, debit::text, credit::text, module, reference_id
		FROM ledger_entries
		WHERE reference_id = $1
		ORDER BY id
	`, referenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e             Entry
			debit, credit string
		)
		if err := rows.Scan(&e.ID, &e.Date, &e.AccountCode, &e.Description, &debit, &credit, &e.Module, &e.ReferenceID); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		var err error
		if e.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("failed to parse debit %q: %w", debit, err)
		}
		if e.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("failed to parse credit %q: %w", credit, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecordDocument registers an issued document number for a series. The
// unique constraint on (series, number) backs the never-reuse invariant.
func (ps *PostgresStore) RecordDocument(ctx context.Context, seriesPrefix string, number uint64, referenceID string) (int64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var id int64
	err := ps.q().QueryRow(queryCtx, `
		INSERT INTO documents (series_prefix, number, reference_id, status)
		VALUES ($1, $2, $3, 'issued')
		RETURNING id
	`, seriesPrefix, number, referenceID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to record document %s%d: %w", seriesPrefix, number, err)
	}
	return id, nil
}

// LastNumber returns the highest document number issued for a series, zero
// when the series is fresh. Callers must hold a serializable transaction (or
// equivalent lock) around read-allocate-insert or duplicate numbers can be
// issued.
func (ps *PostgresStore) LastNumber(ctx context.Context, seriesPrefix string) (uint64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var last uint64
	err := ps.q().QueryRow(queryCtx,
		"SELECT COALESCE(MAX(number), 0) FROM documents WHERE series_prefix = $1",
		seriesPrefix).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to get last number for series %s: %w", seriesPrefix, err)
	}
	return last, nil
}

// SaveFingerprint persists the digest and verification payload onto a sales
// document. Set once; the fingerprint is immutable.
func (ps *PostgresStore) SaveFingerprint(ctx context.Context, documentID int64, digest, payload string) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := ps.q().Exec(queryCtx, `
		UPDATE documents
		SET fingerprint_digest = $1, fingerprint_payload = $2
		WHERE id = $3 AND fingerprint_digest IS NULL
	`, digest, payload, documentID)
	if err != nil {
		return fmt.Errorf("failed to save fingerprint for document %d: %w", documentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %d not found or already fingerprinted", documentID)
	}
	return nil
}

// DocumentByNumber fetches one issued document, nil when absent.
func (ps *PostgresStore) DocumentByNumber(ctx context.Context, seriesPrefix string, number uint64) (*document.Record, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		rec    document.Record
		digest *string
	)
	err := ps.q().QueryRow(queryCtx, `
		SELECT id, series_prefix, number, reference_id, status, fingerprint_digest
		FROM documents
		WHERE series_prefix = $1 AND number = $2
	`, seriesPrefix, number).Scan(&rec.ID, &rec.SeriesPrefix, &rec.Number, &rec.ReferenceID, &rec.Status, &digest)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s%d: %w", seriesPrefix, number, err)
	}
	if digest != nil {
		rec.Digest = *digest
	}
	return &rec, nil
}

// SetDocumentStatus moves a document's lifecycle status. The expected
// current status guards against concurrent state changes.
func (ps *PostgresStore) SetDocumentStatus(ctx context.Context, documentID int64, from, to document.Status) error {
	if _, err := document.Transition(from, to); err != nil {
		return err
	}
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := ps.q().Exec(queryCtx,
		"UPDATE documents SET status = $1 WHERE id = $2 AND status = $3",
		string(to), documentID, string(from))
	if err != nil {
		return fmt.Errorf("failed to update status for document %d: %w", documentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %d is not in status %s", documentID, from)
	}
	return nil
}

// AdjustStock applies a quantity delta to a product's running stock and,
// when newCost is non-nil, replaces its unit cost. Runs inside the caller's
// business event; the quantities here mirror what the posting values.
func (ps *PostgresStore) AdjustStock(ctx context.Context, productID int64, delta decimal.Decimal, newCost *decimal.Decimal) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var tag pgconn.CommandTag
	var err error
	if newCost != nil {
		tag, err = ps.q().Exec(queryCtx,
			"UPDATE products SET stock = stock + $1, cost = $2 WHERE id = $3",
			delta.String(), newCost.StringFixed(2), productID)
	} else {
		tag, err = ps.q().Exec(queryCtx,
			"UPDATE products SET stock = stock + $1 WHERE id = $2",
			delta.String(), productID)
	}
	if err != nil {
		return fmt.Errorf("failed to adjust stock for product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d not found", productID)
	}
	return nil
}

// TrialBalance sums debits and credits per account code over the whole
// ledger. In a healthy ledger the two column totals agree in aggregate.
func (ps *PostgresStore) TrialBalance(ctx context.Context) ([]BalanceLine, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := ps.q().Query(queryCtx, `
		SELECT a.code, a.name, a.class,
		       COALESCE(SUM(e.debit), 0)::text AS total_debit,
		       COALESCE(SUM(e.credit), 0)::text AS total_credit
		FROM accounts a
		LEFT JOIN ledger_entries e ON e.account_code = a.code
		GROUP BY a.code, a.name, a.class
		ORDER BY a.code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trial balance: %w", err)
	}
	defer rows.Close()

	var lines []BalanceLine
	for rows.Next() {
		var (
			line          BalanceLine
			debit, credit string
		)
		if err := rows.Scan(&line.Code, &line.Name, &line.Class, &debit, &credit); err != nil {
			return nil, fmt.Errorf("failed to scan balance line: %w", err)
		}
		if line.Debits, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("failed to parse debit total %q: %w", debit, err)
		}
		if line.Credits, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("failed to parse credit total %q: %w", credit, err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Close closes the underlying pool.
func (ps *PostgresStore) Close() error {
	ps.Pool.Close()
	return nil
}
