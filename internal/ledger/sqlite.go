package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/example/fiscal-ledger/internal/document"
)

// queryer is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// every store method can run either standalone or inside a WithinTx scope.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore implements Store over a local SQLite database. It serves
// development and tests; production runs on PostgresStore. Monetary columns
// are stored as fixed-point text to keep amounts exact. A non-nil tx marks a
// transaction-scoped view created by WithinTx.
type SQLiteStore struct {
	db *sql.DB
	tx *sql.Tx
}

// OpenSQLite opens (or creates) a SQLite-backed store at path. Use
// ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (ss *SQLiteStore) q() queryer {
	if ss.tx != nil {
		return ss.tx
	}
	return ss.db
}

func (ss *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		class TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entry_date TIMESTAMP NOT NULL,
		account_code TEXT NOT NULL REFERENCES accounts(code),
		description TEXT NOT NULL,
		debit TEXT NOT NULL,
		credit TEXT NOT NULL,
		module TEXT NOT NULL,
		reference_id TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_reference ON ledger_entries(reference_id);
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		series_prefix TEXT NOT NULL,
		number INTEGER NOT NULL,
		reference_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'issued',
		fingerprint_digest TEXT,
		fingerprint_payload TEXT,
		UNIQUE(series_prefix, number)
	);
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		stock TEXT NOT NULL DEFAULT '0',
		cost TEXT NOT NULL DEFAULT '0.00'
	);`
	if _, err := ss.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// WithinTx runs fn against a transaction-scoped view of this store. Nested
// calls join the enclosing transaction.
func (ss *SQLiteStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if ss.tx != nil {
		return fn(ss)
	}
	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	scoped := &SQLiteStore{db: ss.db, tx: tx}
	if err := fn(scoped); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SeedAccount inserts a chart account, ignoring duplicates.
func (ss *SQLiteStore) SeedAccount(ctx context.Context, code, name string, class Class) error {
	if !ValidClass(class) {
		return fmt.Errorf("invalid account class %q", class)
	}
	_, err := ss.q().ExecContext(ctx,
		"INSERT OR IGNORE INTO accounts (code, name, class) VALUES (?, ?, ?)",
		code, name, string(class))
	if err != nil {
		return fmt.Errorf("failed to seed account %s: %w", code, err)
	}
	return nil
}

// AccountByCode resolves a chart account. A missing code returns (nil, nil)
// so the engine can distinguish absence from infrastructure failure.
func (ss *SQLiteStore) AccountByCode(ctx context.Context, code string) (*Account, error) {
	var account Account
	err := ss.q().QueryRowContext(ctx,
		"SELECT id, code, name, class FROM accounts WHERE code = ?",
		code).Scan(&account.ID, &account.Code, &account.Name, &account.Class)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", code, err)
	}
	return &account, nil
}

// HasEntries reports whether any ledger rows exist for a transaction
// reference.
func (ss *SQLiteStore) HasEntries(ctx context.Context, referenceID string) (bool, error) {
	var exists bool
	err := ss.q().QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM ledger_entries WHERE reference_id = ?)",
		referenceID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check entries for %s: %w", referenceID, err)
	}
	return exists, nil
}

// AppendEntries inserts a balanced entry set atomically. Standalone calls
// open their own transaction; calls inside WithinTx join the enclosing one.
func (ss *SQLiteStore) AppendEntries(ctx context.Context, entries []Entry) error {
	if err := VerifyBalanced(entries); err != nil {
		return err
	}
	return ss.WithinTx(ctx, func(s Store) error {
		return s.(*SQLiteStore).appendEntries(ctx, entries)
	})
}

func (ss *SQLiteStore) appendEntries(ctx context.Context, entries []Entry) error {
	var exists bool
	err := ss.q().QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM ledger_entries WHERE reference_id = ?)",
		entries[0].ReferenceID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to re-check prior postings: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAlreadyPosted, entries[0].ReferenceID)
	}

	for _, e := range entries {
		_, err = ss.q().ExecContext(ctx, `
			INSERT INTO ledger_entries (entry_date, account_code, description, debit, credit, module, reference_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, e.Date, e.AccountCode, e.Description, e.Debit.StringFixed(2), e.Credit.StringFixed(2), e.Module, e.ReferenceID)
		if err != nil {
			return fmt.Errorf("failed to insert ledger entry: %w", err)
		}
	}
	return nil
}

// EntriesByReference fetches the rows of one posting, in insertion order.
func (ss *SQLiteStore) EntriesByReference(ctx context.Context, referenceID string) ([]Entry, error) {
	rows, err := ss.q().QueryContext(ctx, `
		SELECT id, entry_date, account_code, description, debit, credit, module, reference_id
		FROM ledger_entries
		WHERE reference_id = ?
		ORDER BY id
	`, referenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e             Entry
			debit, credit string
		)
		if err := rows.Scan(&e.ID, &e.Date, &e.AccountCode, &e.Description, &debit, &credit, &e.Module, &e.ReferenceID); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
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
func (ss *SQLiteStore) RecordDocument(ctx context.Context, seriesPrefix string, number uint64, referenceID string) (int64, error) {
	res, err := ss.q().ExecContext(ctx,
		"INSERT INTO documents (series_prefix, number, reference_id, status) VALUES (?, ?, ?, 'issued')",
		seriesPrefix, number, referenceID)
	if err != nil {
		return 0, fmt.Errorf("failed to record document %s%d: %w", seriesPrefix, number, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read document id: %w", err)
	}
	return id, nil
}

// LastNumber returns the highest number issued for a series, zero when fresh.
func (ss *SQLiteStore) LastNumber(ctx context.Context, seriesPrefix string) (uint64, error) {
	var last uint64
	err := ss.q().QueryRowContext(ctx,
		"SELECT COALESCE(MAX(number), 0) FROM documents WHERE series_prefix = ?",
		seriesPrefix).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to get last number for series %s: %w", seriesPrefix, err)
	}
	return last, nil
}

// SaveFingerprint persists a digest and payload onto a document, once.
func (ss *SQLiteStore) SaveFingerprint(ctx context.Context, documentID int64, digest, payload string) error {
	res, err := ss.q().ExecContext(ctx, `
		UPDATE documents
		SET fingerprint_digest = ?, fingerprint_payload = ?
		WHERE id = ? AND fingerprint_digest IS NULL
	`, digest, payload, documentID)
	if err != nil {
		return fmt.Errorf("failed to save fingerprint for document %d: %w", documentID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document %d not found or already fingerprinted", documentID)
	}
	return nil
}

// DocumentByNumber fetches one issued document, nil when absent.
func (ss *SQLiteStore) DocumentByNumber(ctx context.Context, seriesPrefix string, number uint64) (*document.Record, error) {
	var (
		rec    document.Record
		digest sql.NullString
	)
	err := ss.q().QueryRowContext(ctx, `
		SELECT id, series_prefix, number, reference_id, status, fingerprint_digest
		FROM documents
		WHERE series_prefix = ? AND number = ?
	`, seriesPrefix, number).Scan(&rec.ID, &rec.SeriesPrefix, &rec.Number, &rec.ReferenceID, &rec.Status, &digest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s%d: %w", seriesPrefix, number, err)
	}
	rec.Digest = digest.String
	return &rec, nil
}

// SetDocumentStatus moves a document's lifecycle status. The expected
// current status guards against concurrent state changes.
func (ss *SQLiteStore) SetDocumentStatus(ctx context.Context, documentID int64, from, to document.Status) error {
	if _, err := document.Transition(from, to); err != nil {
		return err
	}
	res, err := ss.q().ExecContext(ctx,
		"UPDATE documents SET status = ? WHERE id = ? AND status = ?",
		string(to), documentID, string(from))
	if err != nil {
		return fmt.Errorf("failed to update status for document %d: %w", documentID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document %d is not in status %s", documentID, from)
	}
	return nil
}

// SeedProduct inserts a product with an opening stock and cost.
func (ss *SQLiteStore) SeedProduct(ctx context.Context, name string, stock, cost decimal.Decimal) (int64, error) {
	res, err := ss.q().ExecContext(ctx,
		"INSERT INTO products (name, stock, cost) VALUES (?, ?, ?)",
		name, stock.String(), cost.StringFixed(2))
	if err != nil {
		return 0, fmt.Errorf("failed to seed product %s: %w", name, err)
	}
	return res.LastInsertId()
}

// AdjustStock applies a quantity delta to a product's running stock and,
// when newCost is non-nil, replaces its unit cost.
func (ss *SQLiteStore) AdjustStock(ctx context.Context, productID int64, delta decimal.Decimal, newCost *decimal.Decimal) error {
	var currentStock string
	err := ss.q().QueryRowContext(ctx,
		"SELECT stock FROM products WHERE id = ?", productID).Scan(&currentStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("product %d not found", productID)
		}
		return fmt.Errorf("failed to read stock for product %d: %w", productID, err)
	}

	stock, err := decimal.NewFromString(currentStock)
	if err != nil {
		return fmt.Errorf("failed to parse stock %q: %w", currentStock, err)
	}
	updated := stock.Add(delta)

	if newCost != nil {
		_, err = ss.q().ExecContext(ctx,
			"UPDATE products SET stock = ?, cost = ? WHERE id = ?",
			updated.String(), newCost.StringFixed(2), productID)
	} else {
		_, err = ss.q().ExecContext(ctx,
			"UPDATE products SET stock = ? WHERE id = ?",
			updated.String(), productID)
	}
	if err != nil {
		return fmt.Errorf("failed to adjust stock for product %d: %w", productID, err)
	}
	return nil
}

// Stock reads a product's running quantity and unit cost.
func (ss *SQLiteStore) Stock(ctx context.Context, productID int64) (quantity, cost decimal.Decimal, err error) {
	var stockStr, costStr string
	err = ss.q().QueryRowContext(ctx,
		"SELECT stock, cost FROM products WHERE id = ?", productID).Scan(&stockStr, &costStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to read product %d: %w", productID, err)
	}
	if quantity, err = decimal.NewFromString(stockStr); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to parse stock %q: %w", stockStr, err)
	}
	if cost, err = decimal.NewFromString(costStr); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to parse cost %q: %w", costStr, err)
	}
	return quantity, cost, nil
}

// TrialBalance sums debits and credits per account code.
func (ss *SQLiteStore) TrialBalance(ctx context.Context) ([]BalanceLine, error) {
	rows, err := ss.q().QueryContext(ctx, `
		SELECT a.code, a.name, a.class,
		       COALESCE(SUM(CAST(e.debit AS REAL)), 0),
		       COALESCE(SUM(CAST(e.credit AS REAL)), 0)
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
			debit, credit float64
		)
		if err := rows.Scan(&line.Code, &line.Name, &line.Class, &debit, &credit); err != nil {
			return nil, fmt.Errorf("failed to scan balance line: %w", err)
		}
		line.Debits = decimal.NewFromFloat(debit).Round(2)
		line.Credits = decimal.NewFromFloat(credit).Round(2)
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Close closes the underlying database.
func (ss *SQLiteStore) Close() error {
	return ss.db.Close()
}
