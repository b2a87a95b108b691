package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/fiscal-ledger/internal/invoice"
)

// Kind is the closed set of financial transaction kinds the engine posts.
type Kind string

const (
	KindSale           Kind = "sale"
	KindPurchase       Kind = "purchase"
	KindReceipt        Kind = "receipt"
	KindDisbursement   Kind = "disbursement"
	KindCreditNote     Kind = "credit_note"
	KindTransformation Kind = "transformation"
)

// moduleTags labels entries with their originating subledger.
var moduleTags = map[Kind]string{
	KindSale:           "sales",
	KindPurchase:       "purchases",
	KindReceipt:        "cash_receipts",
	KindDisbursement:   "disbursements",
	KindCreditNote:     "credit_notes",
	KindTransformation: "transformations",
}

// Transaction is a committed business event ready to drive a posting. The
// sequence number is assigned before posting and never reused, even when the
// transaction is later voided.
type Transaction struct {
	ReferenceID  string
	Kind         Kind
	SeriesPrefix string
	Number       uint64
	Date         time.Time
	Description  string
	// Amount is the grand total the entries carry. For transformations it is
	// the transformed inventory value; consumed and finished values must
	// already agree (see Post).
	Amount decimal.Decimal
	// Terms selects the credit-side account for purchases. Validated against
	// the closed cash/credit set, never inferred.
	Terms invoice.PaymentTerms
}

// AccountReader is the read collaborator: chart lookups by code. A nil
// account with a nil error means the code does not exist.
type AccountReader interface {
	AccountByCode(ctx context.Context, code string) (*Account, error)
}

// EntryWriter is the write collaborator: append-only persistence of entry
// sets. Implementations must write all entries of one call atomically, inside
// the same unit as the owning transaction's own creation.
type EntryWriter interface {
	HasEntries(ctx context.Context, referenceID string) (bool, error)
	AppendEntries(ctx context.Context, entries []Entry) error
}

// Engine maps each transaction kind to its fixed pair of chart positions and
// produces the balanced entry set. It performs no internal concurrency; the
// caller's database transaction is the atomicity boundary.
type Engine struct {
	codes    AccountCodes
	accounts AccountReader
	entries  EntryWriter
}

// NewEngine builds a posting engine over the injected chart positions and
// collaborators.
func NewEngine(codes AccountCodes, accounts AccountReader, entries EntryWriter) (*Engine, error) {
	if err := codes.Validate(); err != nil {
		return nil, err
	}
	return &Engine{codes: codes, accounts: accounts, entries: entries}, nil
}

// pair names the debit and credit chart positions for one kind.
type pair struct {
	debitPos, debitCode   string
	creditPos, creditCode string
}

func (eng *Engine) pairFor(tx *Transaction) (pair, error) {
	c := eng.codes
	switch tx.Kind {
	case KindSale:
		return pair{"cash", c.Cash, "revenue", c.Revenue}, nil
	case KindPurchase:
		if !invoice.ValidTerms(tx.Terms) {
			return pair{}, fmt.Errorf("%w: purchase terms %q", invoice.ErrInvalidPaymentTerms, tx.Terms)
		}
		if tx.Terms == invoice.TermsCredit {
			return pair{"inventory", c.Inventory, "payables", c.Payables}, nil
		}
		return pair{"inventory", c.Inventory, "cash", c.Cash}, nil
	case KindReceipt:
		return pair{"cash", c.Cash, "other_income", c.OtherIncome}, nil
	case KindDisbursement:
		return pair{"expense", c.Expense, "cash", c.Cash}, nil
	case KindCreditNote:
		return pair{"revenue", c.Revenue, "sales_returns", c.SalesReturns}, nil
	case KindTransformation:
		return pair{"inventory", c.Inventory, "inventory", c.Inventory}, nil
	}
	return pair{}, fmt.Errorf("%w: %q", ErrUnknownKind, tx.Kind)
}

// Post generates the balanced entry pair for tx and appends it through the
// write collaborator. If either backing account cannot be resolved, no
// entries are emitted and the transaction stays unposted. Re-posting an
// already-posted reference fails with ErrAlreadyPosted; the caller runs
// check-then-post under a single persistence transaction.
func (eng *Engine) Post(ctx context.Context, tx *Transaction) ([]Entry, error) {
	entries, err := eng.Prepare(ctx, tx)
	if err != nil {
		return nil, err
	}

	posted, err := eng.entries.HasEntries(ctx, tx.ReferenceID)
	if err != nil {
		return nil, fmt.Errorf("checking prior postings for %s: %w", tx.ReferenceID, err)
	}
	if posted {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyPosted, tx.ReferenceID)
	}

	if err := eng.entries.AppendEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("appending entries for %s: %w", tx.ReferenceID, err)
	}
	return entries, nil
}

// Prepare builds and verifies the entry pair without writing it. Useful for
// previewing a posting and for callers that manage persistence themselves.
func (eng *Engine) Prepare(ctx context.Context, tx *Transaction) ([]Entry, error) {
	if tx.ReferenceID == "" {
		return nil, ErrMissingReference
	}
	if !tx.Amount.IsPositive() {
		return nil, ErrZeroAmount
	}

	p, err := eng.pairFor(tx)
	if err != nil {
		return nil, err
	}

	debitAccount, err := eng.resolve(ctx, p.debitPos, p.debitCode)
	if err != nil {
		return nil, err
	}
	creditAccount, err := eng.resolve(ctx, p.creditPos, p.creditCode)
	if err != nil {
		return nil, err
	}

	description := tx.Description
	if description == "" {
		description = fmt.Sprintf("%s %s%d", moduleTags[tx.Kind], tx.SeriesPrefix, tx.Number)
	}

	amount := tx.Amount.Round(2)
	entries := []Entry{
		{
			Date:        tx.Date,
			AccountCode: debitAccount.Code,
			Description: description,
			Debit:       amount,
			Credit:      decimal.Zero,
			Module:      moduleTags[tx.Kind],
			ReferenceID: tx.ReferenceID,
		},
		{
			Date:        tx.Date,
			AccountCode: creditAccount.Code,
			Description: description,
			Debit:       decimal.Zero,
			Credit:      amount,
			Module:      moduleTags[tx.Kind],
			ReferenceID: tx.ReferenceID,
		},
	}

	if err := VerifyBalanced(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Reverse builds the reversing pair for previously posted entries. Ledger
// rows are immutable; corrections re-post with sides swapped under a new
// reference.
func Reverse(entries []Entry, referenceID string, date time.Time) ([]Entry, error) {
	if err := VerifyBalanced(entries); err != nil {
		return nil, err
	}
	reversed := make([]Entry, len(entries))
	for i, e := range entries {
		reversed[i] = Entry{
			Date:        date,
			AccountCode: e.AccountCode,
			Description: "reversal of " + e.Description,
			Debit:       e.Credit,
			Credit:      e.Debit,
			Module:      e.Module,
			ReferenceID: referenceID,
		}
	}
	return reversed, nil
}

func (eng *Engine) resolve(ctx context.Context, position, code string) (*Account, error) {
	account, err := eng.accounts.AccountByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("resolving %s account %s: %w", position, code, err)
	}
	if account == nil {
		return nil, &UnresolvedAccountError{Position: position, Code: code}
	}
	return account, nil
}
