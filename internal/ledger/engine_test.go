package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/fiscal-ledger/internal/invoice"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// fakeChart resolves accounts from a fixed map.
type fakeChart struct {
	accounts map[string]*Account
}

func (f *fakeChart) AccountByCode(_ context.Context, code string) (*Account, error) {
	return f.accounts[code], nil
}

// fakeJournal collects appended entries in memory.
type fakeJournal struct {
	entries map[string][]Entry
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{entries: make(map[string][]Entry)}
}

func (f *fakeJournal) HasEntries(_ context.Context, referenceID string) (bool, error) {
	return len(f.entries[referenceID]) > 0, nil
}

func (f *fakeJournal) AppendEntries(_ context.Context, entries []Entry) error {
	ref := entries[0].ReferenceID
	f.entries[ref] = append(f.entries[ref], entries...)
	return nil
}

func fullChart() *fakeChart {
	chart := &fakeChart{accounts: make(map[string]*Account)}
	seed := []struct {
		code  string
		name  string
		class Class
	}{
		{"1105", "Cash", ClassAsset},
		{"1435", "Merchandise inventory", ClassAsset},
		{"2205", "Domestic suppliers", ClassLiability},
		{"4135", "Commerce revenue", ClassIncome},
		{"4175", "Returns on sales", ClassIncome},
		{"4199", "Other income", ClassIncome},
		{"5195", "Sundry expenses", ClassExpense},
	}
	for i, s := range seed {
		chart.accounts[s.code] = &Account{ID: int64(i + 1), Code: s.code, Name: s.name, Class: s.class}
	}
	return chart
}

func newTestEngine(t *testing.T) (*Engine, *fakeJournal) {
	t.Helper()
	journal := newFakeJournal()
	engine, err := NewEngine(DefaultAccountCodes(), fullChart(), journal)
	require.NoError(t, err)
	return engine, journal
}

func testTransaction(kind Kind) *Transaction {
	return &Transaction{
		ReferenceID:  uuid.New().String(),
		Kind:         kind,
		SeriesPrefix: "SETT",
		Number:       1,
		Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:       d("151150"),
	}
}

func TestPostAccountPairs(t *testing.T) {
	tests := []struct {
		name       string
		kind       Kind
		terms      invoice.PaymentTerms
		wantDebit  string
		wantCredit string
		wantModule string
	}{
		{"sale debits cash credits revenue", KindSale, "", "1105", "4135", "sales"},
		{"cash purchase debits inventory credits cash", KindPurchase, invoice.TermsCash, "1435", "1105", "purchases"},
		{"credit purchase debits inventory credits payables", KindPurchase, invoice.TermsCredit, "1435", "2205", "purchases"},
		{"receipt debits cash credits other income", KindReceipt, "", "1105", "4199", "cash_receipts"},
		{"disbursement debits expense credits cash", KindDisbursement, "", "5195", "1105", "disbursements"},
		{"credit note debits revenue credits returns", KindCreditNote, "", "4135", "4175", "credit_notes"},
		{"transformation moves inventory value", KindTransformation, "", "1435", "1435", "transformations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _ := newTestEngine(t)
			tx := testTransaction(tt.kind)
			tx.Terms = tt.terms

			entries, err := engine.Post(context.Background(), tx)
			require.NoError(t, err)
			require.Len(t, entries, 2)

			assert.Equal(t, tt.wantDebit, entries[0].AccountCode)
			assert.True(t, entries[0].Debit.Equal(tx.Amount))
			assert.True(t, entries[0].Credit.IsZero())

			assert.Equal(t, tt.wantCredit, entries[1].AccountCode)
			assert.True(t, entries[1].Credit.Equal(tx.Amount))
			assert.True(t, entries[1].Debit.IsZero())

			for _, e := range entries {
				assert.Equal(t, tt.wantModule, e.Module)
				assert.Equal(t, tx.ReferenceID, e.ReferenceID)
			}
			assert.NoError(t, VerifyBalanced(entries))
		})
	}
}

func TestPostBalancedForEveryKind(t *testing.T) {
	kinds := []Kind{KindSale, KindPurchase, KindReceipt, KindDisbursement, KindCreditNote, KindTransformation}
	engine, journal := newTestEngine(t)

	for _, kind := range kinds {
		tx := testTransaction(kind)
		tx.Terms = invoice.TermsCash

		entries, err := engine.Post(context.Background(), tx)
		require.NoError(t, err, "kind %s", kind)
		require.Len(t, entries, 2)

		debits, credits := SumSides(journal.entries[tx.ReferenceID])
		assert.True(t, debits.Equal(credits), "kind %s: debits %s credits %s", kind, debits, credits)
		assert.False(t, debits.IsZero())
	}
}

func TestPostIdempotentPerReference(t *testing.T) {
	engine, journal := newTestEngine(t)
	tx := testTransaction(KindSale)

	_, err := engine.Post(context.Background(), tx)
	require.NoError(t, err)

	_, err = engine.Post(context.Background(), tx)
	require.ErrorIs(t, err, ErrAlreadyPosted)
	assert.Len(t, journal.entries[tx.ReferenceID], 2)
}

func TestPostUnresolvableAccountEmitsNothing(t *testing.T) {
	chart := fullChart()
	delete(chart.accounts, "4135") // revenue missing
	journal := newFakeJournal()
	engine, err := NewEngine(DefaultAccountCodes(), chart, journal)
	require.NoError(t, err)

	tx := testTransaction(KindSale)
	_, err = engine.Post(context.Background(), tx)
	require.Error(t, err)

	var uerr *UnresolvedAccountError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "revenue", uerr.Position)
	assert.Empty(t, journal.entries[tx.ReferenceID], "no entries may be emitted")
}

func TestPostValidation(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	tx := testTransaction(KindSale)
	tx.ReferenceID = ""
	_, err := engine.Post(ctx, tx)
	assert.ErrorIs(t, err, ErrMissingReference)

	tx = testTransaction(KindSale)
	tx.Amount = decimal.Zero
	_, err = engine.Post(ctx, tx)
	assert.ErrorIs(t, err, ErrZeroAmount)

	tx = testTransaction(KindSale)
	tx.Amount = d("-5")
	_, err = engine.Post(ctx, tx)
	assert.ErrorIs(t, err, ErrZeroAmount)

	tx = testTransaction(Kind("refund"))
	_, err = engine.Post(ctx, tx)
	assert.ErrorIs(t, err, ErrUnknownKind)

	tx = testTransaction(KindPurchase)
	tx.Terms = "installments"
	_, err = engine.Post(ctx, tx)
	assert.ErrorIs(t, err, invoice.ErrInvalidPaymentTerms)

	tx = testTransaction(KindPurchase)
	tx.Terms = ""
	_, err = engine.Post(ctx, tx)
	assert.ErrorIs(t, err, invoice.ErrInvalidPaymentTerms)
}

func TestNewEngineRejectsEmptyChartPosition(t *testing.T) {
	codes := DefaultAccountCodes()
	codes.Payables = ""
	_, err := NewEngine(codes, fullChart(), newFakeJournal())
	require.Error(t, err)

	var uerr *UnresolvedAccountError
	assert.ErrorAs(t, err, &uerr)
}

func TestReverse(t *testing.T) {
	engine, _ := newTestEngine(t)
	tx := testTransaction(KindSale)

	entries, err := engine.Post(context.Background(), tx)
	require.NoError(t, err)

	reversalRef := uuid.New().String()
	when := tx.Date.AddDate(0, 0, 1)
	reversed, err := Reverse(entries, reversalRef, when)
	require.NoError(t, err)
	require.Len(t, reversed, 2)

	assert.True(t, reversed[0].Credit.Equal(entries[0].Debit))
	assert.True(t, reversed[1].Debit.Equal(entries[1].Credit))
	assert.Equal(t, reversalRef, reversed[0].ReferenceID)
	assert.NoError(t, VerifyBalanced(reversed))
}

func TestEntryValidate(t *testing.T) {
	base := Entry{
		Date:        time.Now(),
		AccountCode: "1105",
		Debit:       d("100"),
		ReferenceID: "ref-1",
	}
	assert.NoError(t, base.Validate())

	both := base
	both.Credit = d("100")
	assert.ErrorIs(t, both.Validate(), ErrOneSidedEntry)

	neither := base
	neither.Debit = decimal.Zero
	assert.ErrorIs(t, neither.Validate(), ErrOneSidedEntry)

	negative := base
	negative.Debit = d("-1")
	assert.ErrorIs(t, negative.Validate(), ErrNegativeAmount)

	noRef := base
	noRef.ReferenceID = ""
	assert.ErrorIs(t, noRef.Validate(), ErrMissingReference)
}

func TestVerifyBalanced(t *testing.T) {
	assert.ErrorIs(t, VerifyBalanced(nil), ErrNoEntries)

	unbalanced := []Entry{
		{AccountCode: "1105", Debit: d("100"), ReferenceID: "r"},
		{AccountCode: "4135", Credit: d("90"), ReferenceID: "r"},
	}
	var uerr *UnbalancedPostingError
	assert.ErrorAs(t, VerifyBalanced(unbalanced), &uerr)

	mixed := []Entry{
		{AccountCode: "1105", Debit: d("100"), ReferenceID: "a"},
		{AccountCode: "4135", Credit: d("100"), ReferenceID: "b"},
	}
	assert.ErrorIs(t, VerifyBalanced(mixed), ErrMixedReferences)
}

func TestCheckTrialBalance(t *testing.T) {
	balanced := []BalanceLine{
		{Code: "1105", Class: ClassAsset, Debits: d("500"), Credits: d("100")},
		{Code: "4135", Class: ClassIncome, Debits: d("0"), Credits: d("400")},
	}
	assert.NoError(t, CheckTrialBalance(balanced))
	assert.True(t, balanced[0].Net().Equal(d("400")))
	assert.True(t, balanced[1].Net().Equal(d("400")))

	skewed := append([]BalanceLine{}, balanced...)
	skewed[1].Credits = d("399")
	assert.Error(t, CheckTrialBalance(skewed))
}
