package ledger

// Class is the closed set of account classes in the chart of accounts. The
// class drives the balance-sign convention.
type Class string

const (
	ClassAsset     Class = "asset"
	ClassLiability Class = "liability"
	ClassEquity    Class = "equity"
	ClassIncome    Class = "income"
	ClassExpense   Class = "expense"
)

// ValidClass reports whether c is one of the five account classes.
func ValidClass(c Class) bool {
	switch c {
	case ClassAsset, ClassLiability, ClassEquity, ClassIncome, ClassExpense:
		return true
	}
	return false
}

// Account is one entry in the chart of accounts. Codes are unique; accounts
// are shared, long-lived reference data looked up by code.
type Account struct {
	ID   int64
	Code string
	Name string
	Class Class
}

// DebitNormal reports whether the account's balance grows on the debit side.
// Assets and expenses are debit-normal; liabilities, equity and income are
// credit-normal.
func (a *Account) DebitNormal() bool {
	return a.Class == ClassAsset || a.Class == ClassExpense
}

// AccountCodes fixes the chart positions the posting engine writes against,
// one pair per transaction kind. Values are injected configuration; the
// defaults follow the standard national chart.
type AccountCodes struct {
	Cash         string // debit side of sales and receipts
	Revenue      string // credit side of sales, debit side of credit notes
	Inventory    string // debit side of purchases, both legs of transformations
	Payables     string // credit side of credit-term purchases
	OtherIncome  string // credit side of cash receipts
	Expense      string // debit side of cash disbursements
	SalesReturns string // credit side of credit notes
}

// DefaultAccountCodes returns the standard chart positions.
func DefaultAccountCodes() AccountCodes {
	return AccountCodes{
		Cash:         "1105",
		Revenue:      "4135",
		Inventory:    "1435",
		Payables:     "2205",
		OtherIncome:  "4199",
		Expense:      "5195",
		SalesReturns: "4175",
	}
}

// Validate checks that no chart position is left empty.
func (c AccountCodes) Validate() error {
	positions := map[string]string{
		"cash":          c.Cash,
		"revenue":       c.Revenue,
		"inventory":     c.Inventory,
		"payables":      c.Payables,
		"other_income":  c.OtherIncome,
		"expense":       c.Expense,
		"sales_returns": c.SalesReturns,
	}
	for name, code := range positions {
		if code == "" {
			return &UnresolvedAccountError{Position: name, Code: ""}
		}
	}
	return nil
}
