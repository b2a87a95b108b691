package ledger

import (
	"github.com/shopspring/decimal"
)

// BalanceLine is one account's row in a trial balance.
type BalanceLine struct {
	Code    string
	Name    string
	Class   Class
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

// Net returns the line's balance under the account's sign convention:
// debits minus credits for debit-normal classes, credits minus debits
// otherwise.
func (l BalanceLine) Net() decimal.Decimal {
	account := Account{Class: l.Class}
	if account.DebitNormal() {
		return l.Debits.Sub(l.Credits)
	}
	return l.Credits.Sub(l.Debits)
}

// CheckTrialBalance verifies that total debits equal total credits across
// every line. A divergence surfaces as an UnbalancedPostingError tagged with
// no particular transaction.
func CheckTrialBalance(lines []BalanceLine) error {
	debits, credits := decimal.Zero, decimal.Zero
	for _, l := range lines {
		debits = debits.Add(l.Debits)
		credits = credits.Add(l.Credits)
	}
	if !debits.Equal(credits) {
		return &UnbalancedPostingError{ReferenceID: "trial-balance", Debits: debits, Credits: credits}
	}
	return nil
}
