package invoice

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNegativeQuantity is returned when a line carries a negative quantity.
	ErrNegativeQuantity = errors.New("line quantity is negative")

	// ErrNegativeBase is returned when a line's discount exceeds its subtotal
	// plus charges. Callers must not pass discounts that drive a base negative.
	ErrNegativeBase = errors.New("line base amount is negative")

	// ErrUnknownTaxCode is returned for a tax code outside the catalog.
	ErrUnknownTaxCode = errors.New("unknown tax code")

	// ErrUnknownWithholdingCode is returned for a withholding code outside the
	// catalog.
	ErrUnknownWithholdingCode = errors.New("unknown withholding code")

	// ErrInvalidPaymentTerms is returned for a payment-terms value outside the
	// closed cash/credit set.
	ErrInvalidPaymentTerms = errors.New("invalid payment terms")
)

// ArithmeticInconsistencyError reports a totals record whose grand total does
// not reconcile with its components. It signals a programming-logic fault
// (a caller bypassed the calculator), not a user error, and must abort the
// surrounding operation rather than coerce values.
type ArithmeticInconsistencyError struct {
	Expected decimal.Decimal
	Got      decimal.Decimal
}

func (e *ArithmeticInconsistencyError) Error() string {
	return fmt.Sprintf("invoice: totals invariant violated: grand total %s, components reconcile to %s",
		e.Got.StringFixed(2), e.Expected.StringFixed(2))
}
