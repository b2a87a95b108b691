package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a single invoice or credit-note line. Monetary fields are
// decimals; floats never carry money.
type LineItem struct {
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	Discount        decimal.Decimal
	Charge          decimal.Decimal
	TaxCode         string
	TaxRate         decimal.Decimal
	WithholdingCode string
	WithholdingRate decimal.Decimal
}

// TotalsRecord is the reduction of a line list: subtotal, discount and charge
// totals, taxable base, per-code tax and withholding buckets, the rounding
// adjustment and the grand total. All stored values carry two fractional
// digits.
type TotalsRecord struct {
	Subtotal       decimal.Decimal
	TotalDiscounts decimal.Decimal
	TotalCharges   decimal.Decimal
	Base           decimal.Decimal
	Taxes          map[string]decimal.Decimal
	Withholdings   map[string]decimal.Decimal
	Adjustment     decimal.Decimal
	GrandTotal     decimal.Decimal
}

// Options configures the calculator. The zero value disables rounding; use
// DefaultOptions for the conventional commercial rounding unit.
type Options struct {
	RoundingEnabled bool
	RoundingUnit    decimal.Decimal
}

// DefaultRoundingUnit is the conventional commercial rounding unit in
// currency units.
var DefaultRoundingUnit = decimal.NewFromInt(50)

// DefaultOptions enables rounding to the nearest multiple of the default
// unit.
func DefaultOptions() Options {
	return Options{RoundingEnabled: true, RoundingUnit: DefaultRoundingUnit}
}

// TaxTotal sums every tax bucket.
func (t TotalsRecord) TaxTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range t.Taxes {
		sum = sum.Add(v)
	}
	return sum
}

// WithholdingTotal sums every withholding bucket.
func (t TotalsRecord) WithholdingTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range t.Withholdings {
		sum = sum.Add(v)
	}
	return sum
}

// Tax returns the bucket for code, zero when the code never accumulated.
func (t TotalsRecord) Tax(code string) decimal.Decimal {
	if v, ok := t.Taxes[code]; ok {
		return v
	}
	return decimal.Zero
}

// Withholding returns the bucket for code, zero when absent.
func (t TotalsRecord) Withholding(code string) decimal.Decimal {
	if v, ok := t.Withholdings[code]; ok {
		return v
	}
	return decimal.Zero
}

// Verify checks the totals invariant: grand total equals base plus taxes
// minus withholdings plus the rounding adjustment. A violation means some
// caller bypassed the calculator and is reported as an
// ArithmeticInconsistencyError.
func (t TotalsRecord) Verify() error {
	expected := t.Base.Add(t.TaxTotal()).Sub(t.WithholdingTotal()).Add(t.Adjustment)
	if !expected.Equal(t.GrandTotal) {
		return &ArithmeticInconsistencyError{Expected: expected, Got: t.GrandTotal}
	}
	return nil
}

// Compute reduces lines to a totals record. It is a pure function: no I/O,
// deterministic for a given input.
//
// Per line, in order: line subtotal = quantity x unit price; base = subtotal
// - discount + charge; taxes and withholdings accrue on the line base at
// rate/100 into their code's bucket. Accumulation runs at full precision and
// every stored field is rounded to two decimals only at the end. When
// rounding is enabled the pre-rounding total is rounded to the nearest
// multiple of the unit with ties away from zero, and the signed adjustment is
// kept rather than dropped.
func Compute(lines []LineItem, opts Options) (TotalsRecord, error) {
	var (
		subtotal  = decimal.Zero
		discounts = decimal.Zero
		charges   = decimal.Zero
		base      = decimal.Zero
	)
	taxes := make(map[string]decimal.Decimal)
	withholdings := make(map[string]decimal.Decimal)
	hundred := decimal.NewFromInt(100)

	for _, line := range lines {
		if line.Quantity.IsNegative() {
			return TotalsRecord{}, ErrNegativeQuantity
		}

		lineSubtotal := line.Quantity.Mul(line.UnitPrice)
		lineBase := lineSubtotal.Sub(line.Discount).Add(line.Charge)
		if lineBase.IsNegative() {
			return TotalsRecord{}, ErrNegativeBase
		}

		subtotal = subtotal.Add(lineSubtotal)
		discounts = discounts.Add(line.Discount)
		charges = charges.Add(line.Charge)
		base = base.Add(lineBase)

		if line.TaxRate.IsPositive() {
			code := line.TaxCode
			if code == "" {
				code = TaxVAT
			}
			if _, ok := TaxCodes[code]; !ok {
				return TotalsRecord{}, ErrUnknownTaxCode
			}
			taxValue := lineBase.Mul(line.TaxRate).Div(hundred)
			taxes[code] = taxes[code].Add(taxValue)
		}

		if line.WithholdingRate.IsPositive() {
			code := line.WithholdingCode
			if code == "" {
				code = WithholdingIncome
			}
			if _, ok := WithholdingCodes[code]; !ok {
				return TotalsRecord{}, ErrUnknownWithholdingCode
			}
			withholdingValue := lineBase.Mul(line.WithholdingRate).Div(hundred)
			withholdings[code] = withholdings[code].Add(withholdingValue)
		}
	}

	record := TotalsRecord{
		Subtotal:       subtotal.Round(2),
		TotalDiscounts: discounts.Round(2),
		TotalCharges:   charges.Round(2),
		Base:           base.Round(2),
		Taxes:          make(map[string]decimal.Decimal, len(taxes)),
		Withholdings:   make(map[string]decimal.Decimal, len(withholdings)),
	}
	for code, v := range taxes {
		record.Taxes[code] = v.Round(2)
	}
	for code, v := range withholdings {
		record.Withholdings[code] = v.Round(2)
	}

	// Reconcile from the stored two-decimal values so the totals invariant
	// holds exactly over what is persisted, not over interim precision.
	preRounding := record.Base.Add(record.TaxTotal()).Sub(record.WithholdingTotal())

	if opts.RoundingEnabled {
		unit := opts.RoundingUnit
		if unit.IsZero() {
			unit = DefaultRoundingUnit
		}
		// Nearest multiple of the unit, ties away from zero. decimal.Round
		// rounds half away from zero, matching commercial practice.
		rounded := preRounding.Div(unit).Round(0).Mul(unit)
		record.Adjustment = rounded.Sub(preRounding).Round(2)
		record.GrandTotal = rounded.Round(2)
	} else {
		record.Adjustment = decimal.Zero
		record.GrandTotal = preRounding
	}

	return record, nil
}

// ValidateDueDate checks that a due date is coherent with the payment terms:
// cash sales fall due on the issue date, credit sales strictly after it.
func ValidateDueDate(issue, due time.Time, terms PaymentTerms) error {
	if !ValidTerms(terms) {
		return ErrInvalidPaymentTerms
	}
	issueDay := issue.Truncate(24 * time.Hour)
	dueDay := due.Truncate(24 * time.Hour)
	switch terms {
	case TermsCash:
		if !dueDay.Equal(issueDay) {
			return &ArgumentError{Field: "due_date", Message: "cash sales fall due on the issue date"}
		}
	case TermsCredit:
		if !dueDay.After(issueDay) {
			return &ArgumentError{Field: "due_date", Message: "credit sales fall due after the issue date"}
		}
	}
	return nil
}

// ArgumentError reports an invalid argument by field name.
type ArgumentError struct {
	Field   string
	Message string
}

func (e *ArgumentError) Error() string {
	return "invoice: invalid " + e.Field + ": " + e.Message
}
