package invoice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestComputeReferenceScenario(t *testing.T) {
	lines := []LineItem{
		{Quantity: d("2"), UnitPrice: d("50000"), TaxCode: TaxVAT, TaxRate: d("19")},
		{Quantity: d("1"), UnitPrice: d("30000"), Discount: d("3000"), TaxCode: TaxVAT, TaxRate: d("19")},
	}

	totals, err := Compute(lines, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(d("130000")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.TotalDiscounts.Equal(d("3000")))
	assert.True(t, totals.Base.Equal(d("127000")), "base %s", totals.Base)
	assert.True(t, totals.Tax(TaxVAT).Equal(d("24130")), "vat %s", totals.Tax(TaxVAT))
	assert.True(t, totals.GrandTotal.Equal(d("151150")), "grand total %s", totals.GrandTotal)
	assert.True(t, totals.Adjustment.Equal(d("20")), "adjustment %s", totals.Adjustment)
	assert.NoError(t, totals.Verify())
}

func TestComputeWithoutRounding(t *testing.T) {
	lines := []LineItem{
		{Quantity: d("2"), UnitPrice: d("50000"), TaxCode: TaxVAT, TaxRate: d("19")},
		{Quantity: d("1"), UnitPrice: d("30000"), Discount: d("3000"), TaxCode: TaxVAT, TaxRate: d("19")},
	}

	totals, err := Compute(lines, Options{})
	require.NoError(t, err)

	assert.True(t, totals.GrandTotal.Equal(d("151130")))
	assert.True(t, totals.Adjustment.IsZero())
	assert.NoError(t, totals.Verify())
}

func TestComputeEmptyLines(t *testing.T) {
	totals, err := Compute(nil, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Base.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
	assert.True(t, totals.Adjustment.IsZero())
	assert.Empty(t, totals.Taxes)
	assert.NoError(t, totals.Verify())
}

func TestComputeZeroQuantityLine(t *testing.T) {
	lines := []LineItem{
		{Quantity: d("0"), UnitPrice: d("99999"), TaxCode: TaxVAT, TaxRate: d("19")},
		{Quantity: d("1"), UnitPrice: d("1000")},
	}

	totals, err := Compute(lines, Options{})
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(d("1000")))
	assert.True(t, totals.GrandTotal.Equal(d("1000")))
	assert.True(t, totals.Tax(TaxVAT).IsZero())
}

func TestComputeBuckets(t *testing.T) {
	lines := []LineItem{
		{Quantity: d("1"), UnitPrice: d("100000"), TaxCode: TaxVAT, TaxRate: d("19")},
		{Quantity: d("1"), UnitPrice: d("50000"), TaxCode: TaxConsumption, TaxRate: d("8")},
		{Quantity: d("1"), UnitPrice: d("200000"), WithholdingCode: WithholdingIncome, WithholdingRate: d("2.5")},
		{Quantity: d("1"), UnitPrice: d("80000"), WithholdingCode: WithholdingMunicipal, WithholdingRate: d("1")},
	}

	totals, err := Compute(lines, Options{})
	require.NoError(t, err)

	assert.True(t, totals.Tax(TaxVAT).Equal(d("19000")))
	assert.True(t, totals.Tax(TaxConsumption).Equal(d("4000")))
	assert.True(t, totals.Withholding(WithholdingIncome).Equal(d("5000")))
	assert.True(t, totals.Withholding(WithholdingMunicipal).Equal(d("800")))

	// base 430000 + taxes 23000 - withholdings 5800
	assert.True(t, totals.GrandTotal.Equal(d("447200")), "grand total %s", totals.GrandTotal)
	assert.NoError(t, totals.Verify())
}

func TestComputeChargesAndDiscounts(t *testing.T) {
	lines := []LineItem{
		{Quantity: d("3"), UnitPrice: d("10000"), Discount: d("1500"), Charge: d("500"), TaxCode: TaxVAT, TaxRate: d("19")},
	}

	totals, err := Compute(lines, Options{})
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(d("30000")))
	assert.True(t, totals.TotalDiscounts.Equal(d("1500")))
	assert.True(t, totals.TotalCharges.Equal(d("500")))
	assert.True(t, totals.Base.Equal(d("29000")))
	assert.True(t, totals.Tax(TaxVAT).Equal(d("5510")))
}

func TestComputeInvariantHoldsUnderFractionalRates(t *testing.T) {
	// Rates with repeating decimals exercise end-only rounding.
	cases := [][]LineItem{
		{{Quantity: d("7"), UnitPrice: d("333.33"), TaxCode: TaxVAT, TaxRate: d("19")}},
		{{Quantity: d("1"), UnitPrice: d("99.99"), TaxCode: TaxConsumption, TaxRate: d("8")},
			{Quantity: d("13"), UnitPrice: d("77.77"), WithholdingCode: WithholdingVAT, WithholdingRate: d("15")}},
		{{Quantity: d("2.5"), UnitPrice: d("1234.56"), TaxCode: TaxVAT, TaxRate: d("5")}},
	}

	for _, lines := range cases {
		for _, opts := range []Options{{}, DefaultOptions(), {RoundingEnabled: true, RoundingUnit: d("100")}} {
			totals, err := Compute(lines, opts)
			require.NoError(t, err)
			assert.NoError(t, totals.Verify())
		}
	}
}

func TestComputeRejectsBadLines(t *testing.T) {
	_, err := Compute([]LineItem{{Quantity: d("-1"), UnitPrice: d("10")}}, Options{})
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	_, err = Compute([]LineItem{{Quantity: d("1"), UnitPrice: d("10"), Discount: d("50")}}, Options{})
	assert.ErrorIs(t, err, ErrNegativeBase)

	_, err = Compute([]LineItem{{Quantity: d("1"), UnitPrice: d("10"), TaxCode: "77", TaxRate: d("19")}}, Options{})
	assert.ErrorIs(t, err, ErrUnknownTaxCode)

	_, err = Compute([]LineItem{{Quantity: d("1"), UnitPrice: d("10"), WithholdingCode: "99", WithholdingRate: d("3")}}, Options{})
	assert.ErrorIs(t, err, ErrUnknownWithholdingCode)
}

func TestVerifyDetectsTampering(t *testing.T) {
	totals, err := Compute([]LineItem{{Quantity: d("1"), UnitPrice: d("1000"), TaxCode: TaxVAT, TaxRate: d("19")}}, Options{})
	require.NoError(t, err)
	require.NoError(t, totals.Verify())

	totals.GrandTotal = totals.GrandTotal.Add(d("1"))
	err = totals.Verify()
	require.Error(t, err)

	var aerr *ArithmeticInconsistencyError
	assert.ErrorAs(t, err, &aerr)
}

func TestValidateDueDate(t *testing.T) {
	issue := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateDueDate(issue, issue, TermsCash))
	assert.Error(t, ValidateDueDate(issue, issue.AddDate(0, 0, 30), TermsCash))

	assert.NoError(t, ValidateDueDate(issue, issue.AddDate(0, 0, 30), TermsCredit))
	assert.Error(t, ValidateDueDate(issue, issue, TermsCredit))
	assert.Error(t, ValidateDueDate(issue, issue.AddDate(0, 0, -1), TermsCredit))

	assert.ErrorIs(t, ValidateDueDate(issue, issue, PaymentTerms("installments")), ErrInvalidPaymentTerms)
}
