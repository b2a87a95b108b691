package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/example/fiscal-ledger/internal/config"
	"github.com/example/fiscal-ledger/internal/invoice"
)

// lineInput is the JSON shape of one invoice line. ProductID is optional;
// when set, issuing the document decrements that product's stock.
type lineInput struct {
	ProductID       int64           `json:"product_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Discount        decimal.Decimal `json:"discount"`
	Charge          decimal.Decimal `json:"charge"`
	TaxCode         string          `json:"tax_code"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	WithholdingCode string          `json:"withholding_code"`
	WithholdingRate decimal.Decimal `json:"withholding_rate"`
}

// totalsOutput is the JSON shape of a computed totals record.
type totalsOutput struct {
	Subtotal       decimal.Decimal            `json:"subtotal"`
	TotalDiscounts decimal.Decimal            `json:"total_discounts"`
	TotalCharges   decimal.Decimal            `json:"total_charges"`
	Base           decimal.Decimal            `json:"base"`
	Taxes          map[string]decimal.Decimal `json:"taxes"`
	Withholdings   map[string]decimal.Decimal `json:"withholdings"`
	Adjustment     decimal.Decimal            `json:"adjustment"`
	GrandTotal     decimal.Decimal            `json:"grand_total"`
}

// stockMove pairs a product with the quantity an issued document consumes.
type stockMove struct {
	ProductID int64
	Quantity  decimal.Decimal
}

func readLines(path string) ([]invoice.LineItem, []stockMove, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading lines file: %w", err)
	}

	var inputs []lineInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, nil, fmt.Errorf("parsing lines file %s: %w", path, err)
	}

	lines := make([]invoice.LineItem, len(inputs))
	var moves []stockMove
	for i, in := range inputs {
		lines[i] = invoice.LineItem{
			Quantity:        in.Quantity,
			UnitPrice:       in.UnitPrice,
			Discount:        in.Discount,
			Charge:          in.Charge,
			TaxCode:         in.TaxCode,
			TaxRate:         in.TaxRate,
			WithholdingCode: in.WithholdingCode,
			WithholdingRate: in.WithholdingRate,
		}
		if in.ProductID != 0 {
			moves = append(moves, stockMove{ProductID: in.ProductID, Quantity: in.Quantity})
		}
	}
	return lines, moves, nil
}

func computeConfiguredTotals(cfg *config.Config, lines []invoice.LineItem) (invoice.TotalsRecord, error) {
	return invoice.Compute(lines, invoice.Options{
		RoundingEnabled: cfg.RoundingEnabled,
		RoundingUnit:    cfg.RoundingUnit,
	})
}

func toOutput(t invoice.TotalsRecord) totalsOutput {
	return totalsOutput{
		Subtotal:       t.Subtotal,
		TotalDiscounts: t.TotalDiscounts,
		TotalCharges:   t.TotalCharges,
		Base:           t.Base,
		Taxes:          t.Taxes,
		Withholdings:   t.Withholdings,
		Adjustment:     t.Adjustment,
		GrandTotal:     t.GrandTotal,
	}
}
