package main

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/example/fiscal-ledger/internal/invoice"
)

var (
	totalsNoRounding bool
	totalsUnit       string
)

var totalsCmd = &cobra.Command{
	Use:   "totals [lines.json]",
	Short: "Compute invoice totals from a line items file",
	Long: `Reads a JSON array of invoice lines and prints the computed totals:
subtotal, taxable base, per-code tax and withholding buckets, rounding
adjustment and grand total. Amounts may be given as JSON numbers or
strings; they are handled as exact decimals throughout.`,
	Example: `  fiscal totals lines.json
  fiscal totals lines.json --no-rounding
  fiscal totals lines.json --unit 100`,
	Args: cobra.ExactArgs(1),
	RunE: runTotals,
}

func init() {
	totalsCmd.Flags().BoolVar(&totalsNoRounding, "no-rounding", false, "disable grand total rounding")
	totalsCmd.Flags().StringVar(&totalsUnit, "unit", "", "rounding unit (default 50)")
	rootCmd.AddCommand(totalsCmd)
}

func totalsOptions() (invoice.Options, error) {
	opts := invoice.DefaultOptions()
	if totalsNoRounding {
		opts.RoundingEnabled = false
	}
	if totalsUnit != "" {
		unit, err := decimal.NewFromString(totalsUnit)
		if err != nil || !unit.IsPositive() {
			return opts, fmt.Errorf("invalid rounding unit %q", totalsUnit)
		}
		opts.RoundingUnit = unit
	}
	return opts, nil
}

func runTotals(cmd *cobra.Command, args []string) error {
	lines, _, err := readLines(args[0])
	if err != nil {
		return err
	}

	opts, err := totalsOptions()
	if err != nil {
		return err
	}

	totals, err := invoice.Compute(lines, opts)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(toOutput(totals), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
