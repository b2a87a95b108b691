package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/fiscal-ledger/internal/identity"
)

var nitCmd = &cobra.Command{
	Use:   "nit [number] [check-digit]",
	Short: "Compute or verify a tax identifier check digit",
	Long: `Computes the check digit for a tax identifier using the official
weighted modulus 11 scheme. Dots, dashes and spaces in the number are
ignored. When a check digit is given as a second argument, the command
verifies it instead and exits non-zero on mismatch.`,
	Example: `  fiscal nit 900123456
  fiscal nit 900.123.456 8`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runNit,
}

func init() {
	rootCmd.AddCommand(nitCmd)
}

func runNit(cmd *cobra.Command, args []string) error {
	number := args[0]

	digit, err := identity.CheckDigit(number)
	if err != nil {
		return err
	}

	if len(args) == 2 {
		if !identity.IsValid(number, args[1]) {
			return fmt.Errorf("check digit %q does not verify for %s (expected %s)", args[1], number, digit)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "valid")
		return nil
	}

	formatted, err := identity.FormatTaxID(number, digit)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "check digit: %s\nformatted:   %s\n", digit, formatted)
	return nil
}
