package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/fiscal-ledger/internal/ledger"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the trial balance",
	Long: `Sums debits and credits per chart account from the local database
and prints the trial balance. A healthy ledger always balances; a non-zero
difference means a posting invariant was violated outside this tool.`,
	Args: cobra.NoArgs,
	RunE: runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	lines, err := store.TrialBalance(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tACCOUNT\tDEBITS\tCREDITS\tNET")
	for _, line := range lines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			line.Code, line.Name, line.Debits.StringFixed(2), line.Credits.StringFixed(2), line.Net().StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if err := ledger.CheckTrialBalance(lines); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\nbalanced")
	return nil
}
