package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/fiscal-ledger/internal/fingerprint"
)

var (
	cufeNumber    string
	cufePrefix    string
	cufeDate      string
	cufeTime      string
	cufeBuyerID   string
	cufeBuyerType string
)

var cufeCmd = &cobra.Command{
	Use:   "cufe [lines.json]",
	Short: "Derive the fiscal fingerprint for a sales document",
	Long: `Computes the SHA-384 fiscal fingerprint over the document identity
fields and the computed totals, and prints the digest together with the
verification payload. Issuer identity, technical key and environment flag
come from the environment (ISSUER_NIT, TECHNICAL_KEY, FISCAL_ENV).`,
	Example: `  fiscal cufe lines.json --number 1 --date 2024-01-15 --buyer-id 222222222222
  fiscal cufe lines.json --number 323200000129 --date 2019-01-16 --time 10:53:10-05:00 --buyer-id 13444444`,
	Args: cobra.ExactArgs(1),
	RunE: runCufe,
}

func init() {
	cufeCmd.Flags().StringVar(&cufeNumber, "number", "", "document number without prefix (required)")
	cufeCmd.Flags().StringVar(&cufePrefix, "prefix", "", "series prefix for the payload (default from SERIES_PREFIX)")
	cufeCmd.Flags().StringVar(&cufeDate, "date", "", "issue date YYYY-MM-DD (default today)")
	cufeCmd.Flags().StringVar(&cufeTime, "time", "", "issue time HH:MM:SS-05:00 (default now)")
	cufeCmd.Flags().StringVar(&cufeBuyerID, "buyer-id", "", "buyer identifier (required)")
	cufeCmd.Flags().StringVar(&cufeBuyerType, "buyer-type", "31", "buyer identity document type code")
	cufeCmd.MarkFlagRequired("number")
	cufeCmd.MarkFlagRequired("buyer-id")
	rootCmd.AddCommand(cufeCmd)
}

func runCufe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lines, _, err := readLines(args[0])
	if err != nil {
		return err
	}
	totals, err := computeConfiguredTotals(cfg, lines)
	if err != nil {
		return err
	}

	now := time.Now().In(fingerprint.FixedOffset)
	issueDate := cufeDate
	if issueDate == "" {
		issueDate = now.Format("2006-01-02")
	}
	issueTime := cufeTime
	if issueTime == "" {
		issueTime = fingerprint.IssueTimeAt(now, fingerprint.FixedOffset)
	}
	prefix := cufePrefix
	if prefix == "" {
		prefix = cfg.SeriesPrefix
	}

	header := fingerprint.Header{
		DocumentNumber:  cufeNumber,
		SeriesPrefix:    prefix,
		IssueDate:       issueDate,
		IssueTime:       issueTime,
		IssuerID:        cfg.IssuerID,
		BuyerTypeCode:   cufeBuyerType,
		BuyerID:         cufeBuyerID,
		TechnicalKey:    cfg.TechnicalKey,
		Environment:     fingerprint.Environment(cfg.FiscalEnv),
		VerificationURL: cfg.VerificationURL,
	}

	fp, err := fingerprint.Generate(header, totals)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "CUFE: %s\n\n%s\n", fp.Digest, fp.Payload)
	return nil
}
