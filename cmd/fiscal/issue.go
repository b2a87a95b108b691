package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/fiscal-ledger/internal/fingerprint"
	"github.com/example/fiscal-ledger/internal/invoice"
	"github.com/example/fiscal-ledger/internal/ledger"
	"github.com/example/fiscal-ledger/internal/logger"
	"github.com/example/fiscal-ledger/internal/sequence"
	"github.com/example/fiscal-ledger/pkg/audit"
)

var (
	issueBuyerID   string
	issueBuyerType string
	issueTerms     string
	issueDueDate   string
	issueSeed      bool
)

var issueCmd = &cobra.Command{
	Use:   "issue [lines.json]",
	Short: "Issue a sales document end to end",
	Long: `Allocates the next number in the authorized range, computes totals,
derives the fiscal fingerprint and posts the balanced sale to the ledger.
The whole flow runs in one database transaction: either the document, its
fingerprint and its entries all commit, or none do. The allocated number is
consumed even if the document is later voided; numbers are never reused.`,
	Example: `  fiscal issue lines.json --buyer-id 222222222222
  fiscal issue lines.json --buyer-id 900222333 --terms credit --due-date 2024-02-15 --seed`,
	Args: cobra.ExactArgs(1),
	RunE: runIssue,
}

func init() {
	issueCmd.Flags().StringVar(&issueBuyerID, "buyer-id", "", "buyer identifier (required)")
	issueCmd.Flags().StringVar(&issueBuyerType, "buyer-type", "31", "buyer identity document type code")
	issueCmd.Flags().StringVar(&issueTerms, "terms", "cash", "payment terms: cash or credit")
	issueCmd.Flags().StringVar(&issueDueDate, "due-date", "", "due date YYYY-MM-DD (default issue date; credit sales require a later date)")
	issueCmd.Flags().BoolVar(&issueSeed, "seed", false, "seed the standard chart accounts first")
	issueCmd.MarkFlagRequired("buyer-id")
	rootCmd.AddCommand(issueCmd)
}

func seedChart(ctx context.Context, store ledger.Store) error {
	accounts := []struct {
		code  string
		name  string
		class ledger.Class
	}{
		{"1105", "Caja general", ledger.ClassAsset},
		{"1435", "Mercancias no fabricadas", ledger.ClassAsset},
		{"2205", "Proveedores nacionales", ledger.ClassLiability},
		{"4135", "Comercio al por mayor y al por menor", ledger.ClassIncome},
		{"4175", "Devoluciones en ventas", ledger.ClassIncome},
		{"4199", "Otros ingresos", ledger.ClassIncome},
		{"5195", "Gastos diversos", ledger.ClassExpense},
	}
	for _, a := range accounts {
		if err := store.SeedAccount(ctx, a.code, a.name, a.class); err != nil {
			return err
		}
	}
	return nil
}

func runIssue(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	terms := invoice.PaymentTerms(issueTerms)
	if !invoice.ValidTerms(terms) {
		return fmt.Errorf("%w: %q", invoice.ErrInvalidPaymentTerms, issueTerms)
	}

	now := time.Now().In(fingerprint.FixedOffset)
	dueDate := now
	if issueDueDate != "" {
		dueDate, err = time.ParseInLocation("2006-01-02", issueDueDate, fingerprint.FixedOffset)
		if err != nil {
			return fmt.Errorf("invalid due date %q", issueDueDate)
		}
	}
	if err := invoice.ValidateDueDate(now, dueDate, terms); err != nil {
		return err
	}

	lines, moves, err := readLines(args[0])
	if err != nil {
		return err
	}
	totals, err := computeConfiguredTotals(cfg, lines)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if issueSeed {
		if err := seedChart(ctx, store); err != nil {
			return err
		}
	}

	allocator, err := sequence.NewAllocator(cfg.SeriesPrefix, cfg.RangeLow, cfg.RangeHigh)
	if err != nil {
		return err
	}

	referenceID := uuid.New().String()

	// Read-allocate-insert, fingerprint, posting and stock movement commit
	// as one unit; any failure leaves no trace of the document.
	var (
		number uint64
		fp     *fingerprint.Fingerprint
	)
	err = store.WithinTx(ctx, func(s ledger.Store) error {
		last, err := s.LastNumber(ctx, cfg.SeriesPrefix)
		if err != nil {
			return err
		}
		number, err = allocator.Next(last)
		if err != nil {
			return err
		}

		docID, err := s.RecordDocument(ctx, cfg.SeriesPrefix, number, referenceID)
		if err != nil {
			return err
		}

		header := fingerprint.Header{
			DocumentNumber:  fmt.Sprintf("%d", number),
			SeriesPrefix:    cfg.SeriesPrefix,
			IssueDate:       now.Format("2006-01-02"),
			IssueTime:       fingerprint.IssueTimeAt(now, fingerprint.FixedOffset),
			IssuerID:        cfg.IssuerID,
			BuyerTypeCode:   issueBuyerType,
			BuyerID:         issueBuyerID,
			TechnicalKey:    cfg.TechnicalKey,
			Environment:     fingerprint.Environment(cfg.FiscalEnv),
			VerificationURL: cfg.VerificationURL,
		}
		if fp, err = fingerprint.Generate(header, totals); err != nil {
			return err
		}
		if err := s.SaveFingerprint(ctx, docID, fp.Digest, fp.Payload); err != nil {
			return err
		}

		engine, err := ledger.NewEngine(ledger.DefaultAccountCodes(), s, s)
		if err != nil {
			return err
		}
		if _, err := engine.Post(ctx, &ledger.Transaction{
			ReferenceID:  referenceID,
			Kind:         ledger.KindSale,
			SeriesPrefix: cfg.SeriesPrefix,
			Number:       number,
			Date:         now,
			Amount:       totals.GrandTotal,
			Terms:        terms,
		}); err != nil {
			return err
		}

		for _, move := range moves {
			if err := s.AdjustStock(ctx, move.ProductID, move.Quantity.Neg(), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	trail := audit.NewTrail()
	trail.Append(audit.ActionIssued, cfg.SeriesPrefix, number, referenceID, "")
	trail.Append(audit.ActionFingerprinted, cfg.SeriesPrefix, number, referenceID, fp.Digest)
	trail.Append(audit.ActionPosted, cfg.SeriesPrefix, number, referenceID, "2 entries")

	log := logger.WithDocument(cfg.SeriesPrefix, number)
	if allocator.RunningLow(number, 100) {
		log.Warn().
			Uint64("remaining", allocator.Remaining(number)).
			Msg("authorized range is running low")
	}
	log.Info().
		Str("reference_id", referenceID).
		Str("grand_total", totals.GrandTotal.String()).
		Str("cufe", fp.Digest).
		Bool("audit_chain_ok", audit.Verify(trail.Records())).
		Msg("document issued")

	fmt.Fprintf(cmd.OutOrStdout(), "document:    %s\ngrand total: %s\nCUFE:        %s\n\n%s\n",
		allocator.Format(number), totals.GrandTotal.StringFixed(2), fp.Digest, fp.Payload)
	return nil
}
