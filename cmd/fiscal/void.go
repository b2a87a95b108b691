package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/fiscal-ledger/internal/document"
	"github.com/example/fiscal-ledger/internal/fingerprint"
	"github.com/example/fiscal-ledger/internal/ledger"
	"github.com/example/fiscal-ledger/internal/logger"
	"github.com/example/fiscal-ledger/pkg/audit"
)

var voidCmd = &cobra.Command{
	Use:   "void [number]",
	Short: "Void an issued document and reverse its posting",
	Long: `Marks an issued document as voided and posts the reversing entry
pair under a fresh reference. The document keeps its sequence number; the
original entries stay in the ledger untouched.`,
	Example: `  fiscal void 42`,
	Args:    cobra.ExactArgs(1),
	RunE:    runVoid,
}

func init() {
	rootCmd.AddCommand(voidCmd)
}

func runVoid(cmd *cobra.Command, args []string) error {
	number, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid document number %q", args[0])
	}

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

	reversalRef := uuid.New().String()
	now := time.Now().In(fingerprint.FixedOffset)

	// Reversal entries and the status flip commit together; a failure on
	// either side leaves the document issued with its entries intact.
	var originalRef string
	err = store.WithinTx(ctx, func(s ledger.Store) error {
		rec, err := s.DocumentByNumber(ctx, cfg.SeriesPrefix, number)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("document %s%d does not exist", cfg.SeriesPrefix, number)
		}
		if !rec.Voidable() {
			return fmt.Errorf("document %s%d is %s and cannot be voided", cfg.SeriesPrefix, number, rec.Status)
		}
		originalRef = rec.ReferenceID

		entries, err := s.EntriesByReference(ctx, rec.ReferenceID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("document %s%d has no posted entries", cfg.SeriesPrefix, number)
		}

		reversed, err := ledger.Reverse(entries, reversalRef, now)
		if err != nil {
			return err
		}
		if err := s.AppendEntries(ctx, reversed); err != nil {
			return err
		}
		return s.SetDocumentStatus(ctx, rec.ID, rec.Status, document.StatusVoided)
	})
	if err != nil {
		return err
	}

	trail := audit.NewTrail()
	trail.Append(audit.ActionReversed, cfg.SeriesPrefix, number, reversalRef, "void of "+originalRef)

	log := logger.WithDocument(cfg.SeriesPrefix, number)
	log.Info().
		Str("reversal_reference", reversalRef).
		Msg("document voided")

	fmt.Fprintf(cmd.OutOrStdout(), "voided %s%d, reversal posted under %s\n", cfg.SeriesPrefix, number, reversalRef)
	return nil
}
