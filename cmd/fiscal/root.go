package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/example/fiscal-ledger/internal/config"
	"github.com/example/fiscal-ledger/internal/ledger"
	"github.com/example/fiscal-ledger/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "fiscal",
	Short: "Fiscal compliance and ledger posting toolkit",
	Long: `fiscal validates tax identifiers, computes invoice totals with
mandated rounding, derives fiscal fingerprints, allocates document numbers
against authorized ranges and posts balanced double-entry records.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig is used by the subcommands that need the full environment;
// identifier and totals checks work without one.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// openStore selects the ledger backend: Postgres when DATABASE_URL is set,
// the local SQLite database otherwise.
func openStore(ctx context.Context, cfg *config.Config) (ledger.Store, error) {
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return ledger.NewPostgresStore(pool), nil
	}
	return ledger.OpenSQLite(cfg.SQLitePath)
}
