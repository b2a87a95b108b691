package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/example/fiscal-ledger/internal/identity"
	"github.com/example/fiscal-ledger/internal/invoice"
)

// Config holds the application configuration.
type Config struct {
	Environment string
	DatabaseURL string
	SQLitePath  string

	// Issuer identity used in fingerprints and QR payloads.
	IssuerID         string
	IssuerCheckDigit string

	// Authorized numbering range for the active series.
	SeriesPrefix string
	RangeLow     uint64
	RangeHigh    uint64

	// Fiscal fingerprint inputs.
	TechnicalKey    string
	FiscalEnv       string // "1" production, "2" testing
	VerificationURL string

	// Rounding of invoice grand totals.
	RoundingEnabled bool
	RoundingUnit    decimal.Decimal

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from the environment, after loading .env when
// present. Missing and malformed variables are reported together.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:      getEnv("APP_ENV", "development"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SQLitePath:       getEnv("LEDGER_DB", "fiscal.db"),
		IssuerID:         os.Getenv("ISSUER_NIT"),
		IssuerCheckDigit: os.Getenv("ISSUER_DV"),
		SeriesPrefix:     getEnv("SERIES_PREFIX", "SETT"),
		TechnicalKey:     os.Getenv("TECHNICAL_KEY"),
		FiscalEnv:        getEnv("FISCAL_ENV", "2"),
		VerificationURL:  os.Getenv("VERIFICATION_URL"),
	}
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "console")

	var problems []string

	var err error
	if cfg.RangeLow, err = getUint("RANGE_LOW", 1); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.RangeHigh, err = getUint("RANGE_HIGH", 1000); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.RoundingEnabled, err = getBool("ROUNDING_ENABLED", true); err != nil {
		problems = append(problems, err.Error())
	}

	unit := getEnv("ROUNDING_UNIT", invoice.DefaultRoundingUnit.String())
	if cfg.RoundingUnit, err = decimal.NewFromString(unit); err != nil {
		problems = append(problems, fmt.Sprintf("ROUNDING_UNIT: invalid decimal %q", unit))
	}

	if len(problems) > 0 {
		return nil, errors.New("invalid environment variables: " + strings.Join(problems, "; "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is complete and coherent.
func (c *Config) Validate() error {
	var missing []string

	if c.IssuerID == "" {
		missing = append(missing, "ISSUER_NIT")
	}
	if c.TechnicalKey == "" {
		missing = append(missing, "TECHNICAL_KEY")
	}
	if len(missing) > 0 {
		return errors.New("missing required environment variables: " + strings.Join(missing, ", "))
	}

	if c.FiscalEnv != "1" && c.FiscalEnv != "2" {
		return fmt.Errorf("FISCAL_ENV must be \"1\" (production) or \"2\" (testing), got %q", c.FiscalEnv)
	}
	if c.SeriesPrefix == "" {
		return errors.New("SERIES_PREFIX must not be empty")
	}
	if c.RangeLow == 0 || c.RangeHigh < c.RangeLow {
		return fmt.Errorf("numbering range %d..%d is not a valid authorization", c.RangeLow, c.RangeHigh)
	}
	if c.RoundingEnabled && !c.RoundingUnit.IsPositive() {
		return fmt.Errorf("ROUNDING_UNIT must be positive, got %s", c.RoundingUnit)
	}

	if c.IssuerCheckDigit != "" && !identity.IsValid(c.IssuerID, c.IssuerCheckDigit) {
		return fmt.Errorf("ISSUER_DV %q does not match ISSUER_NIT %s", c.IssuerCheckDigit, c.IssuerID)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getUint(key string, fallback uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid unsigned integer %q", key, v)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}
