package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("ISSUER_NIT", "900123456")
	t.Setenv("ISSUER_DV", "8")
	t.Setenv("TECHNICAL_KEY", "testsetp12")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "SETT", cfg.SeriesPrefix)
	assert.Equal(t, uint64(1), cfg.RangeLow)
	assert.Equal(t, uint64(1000), cfg.RangeHigh)
	assert.Equal(t, "2", cfg.FiscalEnv)
	assert.True(t, cfg.RoundingEnabled)
	assert.True(t, cfg.RoundingUnit.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("SERIES_PREFIX", "FV")
	t.Setenv("RANGE_LOW", "980000000")
	t.Setenv("RANGE_HIGH", "985000000")
	t.Setenv("FISCAL_ENV", "1")
	t.Setenv("ROUNDING_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "FV", cfg.SeriesPrefix)
	assert.Equal(t, uint64(980000000), cfg.RangeLow)
	assert.Equal(t, uint64(985000000), cfg.RangeHigh)
	assert.Equal(t, "1", cfg.FiscalEnv)
	assert.False(t, cfg.RoundingEnabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("ISSUER_NIT", "")
	t.Setenv("TECHNICAL_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ISSUER_NIT")
	assert.Contains(t, err.Error(), "TECHNICAL_KEY")
}

func TestLoadMalformedNumbers(t *testing.T) {
	setRequired(t)
	t.Setenv("RANGE_LOW", "abc")
	t.Setenv("ROUNDING_ENABLED", "perhaps")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RANGE_LOW")
	assert.Contains(t, err.Error(), "ROUNDING_ENABLED")
}

func TestValidateRejections(t *testing.T) {
	setRequired(t)

	t.Run("bad fiscal environment", func(t *testing.T) {
		t.Setenv("FISCAL_ENV", "3")
		_, err := Load()
		assert.ErrorContains(t, err, "FISCAL_ENV")
	})

	t.Run("inverted range", func(t *testing.T) {
		t.Setenv("RANGE_LOW", "500")
		t.Setenv("RANGE_HIGH", "10")
		_, err := Load()
		assert.ErrorContains(t, err, "not a valid authorization")
	})

	t.Run("zero rounding unit", func(t *testing.T) {
		t.Setenv("ROUNDING_UNIT", "0")
		_, err := Load()
		assert.ErrorContains(t, err, "ROUNDING_UNIT")
	})

	t.Run("check digit mismatch", func(t *testing.T) {
		t.Setenv("ISSUER_DV", "3")
		_, err := Load()
		assert.ErrorContains(t, err, "ISSUER_DV")
	})
}
