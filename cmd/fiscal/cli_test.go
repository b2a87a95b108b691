package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/fiscal-ledger/internal/config"
	"github.com/example/fiscal-ledger/internal/ledger"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNitCommandComputes(t *testing.T) {
	out, err := execute(t, "nit", "900.123.456")
	require.NoError(t, err)
	assert.Contains(t, out, "check digit: 8")
	assert.Contains(t, out, "900.123.456-8")
}

func TestNitCommandVerifies(t *testing.T) {
	out, err := execute(t, "nit", "900123456", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	_, err = execute(t, "nit", "900123456", "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not verify")
}

func TestOpenStoreDefaultsToSQLite(t *testing.T) {
	cfg := &config.Config{SQLitePath: filepath.Join(t.TempDir(), "fiscal.db")}

	store, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, (*ledger.SQLiteStore)(nil), store)
}
