package main

import (
	stdlog "log"
	"os"

	"github.com/example/fiscal-ledger/internal/logger"
)

func main() {
	logCfg := logger.DefaultConfig()
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logCfg.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		logCfg.Format = format
	}
	if err := logger.Setup(logCfg); err != nil {
		stdlog.Fatalf("failed to initialize logger: %v", err)
	}

	Execute()
}
