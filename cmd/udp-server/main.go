package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"netdebug/internal/app"
	"netdebug/internal/config"
	"netdebug/internal/logging"

	"github.com/mattn/go-isatty"
)

// Environment-only entrypoint. The netdebug CLI offers the same loop with flags.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	colored := isatty.IsTerminal(os.Stdout.Fd())
	if err := app.Run(ctx, cfg, logger, os.Stdout, colored); err != nil {
		logger.Error("UDP responder failed", "error", err)
		stop()
		os.Exit(1)
	}
}
