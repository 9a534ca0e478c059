package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonmartinstorm/repotilsyn/internal/config"
	"github.com/jonmartinstorm/repotilsyn/internal/fetcher"
	"github.com/jonmartinstorm/repotilsyn/internal/logger"
	"github.com/jonmartinstorm/repotilsyn/internal/runner"
)

func main() {
	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg := config.LoadConfig(os.Getenv)
	logger.SetupLogger("lfs_tilsyn", cfg.Debug)

	if err := config.ValidateConfig(cfg); err != nil {
		slog.Error("Ugyldig konfigurasjon", "error", err)
		os.Exit(1)
	}

	if !cfg.SkipArchived {
		slog.Info("Inkluderer arkiverte repositories")
	}

	deps := runner.RealLFSDeps{
		Fetcher: fetcher.NewLFSFetcher(cfg),
	}

	if err := runner.RunLFS(ctx, cfg, deps); err != nil {
		slog.Error("Applikasjonen feilet", "error", err)
		os.Exit(1)
	}
}
