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
	logger.SetupLogger("repo_fetch", cfg.Debug)

	if err := config.ValidateConfig(cfg); err != nil {
		slog.Error("Ugyldig konfigurasjon", "error", err)
		os.Exit(1)
	}

	slog.Info("Starter henting av repository-detaljer", "org", cfg.Org)

	deps := runner.RealDetailsDeps{
		Fetcher: fetcher.NewDetailsFetcher(cfg),
	}

	if err := runner.RunDetails(ctx, cfg, deps); err != nil {
		slog.Error("Applikasjonen feilet", "error", err)
		os.Exit(1)
	}
}
