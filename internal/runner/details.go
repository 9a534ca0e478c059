package runner

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"

	"github.com/jonmartinstorm/repotilsyn/internal/config"
	"github.com/jonmartinstorm/repotilsyn/internal/models"
)

// RunDetails kjører metadata-pipelinen: hent alle repos via GraphQL,
// normaliser, og skriv én CSV. Fatale feil (for eksempel GraphQL-feil på
// toppnivå) avbryter uten å skrive noen fil – delresultater fra et uttømt
// retry-budsjett er derimot allerede absorbert i pagineringen og skrives.
func RunDetails(ctx context.Context, cfg config.Config, deps DetailsDeps) error {
	start := time.Now()
	pterm.Info.Printf("Henter repository-detaljer for %s\n", cfg.Org)

	records, err := deps.FetchAll(ctx)
	if err != nil {
		slog.Error("Henting av repo-detaljer feilet", "error", err)
		return err
	}

	if len(records) == 0 {
		slog.Warn("Ingen repo-data hentet, skriver ingen fil")
		pterm.Warning.Println("Ingen repo-data hentet.")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.Row())
	}

	path := filepath.Join(cfg.OutputDir, cfg.Org+"_repository_details.csv")
	if err := deps.WriteCSV(path, models.RepoDetailsHeader(), rows); err != nil {
		slog.Error("Kunne ikke skrive CSV", "file", path, "error", err)
		return err
	}

	pterm.Success.Printf("Skrev %d repos til %s\n", len(rows), path)
	LogMemoryStats()
	slog.Info("Ferdig!", "antall", len(rows), "varighet", time.Since(start).String())
	return nil
}
