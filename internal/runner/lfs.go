package runner

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"

	"github.com/jonmartinstorm/repotilsyn/internal/config"
	"github.com/jonmartinstorm/repotilsyn/internal/fetcher"
	"github.com/jonmartinstorm/repotilsyn/internal/models"
)

// maxReposDebug begrenser hvor mange repos vi gjennomgår i debug-modus,
// så en testkjøring ikke tygger seg gjennom hele organisasjonen.
const maxReposDebug = 10

// RunLFS kjører LFS-gjennomgangen: list alle repos, list branchene per
// repo, prob .gitattributes per branch til første treff. Én rad per repo
// skrives til CSV på slutten, også når listingen stoppet på delresultat.
func RunLFS(ctx context.Context, cfg config.Config, deps LFSDeps) error {
	start := time.Now()

	repos, err := fetcher.FetchAllPages(ctx, deps.GetReposPage)
	if err != nil {
		slog.Error("Repo-listingen feilet", "error", err)
		return err
	}

	pterm.Info.Printf("Sjekker LFS-bruk for %d repos i %s\n", len(repos), cfg.Org)
	pterm.Printf("%-30s | %-40s | %s\n", "Repository", "Branches", "Using LFS")

	var rows [][]string
	audited := 0
	for _, repo := range repos {
		if cfg.SkipArchived && repo.Archived {
			slog.Debug("Hopper over arkivert repo", "repo", repo.FullName)
			continue
		}

		audit, err := deps.AuditRepo(ctx, repo.Name)
		if err != nil {
			slog.Error("Gjennomgangen av repo feilet", "repo", repo.Name, "error", err)
			return err
		}

		rows = append(rows, audit.Row())
		pterm.Printf("%-30s | %-40s | %s\n", audit.Repository, audit.Branches, audit.UsesLFS)

		audited++
		if audited%100 == 0 {
			slog.Info("Høflighetspause etter 100 repos", "antall", audited)
			time.Sleep(fetcher.CourtesyDelay)
		}
		if cfg.Debug && audited >= maxReposDebug {
			slog.Info("Debug-modus, stopper tidlig", "antall", audited)
			break
		}
	}

	path := filepath.Join(cfg.OutputDir, cfg.Org+"_lfs_usage.csv")
	if err := deps.WriteCSV(path, models.LFSAuditHeader(), rows); err != nil {
		slog.Error("Kunne ikke skrive CSV", "file", path, "error", err)
		return err
	}

	pterm.Success.Printf("LFS-sjekk ferdig, resultater i %s\n", path)
	LogMemoryStats()
	slog.Info("Ferdig!", "antall", len(rows), "varighet", time.Since(start).String())
	return nil
}
