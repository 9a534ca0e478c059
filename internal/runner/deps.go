package runner

import (
	"context"

	"github.com/jonmartinstorm/repotilsyn/internal/csvwriter"
	"github.com/jonmartinstorm/repotilsyn/internal/fetcher"
	"github.com/jonmartinstorm/repotilsyn/internal/models"
)

// DetailsDeps er det detalj-pipelinen trenger, som interface slik at
// tester kan mocke hele henting og skriving.
type DetailsDeps interface {
	FetchAll(ctx context.Context) ([]models.RepoDetails, error)
	WriteCSV(path string, header []string, rows [][]string) error
}

// LFSDeps er det LFS-pipelinen trenger.
type LFSDeps interface {
	GetReposPage(ctx context.Context, page int) ([]models.RepoMeta, error)
	AuditRepo(ctx context.Context, repo string) (models.LFSAudit, error)
	WriteCSV(path string, header []string, rows [][]string) error
}

// RealDetailsDeps kobler pipelinen til den ekte fetcheren og CSV-skriveren.
type RealDetailsDeps struct {
	Fetcher *fetcher.DetailsFetcher
}

func (d RealDetailsDeps) FetchAll(ctx context.Context) ([]models.RepoDetails, error) {
	return d.Fetcher.FetchAll(ctx)
}

func (RealDetailsDeps) WriteCSV(path string, header []string, rows [][]string) error {
	return csvwriter.Write(path, header, rows)
}

type RealLFSDeps struct {
	Fetcher *fetcher.LFSFetcher
}

func (d RealLFSDeps) GetReposPage(ctx context.Context, page int) ([]models.RepoMeta, error) {
	return d.Fetcher.GetReposPage(ctx, page)
}

func (d RealLFSDeps) AuditRepo(ctx context.Context, repo string) (models.LFSAudit, error) {
	return d.Fetcher.AuditRepo(ctx, repo)
}

func (RealLFSDeps) WriteCSV(path string, header []string, rows [][]string) error {
	return csvwriter.Write(path, header, rows)
}
