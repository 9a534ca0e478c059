package fetcher

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jonmartinstorm/repotilsyn/internal/config"
	"github.com/jonmartinstorm/repotilsyn/internal/models"
)

// lfsMarker er filter-direktivet i .gitattributes som betyr at stier
// lagres via LFS.
const lfsMarker = "filter=lfs"

// ProbeOutcome er det typede utfallet av én .gitattributes-probe, slik at
// anomali-stien kan testes direkte i stedet for å svelges inline.
type ProbeOutcome int

const (
	// ProbeNoMarker: filen finnes, men inneholder ikke markøren.
	ProbeNoMarker ProbeOutcome = iota
	// ProbeUsesLFS: markøren ble funnet.
	ProbeUsesLFS
	// ProbeMissing: 404 – gyldig negativt svar, ingen feil.
	ProbeMissing
	// ProbeAnomaly: innholdet lot seg ikke dekode. Logges og telles som
	// negativt for grenen.
	ProbeAnomaly
)

type branchInfo struct {
	Name string `json:"name"`
}

type contentsFile struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// LFSFetcher er REST-pipelinen: offset-paginert repo- og branch-listing,
// og en eksistens-probe mot .gitattributes per branch.
type LFSFetcher struct {
	Cfg    config.Config
	Client *Client
}

func NewLFSFetcher(cfg config.Config) *LFSFetcher {
	return &LFSFetcher{Cfg: cfg, Client: NewClient(cfg.Token)}
}

// GetReposPage henter én side av organisasjonens repos.
func (f *LFSFetcher) GetReposPage(ctx context.Context, page int) ([]models.RepoMeta, error) {
	url := fmt.Sprintf("%s/orgs/%s/repos?per_page=100&type=all&page=%d", f.Cfg.RESTURL(), f.Cfg.Org, page)
	slog.Info("Henter repos", "page", page)

	resp, err := f.Client.Do(ctx, Request{Method: http.MethodGet, URL: url})
	if err != nil {
		return nil, err
	}

	var repos []models.RepoMeta
	if err := json.Unmarshal(resp.Body, &repos); err != nil {
		return nil, fmt.Errorf("ugyldig repo-listing: %w", err)
	}
	return repos, nil
}

// GetBranchesPage henter én side av branch-navnene i et repo.
func (f *LFSFetcher) GetBranchesPage(ctx context.Context, repo string, page int) ([]string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/branches?per_page=100&page=%d", f.Cfg.RESTURL(), f.Cfg.Org, repo, page)

	resp, err := f.Client.Do(ctx, Request{Method: http.MethodGet, URL: url})
	if err != nil {
		return nil, err
	}

	var branches []branchInfo
	if err := json.Unmarshal(resp.Body, &branches); err != nil {
		return nil, fmt.Errorf("ugyldig branch-listing for %s: %w", repo, err)
	}

	names := make([]string, 0, len(branches))
	for _, b := range branches {
		names = append(names, b.Name)
	}
	return names, nil
}

// GetBranches henter alle branch-navn i ankomstrekkefølge fra APIet.
func (f *LFSFetcher) GetBranches(ctx context.Context, repo string) ([]string, error) {
	return FetchAllPages(ctx, func(ctx context.Context, page int) ([]string, error) {
		return f.GetBranchesPage(ctx, repo, page)
	})
}

// ProbeBranch sjekker om .gitattributes på gitt branch inneholder
// LFS-markøren. 404 er et gyldig fravær, ikke en feil.
func (f *LFSFetcher) ProbeBranch(ctx context.Context, repo, branch string) (ProbeOutcome, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contents/.gitattributes?ref=%s", f.Cfg.RESTURL(), f.Cfg.Org, repo, branch)

	resp, err := f.Client.Do(ctx, Request{Method: http.MethodGet, URL: url, AllowNotFound: true})
	if err != nil {
		return ProbeNoMarker, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return ProbeMissing, nil
	}

	var file contentsFile
	if err := json.Unmarshal(resp.Body, &file); err != nil {
		slog.Warn("Klarte ikke å parse .gitattributes-svaret", "repo", repo, "branch", branch, "error", err)
		return ProbeAnomaly, nil
	}

	// GitHub fletter inn linjeskift i base64-innholdet.
	raw := strings.ReplaceAll(file.Content, "\n", "")
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		slog.Warn("Klarte ikke å dekode .gitattributes", "repo", repo, "branch", branch, "error", err)
		return ProbeAnomaly, nil
	}

	if strings.Contains(string(decoded), lfsMarker) {
		return ProbeUsesLFS, nil
	}
	return ProbeNoMarker, nil
}

// AuditRepo lister branchene i et repo og prober dem i ankomstrekkefølge.
// Resultatet er logisk ELLER over branchene, med kortslutning på første
// treff. Uttømt retry-budsjett på en probe teller som negativt for den
// grenen, kjøringen fortsetter.
func (f *LFSFetcher) AuditRepo(ctx context.Context, repo string) (models.LFSAudit, error) {
	branches, err := f.GetBranches(ctx, repo)
	if err != nil {
		return models.LFSAudit{}, err
	}

	uses := "No"
	for _, branch := range branches {
		outcome, err := f.ProbeBranch(ctx, repo, branch)
		if err != nil {
			slog.Warn("Probe ga ikke noe svar, teller som negativ", "repo", repo, "branch", branch, "error", err)
			continue
		}
		if outcome == ProbeUsesLFS {
			uses = "Yes"
			break
		}
	}

	return models.LFSAudit{
		Repository: repo,
		Branches:   strings.Join(branches, ", "),
		UsesLFS:    uses,
	}, nil
}
