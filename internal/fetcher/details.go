package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/jonmartinstorm/repotilsyn/internal/config"
	"github.com/jonmartinstorm/repotilsyn/internal/models"
)

// LanguagesEmpty er sentinelverdien når et repo ikke har noen språk.
const LanguagesEmpty = "N/A"

// repoQuery henter alt vi trenger per repo i ett kall per side. Aliasene
// på refs og pullRequests/issues skiller tellerne per tilstand.
const repoQuery = `
query($org: String!, $cursor: String) {
  organization(login: $org) {
    repositories(first: 50, after: $cursor) {
      pageInfo {
        hasNextPage
        endCursor
      }
      nodes {
        name
        diskUsage
        visibility
        defaultBranchRef {
          target {
            ... on Commit {
              history {
                totalCount
              }
            }
          }
        }
        branches: refs(refPrefix: "refs/heads/") {
          totalCount
        }
        pullRequests(states: OPEN) {
          totalCount
        }
        mergedPRs: pullRequests(states: MERGED) {
          totalCount
        }
        closedPRs: pullRequests(states: CLOSED) {
          totalCount
        }
        issues(states: OPEN) {
          totalCount
        }
        closedIssues: issues(states: CLOSED) {
          totalCount
        }
        releases {
          totalCount
        }
        tags: refs(refPrefix: "refs/tags/") {
          totalCount
        }
        languages(first: 5) {
          nodes {
            name
          }
        }
        pushedAt
        updatedAt
      }
    }
  }
}`

type totalCount struct {
	TotalCount int `json:"totalCount"`
}

// RepoNode er én node fra GraphQL-svaret. Valgfrie delobjekter er pekere
// slik at fravær kan skilles fra null-verdier.
type RepoNode struct {
	Name             string `json:"name"`
	DiskUsage        int    `json:"diskUsage"`
	Visibility       string `json:"visibility"`
	DefaultBranchRef *struct {
		Target struct {
			History totalCount `json:"history"`
		} `json:"target"`
	} `json:"defaultBranchRef"`
	Branches     totalCount `json:"branches"`
	PullRequests totalCount `json:"pullRequests"`
	MergedPRs    totalCount `json:"mergedPRs"`
	ClosedPRs    totalCount `json:"closedPRs"`
	Issues       totalCount `json:"issues"`
	ClosedIssues totalCount `json:"closedIssues"`
	Releases     totalCount `json:"releases"`
	Tags         totalCount `json:"tags"`
	Languages    struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"languages"`
	PushedAt  string `json:"pushedAt"`
	UpdatedAt string `json:"updatedAt"`
}

type detailsResponse struct {
	Data struct {
		Organization *struct {
			Repositories struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Nodes []RepoNode `json:"nodes"`
			} `json:"repositories"`
		} `json:"organization"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// DetailsFetcher er GraphQL-pipelinen: cursor-paginert listing av alle
// repos i organisasjonen, normalisert til flate rader.
type DetailsFetcher struct {
	Cfg    config.Config
	Client *Client
}

func NewDetailsFetcher(cfg config.Config) *DetailsFetcher {
	client := NewClient(cfg.Token)
	client.WatchRateLimit = true
	return &DetailsFetcher{Cfg: cfg, Client: client}
}

// FetchAll henter alle sider og normaliserer nodene i ankomstrekkefølge.
// En feilmelding på toppnivå i GraphQL-svaret er fatal for kjøringen.
func (f *DetailsFetcher) FetchAll(ctx context.Context) ([]models.RepoDetails, error) {
	nodes, err := FetchAllCursorPages(ctx, f.fetchPage)
	if err != nil {
		return nil, err
	}

	records := make([]models.RepoDetails, 0, len(nodes))
	for _, node := range nodes {
		records = append(records, NormalizeRepo(node))
	}
	return records, nil
}

func (f *DetailsFetcher) fetchPage(ctx context.Context, cursor string) (CursorPage[RepoNode], error) {
	variables := map[string]any{"org": f.Cfg.Org}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	body, err := json.Marshal(map[string]any{
		"query":     repoQuery,
		"variables": variables,
	})
	if err != nil {
		return CursorPage[RepoNode]{}, fmt.Errorf("kunne ikke serialisere GraphQL-request: %w", err)
	}

	resp, err := f.Client.Do(ctx, Request{
		Method: http.MethodPost,
		URL:    f.Cfg.GraphQLURL(),
		Body:   body,
	})
	if err != nil {
		return CursorPage[RepoNode]{}, err
	}

	var parsed detailsResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return CursorPage[RepoNode]{}, fmt.Errorf("ugyldig GraphQL-svar: %w", err)
	}
	if len(parsed.Errors) > 0 {
		msgs := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			msgs = append(msgs, e.Message)
		}
		slog.Error("GraphQL-svaret inneholder feil", "errors", strings.Join(msgs, "; "))
		return CursorPage[RepoNode]{}, fmt.Errorf("GraphQL-feil: %s", strings.Join(msgs, "; "))
	}
	if parsed.Data.Organization == nil {
		return CursorPage[RepoNode]{}, fmt.Errorf("ingen organisasjonsdata for %s", f.Cfg.Org)
	}

	repos := parsed.Data.Organization.Repositories
	return CursorPage[RepoNode]{
		Nodes:       repos.Nodes,
		HasNextPage: repos.PageInfo.HasNextPage,
		EndCursor:   repos.PageInfo.EndCursor,
	}, nil
}

// NormalizeRepo projiserer én node til en flat rad. Ren mapping uten
// bieffekter: tellere uten delobjekt blir 0, diskUsage (KB) regnes om til
// MB med to desimaler, og språklisten joines i kilderekkefølge.
func NormalizeRepo(node RepoNode) models.RepoDetails {
	commits := 0
	if node.DefaultBranchRef != nil {
		commits = node.DefaultBranchRef.Target.History.TotalCount
	}

	languages := LanguagesEmpty
	if len(node.Languages.Nodes) > 0 {
		names := make([]string, 0, len(node.Languages.Nodes))
		for _, lang := range node.Languages.Nodes {
			names = append(names, lang.Name)
		}
		languages = strings.Join(names, ", ")
	}

	return models.RepoDetails{
		Name:          node.Name,
		SizeMB:        math.Round(float64(node.DiskUsage)/1024*100) / 100,
		Visibility:    node.Visibility,
		TotalCommits:  commits,
		TotalBranches: node.Branches.TotalCount,
		OpenPRs:       node.PullRequests.TotalCount,
		MergedPRs:     node.MergedPRs.TotalCount,
		ClosedPRs:     node.ClosedPRs.TotalCount,
		OpenIssues:    node.Issues.TotalCount,
		ClosedIssues:  node.ClosedIssues.TotalCount,
		Releases:      node.Releases.TotalCount,
		Tags:          node.Tags.TotalCount,
		Languages:     languages,
		LastPushedAt:  node.PushedAt,
		LastUpdatedAt: node.UpdatedAt,
	}
}
