package models

import "strconv"

// RepoDetails er én flat rad per repository, i samme rekkefølge som
// GitHub returnerer nodene. Alle tellere er 0 når delobjektet mangler.
type RepoDetails struct {
	Name          string
	SizeMB        float64
	Visibility    string
	TotalCommits  int
	TotalBranches int
	OpenPRs       int
	MergedPRs     int
	ClosedPRs     int
	OpenIssues    int
	ClosedIssues  int
	Releases      int
	Tags          int
	Languages     string
	LastPushedAt  string
	LastUpdatedAt string
}

// RepoDetailsHeader er kolonnerekkefølgen i CSV-filen.
func RepoDetailsHeader() []string {
	return []string{
		"repo_name",
		"repo_size_mb",
		"visibility",
		"total_commits",
		"total_branches",
		"open_prs",
		"merged_prs",
		"closed_prs",
		"open_issues",
		"closed_issues",
		"releases",
		"tags",
		"languages",
		"last_pushed_at",
		"last_updated_at",
	}
}

func (r RepoDetails) Row() []string {
	return []string{
		r.Name,
		strconv.FormatFloat(r.SizeMB, 'f', 2, 64),
		r.Visibility,
		strconv.Itoa(r.TotalCommits),
		strconv.Itoa(r.TotalBranches),
		strconv.Itoa(r.OpenPRs),
		strconv.Itoa(r.MergedPRs),
		strconv.Itoa(r.ClosedPRs),
		strconv.Itoa(r.OpenIssues),
		strconv.Itoa(r.ClosedIssues),
		strconv.Itoa(r.Releases),
		strconv.Itoa(r.Tags),
		r.Languages,
		r.LastPushedAt,
		r.LastUpdatedAt,
	}
}

// RepoMeta er delmengden vi trenger fra REST-listingen av org-repos.
type RepoMeta struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Archived bool   `json:"archived"`
}

// LFSAudit er én rad per repository i LFS-gjennomgangen. Branches er
// display-joinet med ", " og UsesLFS er "Yes"/"No".
type LFSAudit struct {
	Repository string
	Branches   string
	UsesLFS    string
}

func LFSAuditHeader() []string {
	return []string{"Repository", "Branches", "Using LFS"}
}

func (l LFSAudit) Row() []string {
	return []string{l.Repository, l.Branches, l.UsesLFS}
}
