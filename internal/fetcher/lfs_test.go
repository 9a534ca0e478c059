package fetcher_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jonmartinstorm/repotilsyn/internal/config"
	"github.com/jonmartinstorm/repotilsyn/internal/fetcher"
)

func newLFSFetcher(url string) *fetcher.LFSFetcher {
	cfg := config.Config{GitHubURL: url, Org: "testorg", Token: "token"}
	f := fetcher.NewLFSFetcher(cfg)
	f.Client.TimeoutDelay = 0
	f.Client.ConnectDelay = 0
	f.Client.RequestDelay = 0
	f.Client.Retry.RetryWaitMin = time.Millisecond
	f.Client.Retry.RetryWaitMax = time.Millisecond
	return f
}

// contentsJSON pakker filinnhold slik contents-APIet gjør: base64 med
// innflettede linjeskift.
func contentsJSON(content string) string {
	enc := base64.StdEncoding.EncodeToString([]byte(content))
	if len(enc) > 8 {
		enc = enc[:8] + "\n" + enc[8:]
	}
	return fmt.Sprintf(`{"content": %q, "encoding": "base64"}`, enc)
}

var _ = Describe("LFSFetcher", func() {
	var (
		ctx          context.Context
		origPage     time.Duration
		origCourtesy time.Duration
	)

	BeforeEach(func() {
		ctx = context.Background()
		origPage, origCourtesy = fetcher.PageDelay, fetcher.CourtesyDelay
		fetcher.PageDelay = 0
		fetcher.CourtesyDelay = 0
	})

	AfterEach(func() {
		fetcher.PageDelay, fetcher.CourtesyDelay = origPage, origCourtesy
	})

	Describe("ProbeBranch", func() {
		It("skal finne LFS-markøren i en dekodet .gitattributes", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Query().Get("ref")).To(Equal("main"))
				_, _ = fmt.Fprint(w, contentsJSON("*.psd filter=lfs diff=lfs merge=lfs -text\n"))
			}))
			defer ts.Close()

			f := newLFSFetcher(ts.URL)
			outcome, err := f.ProbeBranch(ctx, "repoet", "main")
			Expect(err).To(BeNil())
			Expect(outcome).To(Equal(fetcher.ProbeUsesLFS))
		})

		It("skal svare negativt når markøren mangler", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = fmt.Fprint(w, contentsJSON("*.md text\n"))
			}))
			defer ts.Close()

			f := newLFSFetcher(ts.URL)
			outcome, err := f.ProbeBranch(ctx, "repoet", "main")
			Expect(err).To(BeNil())
			Expect(outcome).To(Equal(fetcher.ProbeNoMarker))
		})

		It("skal behandle 404 som gyldig fravær, ikke som feil", func() {
			calls := 0
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(http.StatusNotFound)
				_, _ = fmt.Fprint(w, `{"message":"Not Found"}`)
			}))
			defer ts.Close()

			f := newLFSFetcher(ts.URL)
			outcome, err := f.ProbeBranch(ctx, "repoet", "main")
			Expect(err).To(BeNil())
			Expect(outcome).To(Equal(fetcher.ProbeMissing))
			Expect(calls).To(Equal(1))
		})

		It("skal behandle udekodbart innhold som anomali, ikke som feil", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = fmt.Fprint(w, `{"content": "ikke-base64!!!", "encoding": "base64"}`)
			}))
			defer ts.Close()

			f := newLFSFetcher(ts.URL)
			outcome, err := f.ProbeBranch(ctx, "repoet", "main")
			Expect(err).To(BeNil())
			Expect(outcome).To(Equal(fetcher.ProbeAnomaly))
		})
	})

	Describe("AuditRepo", func() {
		// Én server som svarer på både branch-listing og prober.
		newServer := func(branches []string, lfsBranches map[string]bool, probeCount *int) *httptest.Server {
			return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch {
				case strings.Contains(r.URL.Path, "/branches"):
					page := r.URL.Query().Get("page")
					if page != "1" {
						_, _ = fmt.Fprint(w, `[]`)
						return
					}
					parts := make([]string, 0, len(branches))
					for _, b := range branches {
						parts = append(parts, fmt.Sprintf(`{"name": %q}`, b))
					}
					_, _ = fmt.Fprint(w, "["+strings.Join(parts, ",")+"]")
				case strings.Contains(r.URL.Path, "/contents/.gitattributes"):
					*probeCount++
					if lfsBranches[r.URL.Query().Get("ref")] {
						_, _ = fmt.Fprint(w, contentsJSON("*.bin filter=lfs\n"))
						return
					}
					w.WriteHeader(http.StatusNotFound)
					_, _ = fmt.Fprint(w, `{"message":"Not Found"}`)
				default:
					w.WriteHeader(http.StatusNotFound)
				}
			}))
		}

		It("skal svare Yes når én av branchene har markøren", func() {
			probes := 0
			ts := newServer([]string{"main", "dev"}, map[string]bool{"dev": true}, &probes)
			defer ts.Close()

			f := newLFSFetcher(ts.URL)
			audit, err := f.AuditRepo(ctx, "repoet")
			Expect(err).To(BeNil())
			Expect(audit.Repository).To(Equal("repoet"))
			Expect(audit.Branches).To(Equal("main, dev"))
			Expect(audit.UsesLFS).To(Equal("Yes"))
			Expect(probes).To(Equal(2))
		})

		It("skal kortslutte på første branch med markøren", func() {
			probes := 0
			ts := newServer([]string{"main", "dev", "feature"}, map[string]bool{"main": true}, &probes)
			defer ts.Close()

			f := newLFSFetcher(ts.URL)
			audit, err := f.AuditRepo(ctx, "repoet")
			Expect(err).To(BeNil())
			Expect(audit.UsesLFS).To(Equal("Yes"))
			Expect(probes).To(Equal(1), "probingen skal stoppe på første treff")
		})

		It("skal svare No når ingen branch har markøren", func() {
			probes := 0
			ts := newServer([]string{"main", "dev"}, nil, &probes)
			defer ts.Close()

			f := newLFSFetcher(ts.URL)
			audit, err := f.AuditRepo(ctx, "repoet")
			Expect(err).To(BeNil())
			Expect(audit.UsesLFS).To(Equal("No"))
			Expect(probes).To(Equal(2))
		})
	})

	Describe("GetReposPage", func() {
		It("skal parse repo-listingen med arkiv-flagget", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/api/v3/orgs/testorg/repos"))
				_, _ = fmt.Fprint(w, `[{"name": "aktiv", "full_name": "testorg/aktiv", "archived": false},
					{"name": "gammel", "full_name": "testorg/gammel", "archived": true}]`)
			}))
			defer ts.Close()

			f := newLFSFetcher(ts.URL)
			repos, err := f.GetReposPage(ctx, 1)
			Expect(err).To(BeNil())
			Expect(repos).To(HaveLen(2))
			Expect(repos[0].Name).To(Equal("aktiv"))
			Expect(repos[1].Archived).To(BeTrue())
		})
	})
})
