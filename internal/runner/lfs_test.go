package runner_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/jonmartinstorm/repotilsyn/internal/config"
	"github.com/jonmartinstorm/repotilsyn/internal/fetcher"
	"github.com/jonmartinstorm/repotilsyn/internal/mocks"
	"github.com/jonmartinstorm/repotilsyn/internal/models"
	"github.com/jonmartinstorm/repotilsyn/internal/runner"
)

var _ = Describe("RunLFS", func() {
	var (
		ctx               context.Context
		cfg               config.Config
		deps              *mocks.MockLFSDeps
		origPage, origCtz time.Duration
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = config.Config{Org: "testorg", Token: "fake-token", OutputDir: "."}
		deps = &mocks.MockLFSDeps{}
		origPage, origCtz = fetcher.PageDelay, fetcher.CourtesyDelay
		fetcher.PageDelay = 0
		fetcher.CourtesyDelay = 0
	})

	AfterEach(func() {
		fetcher.PageDelay, fetcher.CourtesyDelay = origPage, origCtz
	})

	It("gjennomgår alle repos og skriver én rad per repo", func() {
		repos := []models.RepoMeta{
			{Name: "alfa", FullName: "testorg/alfa"},
			{Name: "beta", FullName: "testorg/beta"},
		}
		deps.On("GetReposPage", ctx, 1).Return(repos, nil)
		deps.On("GetReposPage", ctx, 2).Return([]models.RepoMeta{}, nil)
		deps.On("AuditRepo", ctx, "alfa").
			Return(models.LFSAudit{Repository: "alfa", Branches: "main", UsesLFS: "No"}, nil)
		deps.On("AuditRepo", ctx, "beta").
			Return(models.LFSAudit{Repository: "beta", Branches: "main, dev", UsesLFS: "Yes"}, nil)
		deps.On("WriteCSV", "testorg_lfs_usage.csv", models.LFSAuditHeader(), mock.Anything).
			Run(func(args mock.Arguments) {
				rows := args.Get(2).([][]string)
				Expect(rows).To(Equal([][]string{
					{"alfa", "main", "No"},
					{"beta", "main, dev", "Yes"},
				}))
			}).
			Return(nil)

		err := runner.RunLFS(ctx, cfg, deps)
		Expect(err).To(BeNil())
		deps.AssertExpectations(GinkgoT())
	})

	It("hopper over arkiverte repos når SkipArchived er satt", func() {
		cfg.SkipArchived = true
		repos := []models.RepoMeta{
			{Name: "aktiv", FullName: "testorg/aktiv"},
			{Name: "gammel", FullName: "testorg/gammel", Archived: true},
		}
		deps.On("GetReposPage", ctx, 1).Return(repos, nil)
		deps.On("GetReposPage", ctx, 2).Return([]models.RepoMeta{}, nil)
		deps.On("AuditRepo", ctx, "aktiv").
			Return(models.LFSAudit{Repository: "aktiv", Branches: "main", UsesLFS: "No"}, nil)
		deps.On("WriteCSV", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		err := runner.RunLFS(ctx, cfg, deps)
		Expect(err).To(BeNil())
		deps.AssertNotCalled(GinkgoT(), "AuditRepo", ctx, "gammel")
	})

	It("skriver delresultatet når repo-listingen stopper på ErrNoResult", func() {
		repos := []models.RepoMeta{{Name: "alfa", FullName: "testorg/alfa"}}
		deps.On("GetReposPage", ctx, 1).Return(repos, nil)
		deps.On("GetReposPage", ctx, 2).Return(nil, fetcher.ErrNoResult)
		deps.On("AuditRepo", ctx, "alfa").
			Return(models.LFSAudit{Repository: "alfa", Branches: "main", UsesLFS: "No"}, nil)
		deps.On("WriteCSV", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				Expect(args.Get(2).([][]string)).To(HaveLen(1))
			}).
			Return(nil)

		err := runner.RunLFS(ctx, cfg, deps)
		Expect(err).To(BeNil())
		deps.AssertExpectations(GinkgoT())
	})

	It("avbryter uten å skrive når en gjennomgang feiler fatalt", func() {
		repos := []models.RepoMeta{{Name: "alfa", FullName: "testorg/alfa"}}
		deps.On("GetReposPage", ctx, 1).Return(repos, nil)
		deps.On("GetReposPage", ctx, 2).Return([]models.RepoMeta{}, nil)
		deps.On("AuditRepo", ctx, "alfa").
			Return(models.LFSAudit{}, errors.New("ugyldig branch-listing"))

		err := runner.RunLFS(ctx, cfg, deps)
		Expect(err).To(HaveOccurred())
		deps.AssertNotCalled(GinkgoT(), "WriteCSV", mock.Anything, mock.Anything, mock.Anything)
	})

	It("stopper etter maks 10 repos i debug-modus", func() {
		cfg.Debug = true
		var repos []models.RepoMeta
		for i := 0; i < 15; i++ {
			repos = append(repos, models.RepoMeta{Name: "repo", FullName: "testorg/repo"})
		}
		deps.On("GetReposPage", ctx, 1).Return(repos, nil)
		deps.On("GetReposPage", ctx, 2).Return([]models.RepoMeta{}, nil)
		deps.On("AuditRepo", ctx, "repo").
			Return(models.LFSAudit{Repository: "repo", Branches: "main", UsesLFS: "No"}, nil).
			Times(10)
		deps.On("WriteCSV", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				Expect(args.Get(2).([][]string)).To(HaveLen(10))
			}).
			Return(nil)

		err := runner.RunLFS(ctx, cfg, deps)
		Expect(err).To(BeNil())
		deps.AssertExpectations(GinkgoT())
	})
})
