// Package mocks inneholder håndskrevne testify-mocks for runner-avhengighetene.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jonmartinstorm/repotilsyn/internal/models"
)

type MockDetailsDeps struct {
	mock.Mock
}

func (m *MockDetailsDeps) FetchAll(ctx context.Context) ([]models.RepoDetails, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RepoDetails), args.Error(1)
}

func (m *MockDetailsDeps) WriteCSV(path string, header []string, rows [][]string) error {
	args := m.Called(path, header, rows)
	return args.Error(0)
}

type MockLFSDeps struct {
	mock.Mock
}

func (m *MockLFSDeps) GetReposPage(ctx context.Context, page int) ([]models.RepoMeta, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RepoMeta), args.Error(1)
}

func (m *MockLFSDeps) AuditRepo(ctx context.Context, repo string) (models.LFSAudit, error) {
	args := m.Called(ctx, repo)
	return args.Get(0).(models.LFSAudit), args.Error(1)
}

func (m *MockLFSDeps) WriteCSV(path string, header []string, rows [][]string) error {
	args := m.Called(path, header, rows)
	return args.Error(0)
}
