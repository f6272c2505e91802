package agents

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// mockOracle mocks the oracle client.
type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) Complete(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

// mockRepo mocks the repository provider for clone and publish stages.
type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Clone(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

func (m *mockRepo) ListSourceFiles(ctx context.Context, path string) (map[string]string, error) {
	args := m.Called(ctx, path)
	files, _ := args.Get(0).(map[string]string)
	return files, args.Error(1)
}

func (m *mockRepo) CreateBranch(ctx context.Context, repoPath, name string) error {
	args := m.Called(ctx, repoPath, name)
	return args.Error(0)
}

func (m *mockRepo) CommitAll(ctx context.Context, repoPath, message string) error {
	args := m.Called(ctx, repoPath, message)
	return args.Error(0)
}

func (m *mockRepo) Push(ctx context.Context, repoPath, branch string) error {
	args := m.Called(ctx, repoPath, branch)
	return args.Error(0)
}

// mockPullRequester mocks PR creation.
type mockPullRequester struct {
	mock.Mock
}

func (m *mockPullRequester) OpenPullRequest(ctx context.Context, repoName, title, body, head, base string) (string, error) {
	args := m.Called(ctx, repoName, title, body, head, base)
	return args.String(0), args.Error(1)
}
