package service

import (
	"context"
	"sync"
	"time"

	"github.com/Trizly-xyz/trizlySite/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockProvider 模拟 port.RepoProvider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) ListRepositories(ctx context.Context, owner string) ([]*domain.Repository, error) {
	args := m.Called(ctx, owner)
	repos, _ := args.Get(0).([]*domain.Repository)
	return repos, args.Error(1)
}

func (m *MockProvider) FetchFile(ctx context.Context, owner, repo, path, branch string) ([]byte, error) {
	args := m.Called(ctx, owner, repo, path, branch)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockProvider) FetchTree(ctx context.Context, owner, repo, branch string) ([]domain.TreeEntry, error) {
	args := m.Called(ctx, owner, repo, branch)
	tree, _ := args.Get(0).([]domain.TreeEntry)
	return tree, args.Error(1)
}

// MockRefreshLog 模拟 port.RefreshLog
type MockRefreshLog struct {
	mock.Mock
}

func (m *MockRefreshLog) Record(ctx context.Context, record *domain.RefreshRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRefreshLog) Recent(ctx context.Context, limit int) ([]*domain.RefreshRecord, error) {
	args := m.Called(ctx, limit)
	records, _ := args.Get(0).([]*domain.RefreshRecord)
	return records, args.Error(1)
}

// fakeClock 可手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
