package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Trizly-xyz/trizlySite/internal/adapter/filter"
	"github.com/Trizly-xyz/trizlySite/internal/common"
	"github.com/Trizly-xyz/trizlySite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errNotFound = common.NewError(common.ErrCodeNotFound, "文件不存在")

func newTestTransformer(provider *MockProvider) *Transformer {
	return NewTransformer(provider, filter.MustNameFilter(filter.DefaultPattern), "trizly", DefaultFileNames())
}

func bloxyRepo() *domain.Repository {
	return &domain.Repository{
		Name:          "portfolioBloxy",
		Description:   "Voxel sandbox",
		HTMLURL:       "https://github.com/trizly/portfolioBloxy",
		Homepage:      "https://bloxy.example.com",
		Stars:         12,
		Forks:         3,
		UpdatedAt:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Language:      "TypeScript",
		Topics:        []string{"game"},
		DefaultBranch: "main",
	}
}

func TestTransformer_Transform(t *testing.T) {
	tests := []struct {
		name       string
		repo       *domain.Repository
		configBody []byte
		configErr  error
		verify     func(*testing.T, *domain.Portfolio)
	}{
		{
			name:       "配置文件覆盖派生值",
			repo:       bloxyRepo(),
			configBody: []byte(`{"name": "Bloxy Studio", "description": "From config", "thumbnail": "https://cdn.example.com/b.png", "featured": true}`),
			verify: func(t *testing.T, p *domain.Portfolio) {
				assert.Equal(t, "Bloxy Studio", p.Name)
				assert.Equal(t, "From config", p.Description)
				assert.Equal(t, "https://cdn.example.com/b.png", p.Thumbnail)
				assert.True(t, p.Featured)
				assert.Equal(t, "portfoliobloxy", p.Slug)
			},
		},
		{
			name:      "没有配置文件时使用默认值",
			repo:      bloxyRepo(),
			configErr: errNotFound,
			verify: func(t *testing.T, p *domain.Portfolio) {
				assert.Equal(t, "Bloxy", p.Name)
				assert.Equal(t, "portfoliobloxy", p.Slug)
				assert.Equal(t, "Voxel sandbox", p.Description)
				assert.Equal(t, "https://raw.githubusercontent.com/trizly/portfolioBloxy/main/thumbnail.png", p.Thumbnail)
				assert.False(t, p.Featured)
			},
		},
		{
			name:      "网络错误同样降级",
			repo:      bloxyRepo(),
			configErr: context.DeadlineExceeded,
			verify: func(t *testing.T, p *domain.Portfolio) {
				assert.Equal(t, "Bloxy", p.Name)
				assert.False(t, p.Featured)
			},
		},
		{
			name:       "配置文件无法解析时使用默认值",
			repo:       bloxyRepo(),
			configBody: []byte(`{"name": `),
			verify: func(t *testing.T, p *domain.Portfolio) {
				assert.Equal(t, "Bloxy", p.Name)
				assert.Equal(t, "Voxel sandbox", p.Description)
			},
		},
		{
			name:       "配置中的空字符串不覆盖",
			repo:       bloxyRepo(),
			configBody: []byte(`{"name": "", "description": "", "featured": false}`),
			verify: func(t *testing.T, p *domain.Portfolio) {
				assert.Equal(t, "Bloxy", p.Name)
				assert.Equal(t, "Voxel sandbox", p.Description)
				assert.False(t, p.Featured)
			},
		},
		{
			name: "没有任何描述时使用占位文本",
			repo: &domain.Repository{
				Name:          "portfolioTrizl",
				DefaultBranch: "develop",
			},
			configErr: errNotFound,
			verify: func(t *testing.T, p *domain.Portfolio) {
				assert.Equal(t, PlaceholderDescription, p.Description)
				assert.Equal(t, "https://raw.githubusercontent.com/trizly/portfolioTrizl/develop/thumbnail.png", p.Thumbnail)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(MockProvider)
			provider.On("FetchFile", mock.Anything, "trizly", tt.repo.Name, "portfolio.json", tt.repo.DefaultBranch).
				Return(tt.configBody, tt.configErr).Once()

			entry, err := newTestTransformer(provider).Transform(context.Background(), tt.repo)

			require.NoError(t, err)
			require.NotNil(t, entry)
			assert.Equal(t, domain.OriginDynamic, entry.Origin)
			assert.Equal(t, tt.repo.Name, entry.Repository)
			assert.Equal(t, tt.repo.HTMLURL, entry.RepositoryURL)
			assert.Equal(t, tt.repo.Stars, entry.Stars)
			assert.Equal(t, tt.repo.Forks, entry.Forks)
			assert.Equal(t, tt.repo.Language, entry.Language)
			assert.Equal(t, tt.repo.Topics, entry.Topics)
			assert.Equal(t, tt.repo.DefaultBranch, entry.DefaultBranch)
			tt.verify(t, entry)
			provider.AssertExpectations(t)
		})
	}
}

func TestTransformer_Transform_EmptyBranch(t *testing.T) {
	provider := new(MockProvider)
	provider.On("FetchFile", mock.Anything, "trizly", "portfolioEmpty", "portfolio.json", "main").
		Return(nil, errNotFound).Once()

	entry, err := newTestTransformer(provider).Transform(context.Background(), &domain.Repository{Name: "portfolioEmpty"})

	require.NoError(t, err)
	assert.Equal(t, "https://raw.githubusercontent.com/trizly/portfolioEmpty/main/thumbnail.png", entry.Thumbnail)
	assert.Equal(t, "", entry.DefaultBranch)
	provider.AssertExpectations(t)
}

func TestTransformer_Transform_Failures(t *testing.T) {
	provider := new(MockProvider)
	transformer := newTestTransformer(provider)

	_, err := transformer.Transform(context.Background(), &domain.Repository{})
	assert.Error(t, err)

	_, err = transformer.Transform(context.Background(), nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = transformer.Transform(ctx, bloxyRepo())
	assert.True(t, errors.Is(err, context.Canceled))

	provider.AssertNotCalled(t, "FetchFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransformer_TransformAll(t *testing.T) {
	provider := new(MockProvider)
	provider.On("FetchFile", mock.Anything, "trizly", mock.Anything, "portfolio.json", "main").
		Return(nil, errNotFound)

	repos := []*domain.Repository{
		{Name: "portfolioA", DefaultBranch: "main"},
		{Name: "", DefaultBranch: "main"},
		{Name: "portfolioB", DefaultBranch: "main"},
		{Name: "portfolioC", DefaultBranch: "main"},
	}

	transformer := newTestTransformer(provider)
	transformer.SetMaxGoroutines(2)
	entries, dropped := transformer.TransformAll(context.Background(), repos)

	assert.Equal(t, 1, dropped)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.ElementsMatch(t, []string{"A", "B", "C"}, names)
	provider.AssertNumberOfCalls(t, "FetchFile", 3)
}

func TestTransformer_FetchTimeout(t *testing.T) {
	provider := new(MockProvider)
	provider.On("FetchFile", mock.Anything, "trizly", "portfolioBloxy", "portfolio.json", "main").
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		}).
		Return(nil, context.DeadlineExceeded).Once()

	transformer := newTestTransformer(provider)
	transformer.SetFetchTimeout(50 * time.Millisecond)

	entry, err := transformer.Transform(context.Background(), bloxyRepo())

	require.NoError(t, err)
	assert.Equal(t, "Bloxy", entry.Name)
	provider.AssertExpectations(t)
}

func TestTransformer_Setters_IgnoreInvalid(t *testing.T) {
	transformer := newTestTransformer(new(MockProvider))
	transformer.SetMaxGoroutines(0)
	transformer.SetFetchTimeout(-time.Second)

	assert.Equal(t, 8, transformer.maxGoroutines)
	assert.Equal(t, 10*time.Second, transformer.fetchTimeout)
}
