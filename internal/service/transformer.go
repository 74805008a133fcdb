package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Trizly-xyz/trizlySite/internal/adapter/filter"
	"github.com/Trizly-xyz/trizlySite/internal/domain"
	"github.com/Trizly-xyz/trizlySite/internal/port"

	"golang.org/x/sync/errgroup"
)

const (
	// PlaceholderDescription 仓库和配置文件都没有描述时使用
	PlaceholderDescription = "No description provided."

	fallbackBranch = "main"
	rawContentBase = "https://raw.githubusercontent.com"
)

// FileNames 每个作品集仓库里约定的文件路径
type FileNames struct {
	Readme    string
	Config    string
	Thumbnail string
}

// DefaultFileNames 默认约定
func DefaultFileNames() FileNames {
	return FileNames{
		Readme:    "README.md",
		Config:    "portfolio.json",
		Thumbnail: "thumbnail.png",
	}
}

// Transformer 把匹配的仓库转换为作品集条目
type Transformer struct {
	provider      port.RepoProvider
	names         *filter.NameFilter
	owner         string
	files         FileNames
	fetchTimeout  time.Duration
	maxGoroutines int
}

// NewTransformer 创建转换器，默认并发数为 8，单次请求超时 10 秒
func NewTransformer(provider port.RepoProvider, names *filter.NameFilter, owner string, files FileNames) *Transformer {
	return &Transformer{
		provider:      provider,
		names:         names,
		owner:         owner,
		files:         files,
		fetchTimeout:  10 * time.Second,
		maxGoroutines: 8,
	}
}

// SetMaxGoroutines 设置最大并发数
func (t *Transformer) SetMaxGoroutines(max int) {
	if max > 0 {
		t.maxGoroutines = max
	}
}

// SetFetchTimeout 设置单次请求的超时时间
func (t *Transformer) SetFetchTimeout(d time.Duration) {
	if d > 0 {
		t.fetchTimeout = d
	}
}

// Transform 为一个仓库生成恰好一个条目
// 配置文件读取或解析失败时静默使用默认值；只有仓库名为空或 ctx 已结束时才返回错误
func (t *Transformer) Transform(ctx context.Context, repo *domain.Repository) (*domain.Portfolio, error) {
	if repo == nil || repo.Name == "" {
		return nil, errors.New("仓库名为空")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("转换 %s 被取消: %w", repo.Name, err)
	}

	cfg := t.fetchConfig(ctx, repo)
	if !cfg.OK() {
		slog.Debug("作品集配置不可用，使用默认值", "owner", t.owner, "repo", repo.Name, "error", cfg.Degraded)
	}
	overlay := cfg.Value

	return &domain.Portfolio{
		Name:          firstNonEmpty(str(overlay.Name), t.names.Extract(repo.Name)),
		Slug:          strings.ToLower(repo.Name),
		Description:   firstNonEmpty(str(overlay.Description), repo.Description, PlaceholderDescription),
		Repository:    repo.Name,
		RepositoryURL: repo.HTMLURL,
		Homepage:      repo.Homepage,
		Stars:         repo.Stars,
		Forks:         repo.Forks,
		UpdatedAt:     repo.UpdatedAt,
		Language:      repo.Language,
		Topics:        repo.Topics,
		DefaultBranch: repo.DefaultBranch,
		Thumbnail:     firstNonEmpty(str(overlay.Thumbnail), t.thumbnailURL(repo)),
		Origin:        domain.OriginDynamic,
		Featured:      overlay.Featured != nil && *overlay.Featured,
		Private:       repo.Private,
	}, nil
}

// TransformAll 并发转换全部仓库，返回成功的条目 (完成顺序) 和被丢弃的数量
// 单个仓库失败不会影响其他仓库
func (t *Transformer) TransformAll(ctx context.Context, repos []*domain.Repository) ([]*domain.Portfolio, int) {
	var (
		mu      sync.Mutex
		entries = make([]*domain.Portfolio, 0, len(repos))
		dropped int
	)

	var g errgroup.Group
	g.SetLimit(t.maxGoroutines)
	for _, repo := range repos {
		repo := repo
		g.Go(func() error {
			entry, err := t.Transform(ctx, repo)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("⚠️ 作品集条目转换失败，已丢弃", "owner", t.owner, "repo", repoName(repo), "error", err)
				dropped++
				return nil
			}
			entries = append(entries, entry)
			return nil
		})
	}
	_ = g.Wait()

	return entries, dropped
}

// fetchConfig 读取并解析可选的配置文件，任何失败都降级为空配置
func (t *Transformer) fetchConfig(ctx context.Context, repo *domain.Repository) Fetched[domain.RepoConfig] {
	fetchCtx, cancel := context.WithTimeout(ctx, t.fetchTimeout)
	defer cancel()

	raw, err := t.provider.FetchFile(fetchCtx, t.owner, repo.Name, t.files.Config, branchOf(repo.DefaultBranch))
	if err != nil {
		return fetchedDegraded(domain.RepoConfig{}, err)
	}

	var cfg domain.RepoConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return fetchedDegraded(domain.RepoConfig{}, fmt.Errorf("解析 %s 失败: %w", t.files.Config, err))
	}
	return fetchedOK(cfg)
}

func (t *Transformer) thumbnailURL(repo *domain.Repository) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", rawContentBase, t.owner, repo.Name, branchOf(repo.DefaultBranch), t.files.Thumbnail)
}

func branchOf(branch string) string {
	if branch == "" {
		return fallbackBranch
	}
	return branch
}

func repoName(repo *domain.Repository) string {
	if repo == nil {
		return ""
	}
	return repo.Name
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
