package service

import (
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/Trizly-xyz/trizlySite/internal/adapter/filter"
	"github.com/Trizly-xyz/trizlySite/internal/domain"
	"github.com/Trizly-xyz/trizlySite/internal/port"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	// DefaultCacheTTL 缓存有效期
	DefaultCacheTTL = 5 * time.Minute

	refreshKey       = "portfolios"
	recordTimeout    = 5 * time.Second
	defaultFetchWait = 10 * time.Second
)

// Options 作品集服务的配置
type Options struct {
	Owner         string
	StaticEntries []domain.Portfolio
	CacheTTL      time.Duration
	FetchTimeout  time.Duration
	Concurrency   int
	Files         FileNames
	Now           func() time.Time
}

// cacheRecord 一次完整的刷新结果，只会整体替换
type cacheRecord struct {
	entries     []*domain.Portfolio
	refreshedAt time.Time
}

// PortfolioService 聚合静态条目与动态仓库，并在 TTL 内缓存结果
type PortfolioService struct {
	provider     port.RepoProvider
	names        *filter.NameFilter
	transformer  *Transformer
	refreshLog   port.RefreshLog
	owner        string
	static       []*domain.Portfolio
	ttl          time.Duration
	fetchTimeout time.Duration
	files        FileNames
	nowFunc      func() time.Time

	cache atomic.Pointer[cacheRecord]
	group singleflight.Group
}

// NewPortfolioService 创建作品集服务
// refreshLog 可以为 nil，此时不记录刷新历史
func NewPortfolioService(
	provider port.RepoProvider,
	names *filter.NameFilter,
	refreshLog port.RefreshLog,
	opts Options,
) *PortfolioService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchWait
	}
	if opts.Files == (FileNames{}) {
		opts.Files = DefaultFileNames()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	static := make([]*domain.Portfolio, 0, len(opts.StaticEntries))
	for _, entry := range opts.StaticEntries {
		entry := entry
		entry.Origin = domain.OriginStatic
		entry.Repository = ""
		entry.RepositoryURL = ""
		static = append(static, &entry)
	}

	transformer := NewTransformer(provider, names, opts.Owner, opts.Files)
	transformer.SetMaxGoroutines(opts.Concurrency)
	transformer.SetFetchTimeout(opts.FetchTimeout)

	return &PortfolioService{
		provider:     provider,
		names:        names,
		transformer:  transformer,
		refreshLog:   refreshLog,
		owner:        opts.Owner,
		static:       static,
		ttl:          opts.CacheTTL,
		fetchTimeout: opts.FetchTimeout,
		files:        opts.Files,
		nowFunc:      opts.Now,
	}
}

// GetAllPortfolios 返回排好序的全部条目
// 缓存有效时直接返回，不产生任何请求；返回的切片为只读
func (s *PortfolioService) GetAllPortfolios(ctx context.Context) []*domain.Portfolio {
	if rec := s.validRecord(); rec != nil {
		return rec.entries
	}

	// 并发的缓存未命中共享同一次刷新；刷新不跟随单个请求取消
	refreshCtx := context.WithoutCancel(ctx)
	v, _, _ := s.group.Do(refreshKey, func() (interface{}, error) {
		if rec := s.validRecord(); rec != nil {
			return rec.entries, nil
		}
		return s.refresh(refreshCtx), nil
	})
	return v.([]*domain.Portfolio)
}

// GetPortfolio 按 slug 查找条目，找不到时第二个返回值为 false
// slug 重复时返回排序后的第一个；返回的是副本
func (s *PortfolioService) GetPortfolio(ctx context.Context, slug string) (*domain.Portfolio, bool) {
	for _, entry := range s.GetAllPortfolios(ctx) {
		if entry.Slug == slug {
			found := *entry
			return &found, true
		}
	}
	return nil, false
}

// GetPortfolioContent 返回动态条目及其 README 和文件树
// 条目不存在或是静态条目时第二个返回值为 false
func (s *PortfolioService) GetPortfolioContent(ctx context.Context, slug string) (*domain.PortfolioContent, bool) {
	entry, ok := s.GetPortfolio(ctx, slug)
	if !ok || !entry.IsDynamic() {
		return nil, false
	}

	var (
		readme Fetched[*string]
		tree   Fetched[[]domain.TreeEntry]
		g      errgroup.Group
	)
	g.Go(func() error {
		readme = s.fetchReadme(ctx, entry)
		return nil
	})
	g.Go(func() error {
		tree = s.fetchTree(ctx, entry)
		return nil
	})
	_ = g.Wait()

	if !readme.OK() {
		slog.Warn("⚠️ README 获取失败", "owner", s.owner, "repo", entry.Repository, "error", readme.Degraded)
	}
	if !tree.OK() {
		slog.Warn("⚠️ 文件树获取失败", "owner", s.owner, "repo", entry.Repository, "error", tree.Degraded)
	}

	return &domain.PortfolioContent{
		Portfolio: *entry,
		Readme:    readme.Value,
		Tree:      tree.Value,
	}, true
}

// CachedAt 返回最近一次刷新的时间，缓存为空时返回零值
func (s *PortfolioService) CachedAt() time.Time {
	if rec := s.cache.Load(); rec != nil {
		return rec.refreshedAt
	}
	return time.Time{}
}

// TTL 返回缓存有效期
func (s *PortfolioService) TTL() time.Duration {
	return s.ttl
}

// Invalidate 清空缓存，下一次调用会重新刷新
func (s *PortfolioService) Invalidate() {
	s.cache.Store(nil)
}

// RecentRefreshes 返回最近的刷新记录，未配置存储时返回空
func (s *PortfolioService) RecentRefreshes(ctx context.Context, limit int) ([]*domain.RefreshRecord, error) {
	if s.refreshLog == nil {
		return []*domain.RefreshRecord{}, nil
	}
	return s.refreshLog.Recent(ctx, limit)
}

func (s *PortfolioService) validRecord() *cacheRecord {
	rec := s.cache.Load()
	if rec == nil || s.nowFunc().Sub(rec.refreshedAt) >= s.ttl {
		return nil
	}
	return rec
}

// refresh 重新计算完整结果并整体替换缓存
func (s *PortfolioService) refresh(ctx context.Context) []*domain.Portfolio {
	started := s.nowFunc()
	slog.Info("🔁 刷新作品集缓存", "owner", s.owner)

	listing := s.listRepositories(ctx)
	if !listing.OK() {
		slog.Warn("❌ 获取仓库列表失败，本轮只展示静态条目", "owner", s.owner, "error", listing.Degraded)
	}

	matched := s.names.Filter(listing.Value)
	dynamic, dropped := s.transformer.TransformAll(ctx, matched)

	merged := make([]*domain.Portfolio, 0, len(s.static)+len(dynamic))
	merged = append(merged, s.static...)
	merged = append(merged, dynamic...)
	sortPortfolios(merged)

	refreshedAt := s.nowFunc()
	s.cache.Store(&cacheRecord{entries: merged, refreshedAt: refreshedAt})

	record := &domain.RefreshRecord{
		Owner:      s.owner,
		StartedAt:  started,
		DurationMs: refreshedAt.Sub(started).Milliseconds(),
		Matched:    len(matched),
		Dynamic:    len(dynamic),
		Static:     len(s.static),
		Dropped:    dropped,
	}
	if listing.Degraded != nil {
		record.ProviderError = listing.Degraded.Error()
	}
	slog.Info("✅ 作品集缓存已更新",
		"owner", s.owner,
		"matched", record.Matched,
		"dynamic", record.Dynamic,
		"static", record.Static,
		"dropped", record.Dropped,
		"duration_ms", record.DurationMs)
	s.recordRefresh(ctx, record)

	return merged
}

func (s *PortfolioService) listRepositories(ctx context.Context) Fetched[[]*domain.Repository] {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	repos, err := s.provider.ListRepositories(fetchCtx, s.owner)
	if err != nil {
		return fetchedDegraded[[]*domain.Repository](nil, err)
	}
	return fetchedOK(repos)
}

func (s *PortfolioService) fetchReadme(ctx context.Context, entry *domain.Portfolio) Fetched[*string] {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	raw, err := s.provider.FetchFile(fetchCtx, s.owner, entry.Repository, s.files.Readme, branchOf(entry.DefaultBranch))
	if err != nil {
		return fetchedDegraded[*string](nil, err)
	}
	readme := string(raw)
	return fetchedOK(&readme)
}

func (s *PortfolioService) fetchTree(ctx context.Context, entry *domain.Portfolio) Fetched[[]domain.TreeEntry] {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	tree, err := s.provider.FetchTree(fetchCtx, s.owner, entry.Repository, branchOf(entry.DefaultBranch))
	if err != nil {
		return fetchedDegraded[[]domain.TreeEntry](nil, err)
	}
	return fetchedOK(tree)
}

// recordRefresh 写入刷新历史，失败只记日志
func (s *PortfolioService) recordRefresh(ctx context.Context, record *domain.RefreshRecord) {
	if s.refreshLog == nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	if err := s.refreshLog.Record(recordCtx, record); err != nil {
		slog.Warn("⚠️ 保存刷新记录失败", "owner", s.owner, "error", err)
	}
}

// sortPortfolios 精选条目在前，同组内按名称的本地化顺序升序
// 稳定排序，同名条目保持合并时的先后
func sortPortfolios(entries []*domain.Portfolio) {
	col := collate.New(language.English)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		return col.CompareString(a.Name, b.Name) < 0
	})
}
