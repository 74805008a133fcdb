package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Trizly-xyz/trizlySite/internal/common"
	"github.com/Trizly-xyz/trizlySite/internal/domain"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

const perPage = 100

// Provider 实现了 port.RepoProvider 接口
type Provider struct {
	client    *github.Client
	retryOpts []common.Option
}

// NewProvider 初始化 GitHub 客户端
// token 为空时匿名访问，限制 60 次/小时
func NewProvider(token string) *Provider {
	var client *github.Client

	if token == "" {
		client = github.NewClient(nil)
	} else {
		ctx := context.Background()
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc := oauth2.NewClient(ctx, ts)
		client = github.NewClient(tc)
	}

	return &Provider{
		client: client,
		retryOpts: []common.Option{
			common.WithMaxRetries(3),
			common.WithInitialDelay(time.Second),
			common.WithRetryIf(common.NotFoundIsPermanent),
		},
	}
}

// ListRepositories 列出账号下全部仓库
// 先按组织查询，组织不存在 (404) 时回退到个人账号
func (p *Provider) ListRepositories(ctx context.Context, owner string) ([]*domain.Repository, error) {
	repos, err := p.listPaged(ctx, func(page int) ([]*github.Repository, *github.Response, error) {
		return p.client.Repositories.ListByOrg(ctx, owner, &github.RepositoryListByOrgOptions{
			Type:        "all",
			ListOptions: github.ListOptions{PerPage: perPage, Page: page},
		})
	})
	if errors.Is(err, common.ErrNotFound) {
		repos, err = p.listPaged(ctx, func(page int) ([]*github.Repository, *github.Response, error) {
			return p.client.Repositories.List(ctx, owner, &github.RepositoryListOptions{
				Type:        "owner",
				ListOptions: github.ListOptions{PerPage: perPage, Page: page},
			})
		})
	}
	if err != nil {
		return nil, common.WrapError(common.ErrCodeGitHubAPI, fmt.Sprintf("列出 %s 的仓库失败", owner), err)
	}

	result := make([]*domain.Repository, 0, len(repos))
	for _, item := range repos {
		result = append(result, toDomain(item))
	}
	return result, nil
}

func (p *Provider) listPaged(ctx context.Context, call func(page int) ([]*github.Repository, *github.Response, error)) ([]*github.Repository, error) {
	var all []*github.Repository
	page := 1
	for {
		var batch []*github.Repository
		var resp *github.Response
		err := common.Do(ctx, func() error {
			var apiErr error
			batch, resp, apiErr = call(page)
			return classify(resp, apiErr)
		}, p.retryOpts...)
		if err != nil {
			return nil, err
		}

		all = append(all, batch...)
		if resp == nil || resp.NextPage == 0 {
			return all, nil
		}
		page = resp.NextPage
	}
}

// FetchFile 读取文件原始内容，不重试
func (p *Provider) FetchFile(ctx context.Context, owner, repo, path, branch string) ([]byte, error) {
	file, _, resp, err := p.client.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: branch})
	if err := classify(resp, err); err != nil {
		return nil, fmt.Errorf("读取 %s/%s/%s 失败: %w", owner, repo, path, err)
	}
	if file == nil {
		// 路径是目录
		return nil, common.NewError(common.ErrCodeNotFound, fmt.Sprintf("%s/%s/%s 不是文件", owner, repo, path))
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("解码 %s/%s/%s 失败: %w", owner, repo, path, err)
	}
	return []byte(content), nil
}

// FetchTree 递归读取分支的文件树，不重试
func (p *Provider) FetchTree(ctx context.Context, owner, repo, branch string) ([]domain.TreeEntry, error) {
	tree, resp, err := p.client.Git.GetTree(ctx, owner, repo, branch, true)
	if err := classify(resp, err); err != nil {
		return nil, fmt.Errorf("读取 %s/%s@%s 文件树失败: %w", owner, repo, branch, err)
	}

	entries := make([]domain.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, domain.TreeEntry{
			Path: e.GetPath(),
			Type: e.GetType(),
			Size: e.GetSize(),
		})
	}
	return entries, nil
}

// classify 把 404 转成 NOT_FOUND，其余错误原样返回
func classify(resp *github.Response, err error) error {
	if err == nil {
		return nil
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return common.WrapError(common.ErrCodeNotFound, "GitHub 资源不存在", err)
	}
	return err
}

// toDomain 将 GitHub 的数据结构转换为 Domain 实体
func toDomain(item *github.Repository) *domain.Repository {
	return &domain.Repository{
		Name:          item.GetName(),
		Description:   item.GetDescription(),
		HTMLURL:       item.GetHTMLURL(),
		Homepage:      item.GetHomepage(),
		Stars:         item.GetStargazersCount(),
		Forks:         item.GetForksCount(),
		UpdatedAt:     item.GetUpdatedAt().Time,
		Language:      item.GetLanguage(),
		Topics:        item.Topics,
		DefaultBranch: item.GetDefaultBranch(),
		Private:       item.GetPrivate(),
	}
}
