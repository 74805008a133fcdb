package port

import (
	"context"

	"github.com/Trizly-xyz/trizlySite/internal/domain"
)

// RepoProvider (数据源): 仓库托管平台的最小读接口
// 找不到资源时返回的错误满足 errors.Is(err, common.ErrNotFound)
type RepoProvider interface {
	// 列出某个账号 (组织或个人) 下的全部仓库
	ListRepositories(ctx context.Context, owner string) ([]*domain.Repository, error)

	// 读取指定分支上某个文件的原始内容
	FetchFile(ctx context.Context, owner, repo, path, branch string) ([]byte, error)

	// 递归读取指定分支的完整文件树
	FetchTree(ctx context.Context, owner, repo, branch string) ([]domain.TreeEntry, error)
}

// RefreshLog (刷新记录): 保存每次缓存刷新的统计信息
type RefreshLog interface {
	Record(ctx context.Context, record *domain.RefreshRecord) error

	// 最近的 N 条记录，按开始时间倒序
	Recent(ctx context.Context, limit int) ([]*domain.RefreshRecord, error)
}
