package domain

import "time"

// Origin marks where a portfolio entry came from.
type Origin string

const (
	OriginStatic  Origin = "static"
	OriginDynamic Origin = "dynamic"
)

// Repository is the provider's view of a single repository.
type Repository struct {
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	HTMLURL       string    `json:"html_url,omitempty"`
	Homepage      string    `json:"homepage,omitempty"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	UpdatedAt     time.Time `json:"updated_at"`
	Language      string    `json:"language,omitempty"`
	Topics        []string  `json:"topics,omitempty"`
	DefaultBranch string    `json:"default_branch"`
	Private       bool      `json:"private"`
}

// Portfolio is the normalized entry handed to callers.
// Static entries come from configuration; dynamic ones are rebuilt on every refresh.
type Portfolio struct {
	Name          string    `json:"name" yaml:"name"`
	Slug          string    `json:"slug" yaml:"slug"`
	Description   string    `json:"description" yaml:"description"`
	Repository    string    `json:"repository,omitempty" yaml:"-"`
	RepositoryURL string    `json:"repository_url,omitempty" yaml:"-"`
	Homepage      string    `json:"homepage,omitempty" yaml:"homepage"`
	Stars         int       `json:"stars" yaml:"stars"`
	Forks         int       `json:"forks" yaml:"forks"`
	UpdatedAt     time.Time `json:"updated_at,omitempty" yaml:"updated_at"`
	Language      string    `json:"language,omitempty" yaml:"language"`
	Topics        []string  `json:"topics,omitempty" yaml:"topics"`
	DefaultBranch string    `json:"default_branch,omitempty" yaml:"default_branch"`
	Thumbnail     string    `json:"thumbnail,omitempty" yaml:"thumbnail"`
	Origin        Origin    `json:"origin" yaml:"-"`
	Featured      bool      `json:"featured" yaml:"featured"`
	Private       bool      `json:"private" yaml:"private"`
}

// IsDynamic reports whether the entry is backed by a live repository.
func (p *Portfolio) IsDynamic() bool {
	return p.Origin == OriginDynamic
}

// RepoConfig is the optional per-repository overlay read from the config file.
// Nil fields were not set in the file.
type RepoConfig struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Thumbnail   *string `json:"thumbnail,omitempty"`
	Featured    *bool   `json:"featured,omitempty"`
}

// TreeEntry is one node of a repository's file tree.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "blob" or "tree"
	Size int    `json:"size,omitempty"`
}

// PortfolioContent is a dynamic entry with its README and file tree.
// Readme and Tree are nil when the corresponding fetch failed.
type PortfolioContent struct {
	Portfolio
	Readme *string     `json:"readme"`
	Tree   []TreeEntry `json:"tree"`
}

// RefreshRecord 记录一次缓存刷新的结果
type RefreshRecord struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Owner         string    `json:"owner" gorm:"index"`
	StartedAt     time.Time `json:"started_at" gorm:"index"`
	DurationMs    int64     `json:"duration_ms"`
	Matched       int       `json:"matched"`
	Dynamic       int       `json:"dynamic"`
	Static        int       `json:"static"`
	Dropped       int       `json:"dropped"`
	ProviderError string    `json:"provider_error,omitempty" gorm:"type:text"`
}

// Degraded 判断这次刷新是否没有拿到完整数据
func (r *RefreshRecord) Degraded() bool {
	return r.ProviderError != "" || r.Dropped > 0
}
