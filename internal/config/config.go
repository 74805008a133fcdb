package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/Trizly-xyz/trizlySite/internal/adapter/filter"
	"github.com/Trizly-xyz/trizlySite/internal/common"

	"github.com/joho/godotenv"
)

const (
	defaultCacheTTLMs     = 300000
	defaultFetchTimeoutMs = 10000
	defaultConcurrency    = 8
	defaultHTTPAddr       = ":8080"
)

type Config struct {
	Owner         string
	Token         string
	MatchPattern  string
	CacheTTL      time.Duration
	FetchTimeout  time.Duration
	Concurrency   int
	ReadmeFile    string
	ConfigFile    string
	ThumbnailFile string
	StaticFile    string // 为空时使用内置列表
	Debug         bool
	HTTPAddr      string
	PostgresDSN   string // 为空时不记录刷新历史
}

// Load 读取 .env (可选) 和环境变量，并校验结果
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, common.WrapError(common.ErrCodeConfig, "读取 .env 失败", err)
	}

	cfg := LoadConfigWithEnv(os.Getenv)
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigWithEnv 从 getenv 构造配置，不做校验
// 数字格式错误时对应字段为 0，由 ValidateConfig 报告
func LoadConfigWithEnv(getenv func(string) string) Config {
	return Config{
		Owner:         getenv("GITHUB_OWNER"),
		Token:         getenv("GITHUB_TOKEN"),
		MatchPattern:  withDefault(getenv("PORTFOLIO_MATCH_PATTERN"), filter.DefaultPattern),
		CacheTTL:      millis(getenv("PORTFOLIO_CACHE_TTL_MS"), defaultCacheTTLMs),
		FetchTimeout:  millis(getenv("PORTFOLIO_FETCH_TIMEOUT_MS"), defaultFetchTimeoutMs),
		Concurrency:   positiveInt(getenv("PORTFOLIO_CONCURRENCY"), defaultConcurrency),
		ReadmeFile:    withDefault(getenv("PORTFOLIO_README_FILE"), "README.md"),
		ConfigFile:    withDefault(getenv("PORTFOLIO_CONFIG_FILE"), "portfolio.json"),
		ThumbnailFile: withDefault(getenv("PORTFOLIO_THUMBNAIL_FILE"), "thumbnail.png"),
		StaticFile:    getenv("PORTFOLIO_STATIC_FILE"),
		Debug:         getenv("PORTFOLIO_DEBUG") == "true",
		HTTPAddr:      withDefault(getenv("HTTP_ADDR"), defaultHTTPAddr),
		PostgresDSN:   getenv("POSTGRES_DSN"),
	}
}

// ValidateConfig 检查必填项和数值范围
func ValidateConfig(cfg Config) error {
	if cfg.Owner == "" {
		return common.NewError(common.ErrCodeConfig, "GITHUB_OWNER 必须设置")
	}
	if cfg.CacheTTL <= 0 {
		return common.NewError(common.ErrCodeConfig, "PORTFOLIO_CACHE_TTL_MS 必须是正整数")
	}
	if cfg.FetchTimeout <= 0 {
		return common.NewError(common.ErrCodeConfig, "PORTFOLIO_FETCH_TIMEOUT_MS 必须是正整数")
	}
	if cfg.Concurrency <= 0 {
		return common.NewError(common.ErrCodeConfig, "PORTFOLIO_CONCURRENCY 必须是正整数")
	}
	if _, err := filter.NewNameFilter(cfg.MatchPattern); err != nil {
		return common.WrapError(common.ErrCodeConfig, fmt.Sprintf("PORTFOLIO_MATCH_PATTERN 无效: %q", cfg.MatchPattern), err)
	}
	return nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func positiveInt(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func millis(v string, def int) time.Duration {
	return time.Duration(positiveInt(v, def)) * time.Millisecond
}
