package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/Trizly-xyz/trizlySite/internal/common"
	"github.com/Trizly-xyz/trizlySite/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed static_portfolios.yaml
var builtinStatic []byte

type staticFile struct {
	Portfolios []domain.Portfolio `yaml:"portfolios"`
}

// LoadStaticEntries 读取静态条目，path 为空时使用内置列表
func LoadStaticEntries(path string) ([]domain.Portfolio, error) {
	if path == "" {
		return ParseStaticEntries(builtinStatic)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeConfig, fmt.Sprintf("读取静态条目文件 %s 失败", path), err)
	}
	return ParseStaticEntries(raw)
}

// ParseStaticEntries 解析 YAML 并补全 slug
func ParseStaticEntries(raw []byte) ([]domain.Portfolio, error) {
	var file staticFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, common.WrapError(common.ErrCodeConfig, "解析静态条目失败", err)
	}

	entries := make([]domain.Portfolio, 0, len(file.Portfolios))
	for i, entry := range file.Portfolios {
		entry.Name = strings.TrimSpace(entry.Name)
		if entry.Name == "" {
			return nil, common.NewError(common.ErrCodeConfig, fmt.Sprintf("第 %d 个静态条目缺少 name", i+1))
		}
		if entry.Slug == "" {
			entry.Slug = strings.ToLower(entry.Name)
		}
		entry.Origin = domain.OriginStatic
		entries = append(entries, entry)
	}
	return entries, nil
}
