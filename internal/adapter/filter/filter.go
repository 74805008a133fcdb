package filter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Trizly-xyz/trizlySite/internal/common"
	"github.com/Trizly-xyz/trizlySite/internal/domain"
)

// DefaultPattern 作品集仓库的默认命名规则: portfolio 前缀 + 项目名
const DefaultPattern = `^portfolio(.+)$`

// NameFilter 按命名规则识别作品集仓库
type NameFilter struct {
	pattern *regexp.Regexp
}

// NewNameFilter 编译命名规则，总是大小写不敏感
// 规则必须至少包含一个捕获组，第一个捕获组即项目名
func NewNameFilter(pattern string) (*NameFilter, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !strings.HasPrefix(pattern, "(?i)") {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeConfig, fmt.Sprintf("命名规则 %q 无效", pattern), err)
	}
	if re.NumSubexp() < 1 {
		return nil, common.NewError(common.ErrCodeConfig, fmt.Sprintf("命名规则 %q 缺少捕获组", pattern))
	}

	return &NameFilter{pattern: re}, nil
}

// MustNameFilter 同 NewNameFilter，规则无效时 panic
func MustNameFilter(pattern string) *NameFilter {
	f, err := NewNameFilter(pattern)
	if err != nil {
		panic(err)
	}
	return f
}

// Matches 判断仓库名是否符合命名规则
func (f *NameFilter) Matches(name string) bool {
	return f.pattern.MatchString(name)
}

// Extract 从仓库名提取展示名
// 匹配时返回首字母大写的捕获部分，否则原样返回
func (f *NameFilter) Extract(name string) string {
	m := f.pattern.FindStringSubmatch(name)
	if m == nil || m[1] == "" {
		return name
	}
	return upperFirst(m[1])
}

// Filter 返回名字符合规则的仓库，保持原有顺序
// 不匹配的仓库直接跳过，大部分仓库本来就不是作品集
func (f *NameFilter) Filter(repos []*domain.Repository) []*domain.Repository {
	var filtered []*domain.Repository
	for _, repo := range repos {
		if repo != nil && f.Matches(repo.Name) {
			filtered = append(filtered, repo)
		}
	}
	return filtered
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
