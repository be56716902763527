package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ByLCY/autowrap/wrap"
)

var (
	exprPattern   = regexp.MustCompile(`\$\{([^}]+)\}`)
	escapePattern = regexp.MustCompile(`(?i)\\([VN])\[(\d+)\]`)
)

// Expand 是折行之前的原始文本生成阶段：
// 将 ${path.to.value} 替换为 data 中的值，\V[n] 替换为 variables 的第 n 项，
// \N[n] 替换为 actors 第 n 项的 name（n 从 1 开始）。
// 对齐控制码不做处理；无法解析的占位符原样保留。
func Expand(text string, data any) string {
	if data == nil {
		return text
	}
	text = escapePattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := escapePattern.FindStringSubmatch(match)
		n, err := strconv.Atoi(groups[2])
		if err != nil || n < 1 {
			return match
		}
		path := fmt.Sprintf("variables[%d]", n-1)
		if strings.EqualFold(groups[1], "N") {
			path = fmt.Sprintf("actors[%d].name", n-1)
		}
		if val, ok := resolvePath(data, path); ok {
			return fmt.Sprint(val)
		}
		return match
	})
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := resolvePath(data, path); ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

// Producer 返回绑定了 data 的 wrap.RawTextFunc。
func Producer(data any) wrap.RawTextFunc {
	return func(text string) string { return Expand(text, data) }
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			m, ok := current.(map[string]any)
			if !ok {
				return nil, false
			}
			if current, ok = m[name]; !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			arr, ok := current.([]any)
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// parseSegment 拆出 "items[0][1]" 形式的字段名与下标。
func parseSegment(segment string) (string, []string) {
	i := strings.Index(segment, "[")
	if i == -1 {
		return segment, nil
	}
	name, rest := segment[:i], segment[i:]
	var indexes []string
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			break
		}
		indexes = append(indexes, rest[1:end])
		rest = rest[end+1:]
	}
	return name, indexes
}
