package wrap

import (
	"regexp"
	"strings"
)

// controlPattern 匹配对齐控制码，大小写不敏感。
var controlPattern = regexp.MustCompile(`(?i)<(?:left|center|right)>`)

// ExtractControlCode 取出行内第一个对齐控制码，并返回去掉该控制码后的文本。
// 没有控制码时 code 为空，remainder 即原行。
func ExtractControlCode(line string) (code, remainder string) {
	loc := controlPattern.FindStringIndex(line)
	if loc == nil {
		return "", line
	}
	return line[loc[0]:loc[1]], line[:loc[0]] + line[loc[1]:]
}

// HasControlCode 判断行内是否包含对齐控制码。
func HasControlCode(line string) bool {
	return controlPattern.MatchString(line)
}

// Alignment 把控制码转换为 left/center/right，空控制码视为 left。
func Alignment(code string) string {
	a := strings.ToLower(strings.Trim(code, "<>"))
	switch a {
	case "center", "right":
		return a
	default:
		return "left"
	}
}

// WrapAligned 在 Wrap 的基础上保留对齐控制码：控制码只出现在第一行。
// 去掉控制码后为空白的行原样返回，不参与折行。
func WrapAligned(line string, limit float64, o *Oracle) []string {
	code, rest := ExtractControlCode(line)
	if code == "" {
		return Wrap(line, limit, o)
	}
	if isBlank(rest) {
		return []string{line}
	}
	lines := Wrap(rest, limit, o)
	lines[0] = code + lines[0]
	return lines
}
