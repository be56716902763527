package wrap

import "strings"

// tokenize 按单个空格切词，丢弃连续空格产生的空词。
func tokenize(line string) []string {
	parts := strings.Split(line, " ")
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

func isBlank(line string) bool { return strings.TrimSpace(line) == "" }

// Wrap 以贪心策略在空格处把一行拆成多行，每行宽度不超过 limit。
// 单个词本身超宽时原样独占一行，不在词内断开。
// 空行或仅含空白的行返回一个空行，而不是空切片。
func Wrap(line string, limit float64, o *Oracle) []string {
	if isBlank(line) {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, token := range tokenize(line) {
		candidate := token
		if current != "" {
			candidate = current + " " + token
		}
		if o.Fits(candidate, limit) {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = token
			continue
		}
		// 单词独占一行仍超宽
		lines = append(lines, token)
		current = ""
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// findOptimalSplit 返回能放入 limit 的最长词前缀与剩余部分。
// 只要存在至少一个词，fitting 就不为空（最坏情况下是首个超宽的词），
// 以保证重排循环总能前进。
func findOptimalSplit(line string, limit float64, o *Oracle) (fitting, overflow string) {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return "", ""
	}
	for i, token := range tokens {
		candidate := token
		if fitting != "" {
			candidate = fitting + " " + token
		}
		if o.Fits(candidate, limit) {
			fitting = candidate
			continue
		}
		if fitting == "" {
			return token, strings.Join(tokens[i+1:], " ")
		}
		return fitting, strings.Join(tokens[i:], " ")
	}
	return fitting, ""
}
