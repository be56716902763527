package wrap

// canMerge 判断下一逻辑行能否接收溢出片段。空行和自带控制码的行都是合并屏障。
func canMerge(next string) bool {
	return !isBlank(next) && !HasControlCode(next)
}

// Reflow 从 lines[start] 开始处理一个重排片段，返回输出的物理行以及下一个待处理的下标。
//
// 当前文本放得下时原样输出；放不下且未开启链式重排时直接折行；
// 开启链式重排时输出最长可容纳前缀，并把溢出部分并入下一逻辑行后重新判断，
// 直到放得下或遇到合并屏障。每轮要么输出一行要么推进游标，因此必然终止。
func (w *Wrapper) Reflow(lines []string, start int, limit float64) ([]string, int) {
	if start < 0 {
		start = 0
	}
	if start >= len(lines) {
		return nil, len(lines)
	}

	line := lines[start]
	if isBlank(line) {
		return []string{""}, start + 1
	}
	code, current := ExtractControlCode(line)
	if code != "" && isBlank(current) {
		return []string{line}, start + 1
	}

	var out []string
	emit := func(s string) {
		if len(out) == 0 && code != "" {
			s = code + s
		}
		out = append(out, s)
	}
	emitWrapped := func(s string) {
		for _, l := range Wrap(s, limit, w.oracle) {
			emit(l)
		}
	}

	i := start
	for {
		if w.oracle.Fits(current, limit) {
			emit(current)
			return out, i + 1
		}
		if !w.policy.ChainReflow {
			emitWrapped(current)
			return out, i + 1
		}

		fitting, overflow := findOptimalSplit(current, limit, w.oracle)
		if fitting != "" {
			emit(fitting)
		}
		if overflow == "" {
			return out, i + 1
		}
		if i+1 < len(lines) && canMerge(lines[i+1]) {
			current = overflow + " " + lines[i+1]
			i++
			continue
		}
		emitWrapped(overflow)
		return out, i + 1
	}
}
