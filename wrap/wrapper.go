package wrap

import "strings"

// RawTextFunc 是宿主的原始文本生成阶段（例如转义码展开），在折行之前调用。
type RawTextFunc func(text string) string

// Wrapper 把整条消息按策略折行。构造后只读，可在多个 goroutine 间共享。
type Wrapper struct {
	policy Policy
	window Window
	oracle *Oracle
	width  float64
}

// New 创建 Wrapper，并按 policy 与 window 推导可用宽度。
func New(policy Policy, window Window, oracle *Oracle) *Wrapper {
	if oracle == nil {
		oracle = NewOracle(nil)
	}
	return &Wrapper{
		policy: policy,
		window: window,
		oracle: oracle,
		width:  AvailableWidth(policy, window),
	}
}

// Policy 返回构造时的策略。
func (w *Wrapper) Policy() Policy { return w.policy }

// Width 返回推导出的可用宽度。
func (w *Wrapper) Width() float64 { return w.width }

// Oracle 返回使用中的宽度测量器。
func (w *Wrapper) Oracle() *Oracle { return w.oracle }

// Process 先调用 produce 生成原始文本，再执行折行。produce 为 nil 时直接折行。
func (w *Wrapper) Process(text string, produce RawTextFunc) string {
	if produce != nil {
		text = produce(text)
	}
	return w.Apply(text)
}

// Apply 使用推导出的可用宽度折行。
func (w *Wrapper) Apply(text string) string {
	return w.ApplyWidth(text, w.width)
}

// ApplyWidth 使用给定宽度折行，输出沿用输入的换行风格（\n 或 \r\n）。
func (w *Wrapper) ApplyWidth(text string, limit float64) string {
	newline := "\n"
	if strings.Contains(text, "\r\n") {
		newline = "\r\n"
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	return strings.Join(w.Lines(text, limit), newline)
}

// Lines 把以 \n 分隔的文本折成物理行。
func (w *Wrapper) Lines(text string, limit float64) []string {
	logical := strings.Split(text, "\n")
	if !w.policy.KeepBlankLines {
		kept := logical[:0]
		for _, l := range logical {
			if !isBlank(l) {
				kept = append(kept, l)
			}
		}
		logical = kept
	}

	out := make([]string, 0, len(logical))
	if !w.policy.MergeAcrossLines {
		for _, l := range logical {
			out = append(out, WrapAligned(l, limit, w.oracle)...)
		}
		return out
	}

	for i := 0; i < len(logical); {
		emitted, next := w.Reflow(logical, i, limit)
		out = append(out, emitted...)
		i = next
	}
	return out
}
