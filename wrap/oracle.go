package wrap

import (
	"fmt"
	"log/slog"
	"math"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// DefaultPerCharEstimate 是无法测量时每个字符的估算宽度（px）。
const DefaultPerCharEstimate = 24.0

// MeasureFunc 返回文本在当前字体度量下的像素宽度。
type MeasureFunc func(text string) (float64, error)

// Oracle 把文本映射为宽度。测量后端缺失、出错、panic 或返回非有限值时
// 退回到按字符估算，保证结果始终有限且非负。
type Oracle struct {
	measure   MeasureFunc
	perChar   float64
	wideCells bool
	logger    *slog.Logger
}

// OracleOption 配置 Oracle。
type OracleOption func(*Oracle)

// WithEstimate 设置每字符估算宽度，<=0 时使用默认值。
func WithEstimate(perChar float64) OracleOption {
	return func(o *Oracle) {
		if perChar > 0 && !math.IsInf(perChar, 0) {
			o.perChar = perChar
		}
	}
}

// WithWideCells 让估算把全角/宽字符计为 2 个字符宽，默认关闭。
func WithWideCells(on bool) OracleOption {
	return func(o *Oracle) { o.wideCells = on }
}

// WithLogger 设置记录测量回退的 logger。
func WithLogger(l *slog.Logger) OracleOption {
	return func(o *Oracle) { o.logger = l }
}

// NewOracle 创建一个 Oracle，fn 可以为 nil（此时只使用估算）。
func NewOracle(fn MeasureFunc, opts ...OracleOption) *Oracle {
	o := &Oracle{measure: fn, perChar: DefaultPerCharEstimate}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Measure 返回 text 的宽度，永不 panic。
func (o *Oracle) Measure(text string) float64 {
	if o == nil {
		return EstimateWidth(text, DefaultPerCharEstimate)
	}
	if o.measure == nil {
		return o.estimate(text)
	}
	w, err := o.call(text)
	if err == nil && (math.IsNaN(w) || math.IsInf(w, 0) || w < 0) {
		err = fmt.Errorf("invalid width %v", w)
	}
	if err != nil {
		if o.logger != nil {
			o.logger.Debug("measure fallback", "text", text, "err", err)
		}
		return o.estimate(text)
	}
	return w
}

func (o *Oracle) estimate(text string) float64 {
	if o.wideCells {
		return EstimateCellWidth(text, o.perChar)
	}
	return EstimateWidth(text, o.perChar)
}

func (o *Oracle) call(text string) (w float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("measure panicked: %v", r)
		}
	}()
	return o.measure(text)
}

// Fits 判断 text 是否能放入 limit。
func (o *Oracle) Fits(text string, limit float64) bool {
	return o.Measure(text) <= limit
}

// EstimateWidth 按字符数估算宽度：字符数 × perChar。
func EstimateWidth(text string, perChar float64) float64 {
	return float64(utf8.RuneCountInString(text)) * validPerChar(perChar)
}

// EstimateCellWidth 与 EstimateWidth 相同，但全角/宽字符计 2 格。
func EstimateCellWidth(text string, perChar float64) float64 {
	cells := 0
	for _, r := range text {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			cells += 2
		default:
			cells++
		}
	}
	return float64(cells) * validPerChar(perChar)
}

func validPerChar(perChar float64) float64 {
	if perChar <= 0 || math.IsNaN(perChar) || math.IsInf(perChar, 0) {
		return DefaultPerCharEstimate
	}
	return perChar
}
