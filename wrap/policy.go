package wrap

import "math"

// 该文件定义折行策略与可用宽度的推导，宽度单位统一为像素（px）。

// 与消息窗口相关的默认度量。
const (
	DefaultPadding     = 18.0
	DefaultFaceWidth   = 144.0
	DefaultFaceMargin  = 20.0
	DefaultSafetyRatio = 0.95
	DefaultMinWidth    = 200.0
)

// Policy 是进程级只读的折行策略，启动时构造一次后按值传递。
type Policy struct {
	OverrideWidth    float64 `json:"overrideWidth" yaml:"override-width"` // 0 表示自动推导
	MergeAcrossLines bool    `json:"mergeAcrossLines" yaml:"merge-with-next-line"`
	ChainReflow      bool    `json:"chainReflow" yaml:"chain-wrapping"`
	KeepBlankLines   bool    `json:"keepBlankLines" yaml:"preserve-empty-lines"`
}

// DefaultPolicy 返回默认策略：合并、链式重排、保留空行均开启。
func DefaultPolicy() Policy {
	return Policy{MergeAcrossLines: true, ChainReflow: true, KeepBlankLines: true}
}

// Window 描述宿主消息窗口的度量，由调用方显式传入。
type Window struct {
	ContainerWidth float64 `json:"containerWidth" yaml:"width"`
	Padding        float64 `json:"padding" yaml:"padding"`
	Face           bool    `json:"face" yaml:"face"` // 是否显示头像
	FaceWidth      float64 `json:"faceWidth" yaml:"face-width"`
	FaceMargin     float64 `json:"faceMargin" yaml:"face-margin"`
	SafetyRatio    float64 `json:"safetyRatio" yaml:"ratio"`
	MinWidth       float64 `json:"minWidth" yaml:"min-width"`
}

// DefaultWindow 返回 816px 宽的默认窗口。
func DefaultWindow() Window {
	return Window{
		ContainerWidth: 816,
		Padding:        DefaultPadding,
		FaceWidth:      DefaultFaceWidth,
		FaceMargin:     DefaultFaceMargin,
		SafetyRatio:    DefaultSafetyRatio,
		MinWidth:       DefaultMinWidth,
	}
}

// FaceReservation 返回头像占用的水平宽度，无头像时为 0。
func (w Window) FaceReservation() float64 {
	if !w.Face {
		return 0
	}
	face := w.FaceWidth
	if face <= 0 {
		face = DefaultFaceWidth
	}
	margin := w.FaceMargin
	if margin < 0 {
		margin = DefaultFaceMargin
	}
	return face + margin
}

// AvailableWidth 推导单行可用宽度。
// 结果永远不小于 MinWidth（未设置时为 DefaultMinWidth），覆盖宽度同样受此约束。
func AvailableWidth(p Policy, w Window) float64 {
	minWidth := w.MinWidth
	if minWidth <= 0 {
		minWidth = DefaultMinWidth
	}
	if p.OverrideWidth > 0 && !math.IsInf(p.OverrideWidth, 0) {
		return math.Max(p.OverrideWidth, minWidth)
	}

	padding := w.Padding
	if padding < 0 {
		padding = DefaultPadding
	}
	ratio := w.SafetyRatio
	if ratio <= 0 || ratio > 1 || math.IsNaN(ratio) {
		ratio = DefaultSafetyRatio
	}

	base := w.ContainerWidth - padding*2 - w.FaceReservation()
	usable := math.Floor(base * ratio)
	if math.IsNaN(usable) || usable < minWidth {
		return minWidth
	}
	return usable
}
