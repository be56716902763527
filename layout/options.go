package layout

import (
	"log/slog"

	"github.com/ByLCY/autowrap/config"
)

// BuildOptions 配置布局阶段所需的依赖，例如测量后端。
type BuildOptions struct {
	Measurer Measurer
	Defaults config.Config // 脚本未声明的策略与窗口度量取自这里
	Logger   *slog.Logger
	Debug    DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	LineStats bool // 在调试 JSON 中输出每条消息的行数统计
}

// Measurer 返回文本在指定字体下的像素宽度。
type Measurer interface {
	Measure(text string, font FontResource) (float64, error)
}
