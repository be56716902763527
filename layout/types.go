package layout

import "github.com/ByLCY/autowrap/wrap"

// 该文件定义消息排版结果，供 CLI、预览渲染与调试 JSON 共用。宽度单位均为 px。

// Result 保存一个脚本中所有消息的折行结果。
type Result struct {
	Name     string       `json:"name"`
	Policy   wrap.Policy  `json:"policy"`
	Window   wrap.Window  `json:"window"`
	Font     FontResource `json:"font"`
	Messages []Message    `json:"messages"`
	Meta     ScriptMeta   `json:"meta"`
}

// FontResource 描述用于测量的字体，src 可以是文件路径或 builtin:* 形式。
type FontResource struct {
	Name  string  `json:"name"`
	Src   string  `json:"src"`
	Style string  `json:"style,omitempty"`
	Size  float64 `json:"size"` // px
}

// Message 是一条折行后的消息。
type Message struct {
	Name           string        `json:"name"`
	Face           bool          `json:"face"`
	Font           FontResource  `json:"font"`
	Policy         wrap.Policy   `json:"policy"`
	AvailableWidth float64       `json:"availableWidth"`
	LineHeight     float64       `json:"lineHeight"`
	Source         string        `json:"source"` // 原始文本生成阶段之后、折行之前的文本
	Text           string        `json:"text"`   // 折行结果，以 \n 连接
	Lines          []TextLine    `json:"lines"`
	Height         float64       `json:"height"`
	Debug          *MessageDebug `json:"debug,omitempty"`
}

// TextLine 表示一行物理文本；Content 不含控制码，Raw 为原样输出。
type TextLine struct {
	Content  string  `json:"content"`
	Raw      string  `json:"raw"`
	Width    float64 `json:"width"`
	Align    string  `json:"align,omitempty"`
	Overflow bool    `json:"overflow,omitempty"` // 单词独占一行仍超宽
}

// MessageDebug holds optional debug info displayed only when enabled by BuildOptions.
type MessageDebug struct {
	LogicalLines  int `json:"logicalLines"`
	PhysicalLines int `json:"physicalLines"`
	BlankLines    int `json:"blankLines"`
}

// ScriptMeta 保存脚本元信息，也用作预览 PDF 的元信息。
type ScriptMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
