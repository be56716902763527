package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/autowrap/fonts"
	"github.com/ByLCY/autowrap/layout"
	"github.com/ByLCY/autowrap/renderer"
	"github.com/ByLCY/autowrap/wrap"
)

const frameStrokeWidth = 0.4 // mm

var (
	windowFill = canvas.Hex("#1b2338")
	frameColor = canvas.Hex("#d8dee9")
	faceFill   = canvas.Hex("#3b4252")
	textColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	overflowBg = canvas.Hex("#bf616a")
)

// Renderer measures text and draws message window previews via github.com/tdewolff/canvas.
type Renderer struct {
	baseDir string

	fontBlobs map[string][]byte // by unique name

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // fonts accessible via builtin:<name>
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // 读取失败时在使用字体时报错
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// Measure 实现 layout.Measurer：font.Size 为 px，返回值同样为 px。
// canvas 内部使用 pt 作为字号、mm 作为长度，在边界做 px↔pt↔mm 换算。
func (r *Renderer) Measure(text string, font layout.FontResource) (float64, error) {
	face, err := r.fontFace(font, textColor)
	if err != nil {
		return 0, err
	}
	return toPx(face.TextWidth(text)), nil
}

// MeasureFunc 返回绑定了字体的 wrap.MeasureFunc，供不经过脚本的调用方使用。
func (r *Renderer) MeasureFunc(font layout.FontResource) wrap.MeasureFunc {
	return func(text string) (float64, error) { return r.Measure(text, font) }
}

// Render 为每条消息绘制一页窗口预览并输出 PDF。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("排版结果为空")
	}
	if len(result.Messages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的消息")
	}

	var buf bytes.Buffer
	var writer *pdf.PDF
	for i, msg := range result.Messages {
		width, height := pageSize(result.Window, msg)
		if i == 0 {
			writer = pdf.New(&buf, width, height, nil)
			r.applyMeta(writer, result.Meta)
		} else {
			writer.NewPage(width, height)
		}
		c := canvas.New(width, height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与窗口保持左上角为原点

		if err := r.drawMessage(ctx, result.Window, msg, width, height); err != nil {
			return nil, fmt.Errorf("渲染消息 %s 失败: %w", msg.Name, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.ScriptMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// pageSize 返回窗口预览页的宽高（mm）。
func pageSize(window wrap.Window, msg layout.Message) (float64, float64) {
	widthPx := window.ContainerWidth
	if widthPx <= 0 {
		widthPx = msg.AvailableWidth + 2*window.Padding
	}
	heightPx := msg.Height + 2*window.Padding
	if heightPx <= 0 {
		heightPx = msg.LineHeight
	}
	return toMm(widthPx), toMm(heightPx)
}

func (r *Renderer) drawMessage(ctx *canvas.Context, window wrap.Window, msg layout.Message, width, height float64) error {
	ctx.SetFillColor(windowFill)
	ctx.SetStrokeColor(frameColor)
	ctx.SetStrokeWidth(frameStrokeWidth)
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))

	padding := toMm(window.Padding)
	left := padding
	if msg.Face {
		faceSize := window.FaceWidth
		if faceSize <= 0 {
			faceSize = wrap.DefaultFaceWidth
		}
		ctx.SetFillColor(faceFill)
		ctx.SetStrokeColor(frameColor)
		ctx.DrawPath(padding, padding, canvas.Rectangle(toMm(faceSize), toMm(faceSize)))
		left += toMm(window.FaceReservation())
	}

	face, err := r.fontFace(msg.Font, textColor)
	if err != nil {
		return err
	}
	metrics := face.Metrics()
	avail := toMm(msg.AvailableWidth)
	lineHeight := toMm(msg.LineHeight)
	cursorY := padding
	for _, line := range msg.Lines {
		if line.Overflow {
			ctx.SetFillColor(overflowBg)
			ctx.SetStrokeColor(color.Transparent)
			ctx.DrawPath(left, cursorY, canvas.Rectangle(toMm(line.Width), lineHeight))
		}
		var textAlign canvas.TextAlign
		anchorX := left
		switch line.Align {
		case "center":
			textAlign = canvas.Center
			anchorX = left + avail/2
		case "right":
			textAlign = canvas.Right
			anchorX = left + avail
		default:
			textAlign = canvas.Left
		}
		// 基线位置：行顶部加上字体上升部
		ctx.DrawText(anchorX, cursorY+metrics.Ascent, canvas.NewTextLine(face, line.Content, textAlign))
		cursorY += lineHeight
	}
	return nil
}

func (r *Renderer) fontFace(font layout.FontResource, col color.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	size := font.Size
	if size <= 0 {
		size = 28
	}
	return family.Face(size*layout.PxToPt, col, style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Name
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, font, style); err != nil {
		fallback, fbStyle, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	r.fontFamilies[key] = &fontFamilyEntry{family: family, style: style}
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font layout.FontResource, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	src := font.Src
	if src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	for _, prefix := range []string{"builtin:", "built-in:", "embed:"} {
		if !strings.HasPrefix(src, prefix) {
			continue
		}
		name := strings.TrimPrefix(src, prefix)
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return fonts.Load(name)
	}
	path := src
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

// fallback 在调用方持有 fontMu 时使用。
func (r *Renderer) fallback() (*canvas.FontFamily, canvas.FontStyle, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Load(fonts.Default)
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("autowrap-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
}

// toPx 将毫米(mm)转换为像素(px)。
func toPx(mm float64) float64 { return mm * layout.MmToPx }

// toMm 将像素(px)转换为毫米(mm)。
func toMm(px float64) float64 { return px * layout.PxToMm }
