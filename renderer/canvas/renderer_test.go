package canvasrenderer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/autowrap/dsl"
	"github.com/ByLCY/autowrap/fonts"
	"github.com/ByLCY/autowrap/layout"
	"github.com/ByLCY/autowrap/wrap"
)

var body = layout.FontResource{Name: "Body", Src: "builtin:goregular", Size: 28}

func TestMeasureIsMonotonic(t *testing.T) {
	r := NewRenderer("")
	short, err := r.Measure("hello", body)
	if err != nil {
		t.Fatalf("Measure error: %v", err)
	}
	long, err := r.Measure("hello world", body)
	if err != nil {
		t.Fatalf("Measure error: %v", err)
	}
	if short <= 0 || long <= short {
		t.Fatalf("expected 0 < short < long, got short=%g long=%g", short, long)
	}
	empty, err := r.Measure("", body)
	if err != nil || empty != 0 {
		t.Fatalf("empty text should measure 0, got %g (%v)", empty, err)
	}
}

func TestMeasureScalesWithSize(t *testing.T) {
	r := NewRenderer("")
	small, _ := r.Measure("message", body)
	big := body
	big.Size = 56
	large, _ := r.Measure("message", big)
	if diff := large - 2*small; diff > 0.5 || diff < -0.5 {
		t.Fatalf("doubling font size should double width: small=%g large=%g", small, large)
	}
}

func TestMeasureFallsBackToBuiltinFont(t *testing.T) {
	r := NewRenderer("")
	missing := layout.FontResource{Name: "Missing", Src: "builtin:does-not-exist", Size: 28}
	got, err := r.Measure("hello", missing)
	if err != nil {
		t.Fatalf("fallback font expected, got error %v", err)
	}
	want, _ := r.Measure("hello", body)
	if got != want {
		t.Fatalf("fallback should use %s: got=%g want=%g", fonts.Default, got, want)
	}
}

func TestInjectedFontResource(t *testing.T) {
	data, err := fonts.Load("gomono")
	if err != nil {
		t.Fatalf("load gomono: %v", err)
	}
	r := NewRendererWithOptions(Options{Fonts: map[string]Resource{"mono": {Bytes: data}}})
	mono := layout.FontResource{Name: "Mono", Src: "builtin:mono", Size: 28}
	i, _ := r.Measure("iiii", mono)
	m, _ := r.Measure("mmmm", mono)
	if diff := i - m; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("monospace font should give equal widths: i=%g m=%g", i, m)
	}
}

// TestWrapWithRealFont 验证真实字体下多词行宽度不超过限制。
func TestWrapWithRealFont(t *testing.T) {
	r := NewRenderer("")
	w := wrap.New(wrap.Policy{OverrideWidth: 300, MergeAcrossLines: true, ChainReflow: true, KeepBlankLines: true},
		wrap.DefaultWindow(), wrap.NewOracle(r.MeasureFunc(body)))
	text := "The harvest festival begins at dawn and everyone in the village is expected to attend\nBring lanterns"
	lines := w.Lines(text, w.Width())
	if len(lines) < 3 {
		t.Fatalf("expected wrapping into several lines, got %q", lines)
	}
	for _, l := range lines {
		if len(strings.Fields(l)) < 2 {
			continue
		}
		if width, _ := r.Measure(l, body); width > w.Width() {
			t.Fatalf("line %q exceeds limit: %g > %g", l, width, w.Width())
		}
	}
	if got := strings.Join(strings.Fields(strings.Join(lines, " ")), " "); got != strings.Join(strings.Fields(text), " ") {
		t.Fatalf("content changed: %q", got)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	src := `script Preview v1 {
  meta {
    title: "Preview"
  }
  window {
    width: 816
  }
  message Elder face on {
    "<center>Welcome to the village"
    "Supercalifragilisticexpialidociousnessesses"
  }
  message Plain {
    "short"
  }
}`
	script, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := NewRenderer("")
	res, err := layout.Build(script, nil, layout.BuildOptions{Measurer: r})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	pdfBytes, err := r.Render(res)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(pdfBytes, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := NewRenderer("")
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("nil result should fail")
	}
	if _, err := r.Render(&layout.Result{}); err == nil {
		t.Fatalf("result without messages should fail")
	}
}

func TestLoadFontPathRequiresBaseDir(t *testing.T) {
	r := NewRenderer("")
	if _, err := r.loadFontBytes(layout.FontResource{Name: "X", Src: "fonts/x.ttf"}); err == nil {
		t.Fatalf("relative font path without base dir should fail")
	}
	if _, err := r.loadFontBytes(layout.FontResource{Name: "X"}); err == nil {
		t.Fatalf("font without src should fail")
	}
}

func TestParseFontStyle(t *testing.T) {
	if got := parseFontStyle("Bold Italic"); got != canvas.FontBold|canvas.FontItalic {
		t.Fatalf("unexpected style %v", got)
	}
	if got := parseFontStyle("SemiBold"); got == parseFontStyle("bold") {
		t.Fatalf("semibold must not collapse into bold")
	}
}
