package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/autowrap/dsl"
)

// stubMeasurer 按每字节 20px 计算宽度，避免测试依赖真实字体。
type stubMeasurer struct {
	fonts []string
}

func (s *stubMeasurer) Measure(text string, font FontResource) (float64, error) {
	s.fonts = append(s.fonts, font.Name)
	return float64(len(text)) * 20, nil
}

type failingMeasurer struct{}

func (failingMeasurer) Measure(string, FontResource) (float64, error) {
	return 0, errors.New("font not loaded")
}

func buildScript(t *testing.T, src string, data any, opts BuildOptions) *Result {
	t.Helper()
	script, err := dsl.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("解析脚本失败: %v", err)
	}
	if opts.Measurer == nil {
		opts.Measurer = &stubMeasurer{}
	}
	res, err := Build(script, data, opts)
	if err != nil {
		t.Fatalf("排版失败: %v", err)
	}
	return res
}

func contents(m Message) []string {
	out := make([]string, 0, len(m.Lines))
	for _, l := range m.Lines {
		out = append(out, l.Raw)
	}
	return out
}

const narrowScript = `script T v1 {
  policy {
    override-width: 100
  }
  window {
    min-width: 40
    line-height: 30
  }
  message A {
    "aa bb cc"
    "dd"
  }
  message B merge off {
    "aa bb cc"
    "dd"
  }
  message C {
    "<center>hello"
    "unbreakable"
  }
}`

func TestBuildReflowsMessages(t *testing.T) {
	res := buildScript(t, narrowScript, nil, BuildOptions{})
	if len(res.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(res.Messages))
	}

	a := res.Messages[0]
	if got := contents(a); strings.Join(got, "|") != "aa bb|cc dd" {
		t.Fatalf("message A: unexpected lines %q", got)
	}
	if a.AvailableWidth != 100 {
		t.Fatalf("message A: expected width 100, got %g", a.AvailableWidth)
	}
	if a.Height != 60 {
		t.Fatalf("message A: expected height 60, got %g", a.Height)
	}

	b := res.Messages[1]
	if b.Policy.MergeAcrossLines {
		t.Fatalf("message B: merge should be disabled by argument")
	}
	if got := contents(b); strings.Join(got, "|") != "aa bb|cc|dd" {
		t.Fatalf("message B: unexpected lines %q", got)
	}
}

func TestBuildAlignmentAndOverflow(t *testing.T) {
	res := buildScript(t, narrowScript, nil, BuildOptions{})
	c := res.Messages[2]
	if len(c.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", contents(c))
	}
	first := c.Lines[0]
	if first.Align != "center" || first.Content != "hello" || first.Raw != "<center>hello" {
		t.Fatalf("unexpected first line: %+v", first)
	}
	if first.Width != 100 || first.Overflow {
		t.Fatalf("first line should fit exactly: %+v", first)
	}
	second := c.Lines[1]
	if !second.Overflow || second.Align != "left" {
		t.Fatalf("unsplittable word should be flagged: %+v", second)
	}
}

func TestBuildBindsData(t *testing.T) {
	src := `script T v1 {
  policy {
    width: 100
  }
  window {
    min-width: 40
  }
  message A {
    "${actor.name} waits"
  }
}`
	data := map[string]any{"actor": map[string]any{"name": "Zed"}}
	res := buildScript(t, src, data, BuildOptions{})
	m := res.Messages[0]
	if m.Source != "Zed waits" {
		t.Fatalf("unexpected source %q", m.Source)
	}
	if m.Text != "Zed\nwaits" {
		t.Fatalf("unexpected text %q", m.Text)
	}
}

func TestBuildFaceReservesWidth(t *testing.T) {
	src := `script T v1 {
  message Plain {
    "x"
  }
  message Portrait face on {
    "x"
  }
}`
	res := buildScript(t, src, nil, BuildOptions{})
	if got := res.Messages[0].AvailableWidth; got != 741 {
		t.Fatalf("expected 741 without face, got %g", got)
	}
	if got := res.Messages[1].AvailableWidth; got != 585 {
		t.Fatalf("expected 585 with face, got %g", got)
	}
	if !res.Messages[1].Face {
		t.Fatalf("face flag not recorded")
	}
}

func TestBuildUsesDeclaredFonts(t *testing.T) {
	src := `script T v1 {
  resources {
    font Body {
      src: "builtin:goregular"
      size: 28px
    }
    font Title {
      src: "builtin:gobold"
    }
  }
  message A {
    "x"
  }
  message B font Title {
    "y"
  }
}`
	m := &stubMeasurer{}
	res := buildScript(t, src, nil, BuildOptions{Measurer: m})
	if res.Font.Name != "Body" || res.Font.Size != 28 {
		t.Fatalf("unexpected script font: %+v", res.Font)
	}
	if len(m.fonts) == 0 || m.fonts[len(m.fonts)-1] != "Title" {
		t.Fatalf("message B should be measured with Title, got %v", m.fonts)
	}
}

func TestBuildFallsBackToEstimate(t *testing.T) {
	src := `script T v1 {
  message A {
    "ab"
  }
}`
	res := buildScript(t, src, nil, BuildOptions{Measurer: failingMeasurer{}})
	if got := res.Messages[0].Lines[0].Width; got != 48 {
		t.Fatalf("expected estimate 48, got %g", got)
	}
}

func TestBuildEstimateWideCells(t *testing.T) {
	src := `script T v1 {
  message A {
    "你好"
  }
}`
	res := buildScript(t, src, nil, BuildOptions{Measurer: failingMeasurer{}})
	if got := res.Messages[0].Lines[0].Width; got != 48 {
		t.Fatalf("expected rune-count estimate 48, got %g", got)
	}

	src = "script T v1 {\n  policy {\n    wide-cells: on\n  }\n  message A {\n    \"你好\"\n  }\n}"
	res = buildScript(t, src, nil, BuildOptions{Measurer: failingMeasurer{}})
	if got := res.Messages[0].Lines[0].Width; got != 96 {
		t.Fatalf("expected wide-cell estimate 96, got %g", got)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]string{
		"no messages":   `script T v1 { meta { title: "x" } }`,
		"policy field":  "script T v1 {\n policy {\n wrap-all: true\n }\n message A { \"x\" }\n}",
		"bad bool":      `script T v1 { message A merge maybe { "x" } }`,
		"unknown font":  `script T v1 { message A font Missing { "x" } }`,
		"bad ratio":     "script T v1 {\n window {\n ratio: 2\n }\n message A { \"x\" }\n}",
		"negative size": "script T v1 {\n window {\n padding: -3\n }\n message A { \"x\" }\n}",
	}
	for name, src := range cases {
		script, err := dsl.ParseString(src)
		if err != nil {
			t.Fatalf("%s: 解析失败: %v", name, err)
		}
		if _, err := Build(script, nil, BuildOptions{Measurer: &stubMeasurer{}}); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Build(nil, nil, BuildOptions{}); err == nil {
		t.Fatalf("nil script should fail")
	}
}

func TestDebugLineStats(t *testing.T) {
	src := `script T v1 {
  policy {
    width: 100
  }
  window {
    min-width: 40
  }
  message A {
    "aa bb cc"
    ""
    "dd"
  }
}`
	res := buildScript(t, src, nil, BuildOptions{Debug: DebugOptions{LineStats: true}})
	d := res.Messages[0].Debug
	if d == nil {
		t.Fatalf("debug stats missing")
	}
	if d.LogicalLines != 3 || d.PhysicalLines != 4 || d.BlankLines != 1 {
		t.Fatalf("unexpected stats: %+v", d)
	}

	var buf bytes.Buffer
	if err := EncodeDebugJSON(&buf, res); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(buf.String(), `"physicalLines": 4`) {
		t.Fatalf("debug JSON missing stats: %s", buf.String())
	}

	path := filepath.Join(t.TempDir(), "debug.json")
	if err := WriteDebugJSON(res, path); err != nil {
		t.Fatalf("write: %v", err)
	}
	var decoded Result
	raw, _ := json.Marshal(res)
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded.Messages[0].Text != res.Messages[0].Text {
		t.Fatalf("round trip mismatch: %v", err)
	}
}
