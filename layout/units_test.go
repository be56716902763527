package layout

import (
	"math"
	"testing"
)

// TestPxMmRoundTrip 验证 px↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPxMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.5, 1, 18, 28, 144, 816, 1000}
	for _, px := range samples {
		mm := Length{Value: px, Unit: UnitPX}.ToMM()
		back := Length{Value: mm, Unit: UnitMM}.ToPX()
		if diff := math.Abs(back - px); diff > 1e-9 {
			t.Fatalf("px→mm→px 往返误差过大: in=%gpx mm=%g back=%g", px, mm, back)
		}
	}
}

// TestLengthConversions 覆盖常见单位换算：96px = 72pt = 25.4mm。
func TestLengthConversions(t *testing.T) {
	if got := (Length{Value: 96, Unit: UnitPX}).ToPT(); math.Abs(got-72) > 1e-9 {
		t.Fatalf("96px 转 pt 期望 72，实际 %g", got)
	}
	if got := (Length{Value: 72, Unit: UnitPT}).ToPX(); math.Abs(got-96) > 1e-9 {
		t.Fatalf("72pt 转 px 期望 96，实际 %g", got)
	}
	if got := (Length{Value: 96, Unit: UnitPX}).ToMM(); math.Abs(got-25.4) > 1e-4 {
		t.Fatalf("96px 转 mm 期望约 25.4，实际 %g", got)
	}
	if got := (Length{Value: 30, Unit: UnitNone}).ToPX(); got != 30 {
		t.Fatalf("无单位数值应按 px 处理，实际 %g", got)
	}
}

func TestParseLength(t *testing.T) {
	cases := map[string]Length{
		"28px":  {Value: 28, Unit: UnitPX},
		"12PT":  {Value: 12, Unit: UnitPT},
		" 3mm ": {Value: 3, Unit: UnitMM},
		"40":    {Value: 40, Unit: UnitNone},
		"abc":   {},
		"":      {},
	}
	for in, want := range cases {
		if got := ParseLength(in); got != want {
			t.Fatalf("ParseLength(%q) = %+v, want %+v", in, got, want)
		}
	}
	if UnitToString(UnitPX) != "px" || UnitToString(UnitNone) != "" {
		t.Fatalf("UnitToString mismatch")
	}
}
