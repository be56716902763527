package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe lengths. Message layout works in pixels;
// the canvas backend works in millimeters and points.

// Unit represents the original unit of a length value as specified in a script.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, treated as pixels
	UnitPX               // CSS pixels at 96 DPI
	UnitPT               // points
	UnitMM               // millimeters
)

// Conversion constants between px, pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	PxToPt = 0.75
	PtToPx = 1.0 / PxToPt
	PxToMm = PxToPt * PtToMm
	MmToPx = 1.0 / PxToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// To converts this length to the target unit.
func (l Length) To(target Unit) float64 {
	var px float64
	switch l.Unit {
	case UnitPT:
		px = l.Value * PtToPx
	case UnitMM:
		px = l.Value * MmToPx
	default:
		px = l.Value
	}
	switch target {
	case UnitPT:
		return px * PxToPt
	case UnitMM:
		return px * PxToMm
	default:
		return px
	}
}

func (l Length) ToPX() float64 { return l.To(UnitPX) }
func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }

// ParseLength parses a script length string preserving its unit.
// Invalid input yields a zero length.
func ParseLength(value string) Length {
	l, err := ParseLengthStrict(value)
	if err != nil {
		return Length{}
	}
	return l
}

// ParseLengthStrict is ParseLength but reports malformed input.
func ParseLengthStrict(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, nil
	}
	unit := UnitNone
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			v = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q", value)
	}
	return Length{Value: f, Unit: unit}, nil
}
