package metrics

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for the lengths a run carries.

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone      Unit = iota // unit-less numbers
	UnitTwip                  // 1/20 pt
	UnitHalfPoint             // font sizes in WordprocessingML
	UnitPT                    // points
	UnitIN                    // inches
	UnitMM                    // millimeters
	UnitPX                    // pixels at DPI
)

// Conversion constants.
const (
	TwipsPerInch  = 1440.0
	PointsPerInch = 72.0
	MmPerInch     = 25.4
	// DPI 是测量后端的名义分辨率，像素宽度按它换算为英寸。
	DPI = 96.0
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitTwip:
		return "tw"
	case UnitHalfPoint:
		return "hp"
	case UnitPT:
		return "pt"
	case UnitIN:
		return "in"
	case UnitMM:
		return "mm"
	case UnitPX:
		return "px"
	default:
		return ""
	}
}

// perInch returns how many units make one inch.
func perInch(u Unit) float64 {
	switch u {
	case UnitTwip:
		return TwipsPerInch
	case UnitHalfPoint:
		return PointsPerInch * 2
	case UnitPT:
		return PointsPerInch
	case UnitIN:
		return 1
	case UnitMM:
		return MmPerInch
	case UnitPX:
		return DPI
	default:
		return 0
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// To converts this length to target unit. Unit-less values are returned as-is.
func (l Length) To(target Unit) float64 {
	from, to := perInch(l.Unit), perInch(target)
	if from == 0 || to == 0 {
		return l.Value
	}
	return l.Value / from * to
}

func (l Length) Twips() float64  { return l.To(UnitTwip) }
func (l Length) Inches() float64 { return l.To(UnitIN) }

// ParseLength parses a length string such as "0.5in", "11pt" or "720tw",
// preserving its unit. Unparsable input yields a zero unit-less Length.
func ParseLength(value string) Length {
	v := strings.TrimSpace(value)
	if v == "" {
		return Length{Value: 0, Unit: UnitNone}
	}
	lower := strings.ToLower(v)
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"tw", UnitTwip}, {"hp", UnitHalfPoint}, {"pt", UnitPT}, {"in", UnitIN}, {"mm", UnitMM}, {"px", UnitPX}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{Value: 0, Unit: UnitNone}
	}
	return Length{Value: f, Unit: unit}
}

// PixelsToTwips converts a width measured at DPI into twips.
func PixelsToTwips(px float64) float64 { return px / DPI * TwipsPerInch }
