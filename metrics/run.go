package metrics

import (
	"strconv"
	"strings"
)

// DefaultFontSize is the size, in half-points, assumed when a run carries none (11pt).
const DefaultFontSize = 22.0

// LanguageBidi is the language-type hint that selects complex-script sizes.
const LanguageBidi = "bidi"

// Run describes one text run to be measured. It is treated as immutable.
type Run struct {
	// FontName is the resolved family name; empty means unresolved.
	FontName string `json:"fontName"`
	// Text is the concatenation of the run's visible text, excluding
	// nested text-box content.
	Text string `json:"text"`
	// TabWidth is the summed width of the run's tab stops in inches.
	TabWidth float64 `json:"tabWidth,omitempty"`
	// LanguageType selects which size attribute applies ("bidi" or "").
	LanguageType string `json:"languageType,omitempty"`
	// Props must be present for any run handed to the estimator.
	Props *RunProps `json:"props,omitempty"`
}

// RunProps 保存已解析的字号与粗斜体标志（含复杂文种版本）。
type RunProps struct {
	FontSize *float64 `json:"fontSize,omitempty"` // half-points
	Bold     bool     `json:"bold,omitempty"`
	BoldCS   bool     `json:"boldCs,omitempty"`
	Italic   bool     `json:"italic,omitempty"`
	ItalicCS bool     `json:"italicCs,omitempty"`
}

// Style ORs the direct and complex-script flags.
func (p *RunProps) Style() Style {
	if p == nil {
		return StyleRegular
	}
	s := StyleRegular
	if p.Bold || p.BoldCS {
		s |= StyleBold
	}
	if p.Italic || p.ItalicCS {
		s |= StyleItalic
	}
	return s
}

// SizeOrDefault returns FontSize, or DefaultFontSize when absent.
func (p *RunProps) SizeOrDefault() float64 {
	if p == nil || p.FontSize == nil {
		return DefaultFontSize
	}
	return *p.FontSize
}

// SizeAttrs carries the two alternative size attributes of a property node.
type SizeAttrs struct {
	Sz   *float64
	SzCs *float64
}

// FontSize picks the complex-script size for bidi runs and the default size
// otherwise. It returns nil if attrs is nil or the chosen attribute is absent.
func FontSize(languageType string, attrs *SizeAttrs) *float64 {
	if attrs == nil {
		return nil
	}
	if languageType == LanguageBidi {
		return attrs.SzCs
	}
	return attrs.Sz
}

// ParseOnOff interprets an on/off property element. A present element with
// no value is on; "1"/"true" are on and "0"/"false" off, case-insensitively.
// Any other value is off.
func ParseOnOff(present bool, val *string) bool {
	if !present {
		return false
	}
	if val == nil {
		return true
	}
	switch strings.ToLower(*val) {
	case "1", "true":
		return true
	default:
		return false
	}
}

// ParseHalfPoints parses a size attribute value; ok is false for malformed input.
func ParseHalfPoints(val string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}
