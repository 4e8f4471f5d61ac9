package metrics

import "errors"

// ErrFamilyUnavailable is returned by Backend.Open when the family cannot be
// instantiated, even if it was enumerated.
var ErrFamilyUnavailable = errors.New("font family unavailable")

// Style 是传给后端的字形样式标志。
type Style uint8

const (
	StyleBold Style = 1 << iota
	StyleItalic

	StyleRegular Style = 0
)

func (s Style) Bold() bool   { return s&StyleBold != 0 }
func (s Style) Italic() bool { return s&StyleItalic != 0 }

func (s Style) String() string {
	switch s {
	case StyleBold:
		return "bold"
	case StyleItalic:
		return "italic"
	case StyleBold | StyleItalic:
		return "bold-italic"
	default:
		return "regular"
	}
}

// Spacing selects the measurement rules a Face applies.
type Spacing int

const (
	// GenericTypographic measures advances only, with no device padding.
	GenericTypographic Spacing = iota
	// GenericDefault pads the measured string by 1/6 em on each side.
	GenericDefault
)

// Measurement is the outcome of measuring one string.
type Measurement struct {
	Width float64 // pixels at DPI
	Chars int
	Lines int
}

// Enumerator lists the family names a backend can instantiate.
type Enumerator interface {
	Families() ([]string, error)
}

// Backend 是字体清单与测量能力的外部协作者。
type Backend interface {
	Enumerator
	// Open instantiates family at sizePt points. The returned Face must be
	// closed by the caller.
	Open(family string, sizePt float64, style Style) (Face, error)
}

// Face is an instantiated font handle.
type Face interface {
	Measure(text string, spacing Spacing) Measurement
	Close() error
}
