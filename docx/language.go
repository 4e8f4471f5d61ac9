package docx

import (
	"unicode"

	"golang.org/x/text/unicode/bidi"

	"github.com/ByLCY/twips/metrics"
)

// languageEastAsia marks runs whose text is mostly CJK.
const languageEastAsia = "eastAsia"

// languageType classifies a run by its script. complex is set when the run
// carries w:rtl or w:cs, which forces the complex-script slot regardless of
// the text itself.
func languageType(text string, complex bool) string {
	if complex {
		return metrics.LanguageBidi
	}
	var ltr, rtl, cjk int
	for _, r := range text {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) {
			cjk++
			continue
		}
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.R, bidi.AL:
			rtl++
		case bidi.L:
			ltr++
		}
	}
	switch {
	case rtl > 0 && rtl >= ltr && rtl >= cjk:
		return metrics.LanguageBidi
	case cjk > 0 && cjk >= ltr:
		return languageEastAsia
	default:
		return ""
	}
}
