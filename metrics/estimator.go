// Package metrics estimates the rendered width of text runs in twips.
//
// The estimate is computed from a single measurement call against a font
// backend; there is no shaping or rasterization. Runs that cannot be measured
// (no font, font not installed, font fails to load) yield 0 rather than an
// error, so a caller converting a whole document is never aborted by font
// problems. The only error is ErrNoRunProperties, which signals a run built
// without any properties.
package metrics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// ErrNoRunProperties is returned when a run carries no properties at all.
var ErrNoRunProperties = errors.New("run has no run properties")

// measureSuffix is appended to every measured text. It leaves room for the
// non-breaking space a layout may add after list numbers and similar runs.
// TODO: drop once list-number runs carry their own trailing space.
const measureSuffix = " "

// Estimator measures runs against a Backend, consulting a FontCache first.
type Estimator struct {
	backend Backend
	cache   *FontCache
	logger  *log.Logger
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithCache shares an existing cache, e.g. across documents of one session.
func WithCache(c *FontCache) Option {
	return func(e *Estimator) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(e *Estimator) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEstimator creates an Estimator. Without WithCache it owns a fresh cache
// enumerating backend.
func NewEstimator(backend Backend, opts ...Option) *Estimator {
	e := &Estimator{
		backend: backend,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = NewFontCache(backend, WithCacheLogger(e.logger))
	}
	return e
}

// Cache returns the font cache used by e.
func (e *Estimator) Cache() *FontCache { return e.cache }

// EstimateWidthTwips returns the estimated width of run in twips. A return of
// 0 with a nil error means the run contributes no width; callers may apply
// their own fallback.
func (e *Estimator) EstimateWidthTwips(run Run) (int, error) {
	name := run.FontName
	if name == "" {
		return 0, nil
	}
	if e.cache.IsUnknown(name) {
		return 0, nil
	}
	if run.Props == nil {
		return 0, fmt.Errorf("estimate %q: %w", name, ErrNoRunProperties)
	}
	sizePt := run.Props.SizeOrDefault() / 2
	if !e.cache.IsKnown(name) {
		return 0, nil
	}

	// 没有文本时无需测量，只计入制表位宽度。
	twips := Length{Value: run.TabWidth, Unit: UnitIN}.Twips()
	if run.Text != "" {
		face, err := e.backend.Open(name, sizePt, run.Props.Style())
		if err != nil {
			e.logger.Debug("font failed to open", "family", name, "err", err)
			e.cache.MarkUnknown(name)
			return 0, nil
		}
		defer face.Close()

		n := Multiplier(utf8.RuneCountInString(run.Text))
		text := strings.Repeat(run.Text+measureSuffix, n)
		m := face.Measure(text, GenericTypographic)
		twips += PixelsToTwips(m.Width) / float64(n)
	}
	if twips < 0 {
		twips = 0
	}
	return int(twips), nil
}

// Multiplier returns how many times a text of length runes is repeated
// before measuring. Short strings are repeated so that the backend's
// per-call rounding is spread over many copies.
func Multiplier(length int) int {
	switch {
	case length <= 2:
		return 100
	case length <= 4:
		return 50
	case length <= 8:
		return 25
	case length <= 16:
		return 12
	case length <= 32:
		return 6
	default:
		return 1
	}
}

// Result pairs a run with its estimated width.
type Result struct {
	Run   Run `json:"run"`
	Twips int `json:"twips"`
}

// EstimateAll measures runs in order. It stops at the first error.
func (e *Estimator) EstimateAll(runs []Run) ([]Result, error) {
	out := make([]Result, 0, len(runs))
	for i, run := range runs {
		w, err := e.EstimateWidthTwips(run)
		if err != nil {
			return out, fmt.Errorf("run %d: %w", i, err)
		}
		out = append(out, Result{Run: run, Twips: w})
	}
	return out, nil
}
