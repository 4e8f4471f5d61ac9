// Package canvasbackend measures text with github.com/tdewolff/canvas, using
// the fonts installed on the system.
package canvasbackend

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/twips/fonts"
	"github.com/ByLCY/twips/metrics"
)

var _ metrics.Backend = (*Backend)(nil)

// Backend resolves family names against a font inventory and measures text
// through canvas font faces.
type Backend struct {
	dirs   []string
	logger *log.Logger

	scanOnce sync.Once
	inv      *fonts.Inventory
	scanErr  error

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily // by file|index|style
}

// Options configures the backend.
type Options struct {
	// Dirs lists the font directories to scan; empty means fonts.DefaultDirs().
	Dirs []string
	// Inventory, when set, is used instead of scanning Dirs.
	Inventory *fonts.Inventory
	Logger    *log.Logger
}

// New creates a backend scanning the default font directories.
func New() *Backend { return NewWithOptions(Options{}) }

// NewWithOptions creates a backend with explicit directories or inventory.
func NewWithOptions(opts Options) *Backend {
	b := &Backend{
		dirs:         opts.Dirs,
		inv:          opts.Inventory,
		logger:       opts.Logger,
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	if len(b.dirs) == 0 {
		b.dirs = fonts.DefaultDirs()
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	return b
}

func (b *Backend) inventory() (*fonts.Inventory, error) {
	b.scanOnce.Do(func() {
		if b.inv != nil {
			return
		}
		inv, err := fonts.Scan(b.dirs)
		if inv == nil {
			inv = fonts.NewInventory()
		}
		b.inv, b.scanErr = inv, err
		b.logger.Debug("font directories scanned", "dirs", strings.Join(b.dirs, ","), "families", inv.Len())
	})
	return b.inv, b.scanErr
}

// Families lists every family found in the font directories.
func (b *Backend) Families() ([]string, error) {
	inv, err := b.inventory()
	return inv.Families(), err
}

// Open returns a face for family at sizePt points.
func (b *Backend) Open(family string, sizePt float64, style metrics.Style) (metrics.Face, error) {
	inv, _ := b.inventory()
	file, ok := inv.Lookup(family, fonts.Style{Bold: style.Bold(), Italic: style.Italic()})
	if !ok {
		return nil, fmt.Errorf("open %q: %w", family, metrics.ErrFamilyUnavailable)
	}
	cs := toCanvasStyle(style)
	ff, err := b.ensureFontFamily(file, cs)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w: %v", family, metrics.ErrFamilyUnavailable, err)
	}
	return &Face{
		face:   ff.Face(sizePt, canvas.Black, cs, canvas.FontNormal),
		sizePt: sizePt,
	}, nil
}

func (b *Backend) ensureFontFamily(file fonts.Face, style canvas.FontStyle) (*canvas.FontFamily, error) {
	key := fontCacheKey(file, style)
	b.fontMu.Lock()
	defer b.fontMu.Unlock()

	if ff, ok := b.fontFamilies[key]; ok {
		return ff, nil
	}
	data, err := fonts.Load(file.Path)
	if err != nil {
		return nil, err
	}
	// 按请求的样式注册字体文件，保证 Face 查找时命中。
	ff := canvas.NewFontFamily(file.Family)
	if err := ff.LoadFont(data, file.Index, style); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", file.Path, err)
	}
	b.fontFamilies[key] = ff
	return ff, nil
}

// Face is a canvas font face at a fixed size.
type Face struct {
	face   *canvas.FontFace
	sizePt float64
}

// Measure returns the width of text in pixels at metrics.DPI.
func (f *Face) Measure(text string, spacing metrics.Spacing) metrics.Measurement {
	m := metrics.Measurement{
		Chars: utf8.RuneCountInString(text),
		Lines: strings.Count(text, "\n") + 1,
	}
	if f.face == nil {
		return m
	}
	widest := 0.0
	for _, line := range strings.Split(text, "\n") {
		if w := f.face.TextWidth(line); w > widest {
			widest = w
		}
	}
	// canvas 的宽度单位是 mm
	m.Width = mmToPx(widest)
	if spacing == metrics.GenericDefault {
		em := f.sizePt / metrics.PointsPerInch * metrics.DPI
		m.Width += em / 3
	}
	return m
}

// Close drops the face reference; font data stays cached in the backend.
func (f *Face) Close() error {
	f.face = nil
	return nil
}

func toCanvasStyle(s metrics.Style) canvas.FontStyle {
	result := canvas.FontRegular
	if s.Bold() {
		result = canvas.FontBold
	}
	if s.Italic() {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(file fonts.Face, style canvas.FontStyle) string {
	return fmt.Sprintf("%s|%d|%d", file.Path, file.Index, style)
}

func mmToPx(mm float64) float64 { return mm / metrics.MmPerInch * metrics.DPI }
