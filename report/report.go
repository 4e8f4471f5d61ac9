// Package report collects estimated run widths into a printable summary.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/ByLCY/twips/metrics"
)

// Status 描述单个 run 的估算结果类别。
type Status string

const (
	StatusMeasured   Status = "measured"
	StatusTabOnly    Status = "tab-only"
	StatusUnresolved Status = "unresolved" // 没有字体名
	StatusUnknown    Status = "unknown"    // 字体不可用
)

// Entry is a run to be estimated, with an optional location label.
type Entry struct {
	Location string      `json:"location,omitempty"`
	Run      metrics.Run `json:"run"`
}

// Row 保存单个 run 的估算结果。
type Row struct {
	Location string  `json:"location,omitempty"`
	Font     string  `json:"font"`
	Text     string  `json:"text"`
	SizePt   float64 `json:"sizePt"`
	Style    string  `json:"style"`
	Twips    int     `json:"twips"`
	Inches   float64 `json:"inches"`
	Status   Status  `json:"status"`
	// Raw is the single-pass width of the bare text in Options.Unit.
	Raw      float64 `json:"raw,omitempty"`
}

// Raw measurement units.
const (
	UnitPoints = "pt"
	UnitPixels = "px"
)

// Options configures Build.
type Options struct {
	// Unit, when UnitPoints or UnitPixels, adds a raw measurement of each
	// measured row's text in that unit.
	Unit string
}

// Report is the result of estimating a batch of runs.
type Report struct {
	Source     string `json:"source,omitempty"`
	Unit       string `json:"unit,omitempty"`
	Rows       []Row  `json:"rows"`
	TotalTwips int    `json:"totalTwips"`

	// UnknownFonts lists the families that were not installed or failed
	// to open, sorted.
	UnknownFonts []string `json:"unknownFonts,omitempty"`
}

// Build estimates every entry in order. It stops when ctx is done or at the
// first error the estimator reports, which only happens for runs without
// properties.
func Build(ctx context.Context, source string, est *metrics.Estimator, entries []Entry, opts Options) (*Report, error) {
	switch opts.Unit {
	case "", UnitPoints, UnitPixels:
	default:
		return nil, fmt.Errorf("unsupported unit %q", opts.Unit)
	}
	rep := &Report{Source: source, Unit: opts.Unit, Rows: make([]Row, 0, len(entries))}
	missing := map[string]bool{}
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		loc := e.Location
		if loc == "" {
			loc = fmt.Sprintf("run %d", i)
		}
		twips, err := est.EstimateWidthTwips(e.Run)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", loc, err)
		}
		status := classify(est.Cache(), e.Run)
		if status == StatusUnknown && e.Run.FontName != "" {
			missing[e.Run.FontName] = true
		}
		row := Row{
			Location: e.Location,
			Font:     e.Run.FontName,
			Text:     e.Run.Text,
			SizePt:   e.Run.Props.SizeOrDefault() / 2,
			Style:    e.Run.Props.Style().String(),
			Twips:    twips,
			Inches:   metrics.Length{Value: float64(twips), Unit: metrics.UnitTwip}.Inches(),
			Status:   status,
		}
		if status == StatusMeasured && opts.Unit != "" {
			if row.Raw, err = raw(est.Backend(), e.Run, opts.Unit); err != nil {
				return nil, fmt.Errorf("%s: %w", loc, err)
			}
		}
		rep.Rows = append(rep.Rows, row)
		rep.TotalTwips += twips
	}
	// 打开失败的字体由缓存记录，未安装的字体由各行状态得出。
	for _, name := range est.Cache().Unknown() {
		missing[name] = true
	}
	for name := range missing {
		rep.UnknownFonts = append(rep.UnknownFonts, name)
	}
	sort.Strings(rep.UnknownFonts)
	return rep, nil
}

func raw(b metrics.Backend, run metrics.Run, unit string) (float64, error) {
	style := run.Props.Style()
	if unit == UnitPixels {
		px, err := metrics.MeasurePixels(b, run.FontName, run.Props.SizeOrDefault(), style, run.Text)
		return float64(px), err
	}
	return metrics.MeasurePoints(b, run.FontName, run.Props.SizeOrDefault()/2, style, run.Text)
}

func classify(cache *metrics.FontCache, run metrics.Run) Status {
	switch {
	case run.FontName == "":
		return StatusUnresolved
	case cache.IsUnknown(run.FontName) || !cache.IsKnown(run.FontName):
		return StatusUnknown
	case run.Text == "":
		return StatusTabOnly
	default:
		return StatusMeasured
	}
}

// Count returns how many rows have the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, row := range r.Rows {
		if row.Status == s {
			n++
		}
	}
	return n
}

// Encode writes the report as indented JSON.
func (r *Report) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteJSON 将报告输出为 JSON 文件，必要时创建目录。
func WriteJSON(r *Report, path string) error {
	if r == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// preview shortens text for table output.
func preview(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max-1]) + "…"
}
