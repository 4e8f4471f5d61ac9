package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ByLCY/twips/metrics"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorYellow = lipgloss.Color("220")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")

	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleLabel   = lipgloss.NewStyle().Foreground(colorGray)
)

const textPreview = 32

type column struct {
	title string
	width int
	right bool
}

// column widths of the text table
var columns = []column{
	{"LOCATION", 10, false},
	{"FONT", 22, false},
	{"SIZE", 6, true},
	{"STYLE", 11, false},
	{"TWIPS", 8, true},
	{"STATUS", 10, false},
	{"TEXT", textPreview, false},
}

// WriteText writes the report as an aligned table followed by a summary.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder

	if r.Source != "" {
		b.WriteString(styleHeader.Render(r.Source) + "\n")
	}
	cols := columns
	if r.Unit != "" {
		// 原始宽度列插在 TWIPS 之后
		cols = append(append(append([]column{}, columns[:5]...), column{strings.ToUpper(r.Unit), 8, true}), columns[5:]...)
	}
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = cell(c.title, c.width, c.right)
	}
	b.WriteString(styleHeader.Render(strings.Join(header, " ")) + "\n")

	for _, row := range r.Rows {
		vals := []string{
			row.Location,
			row.Font,
			strconv.FormatFloat(row.SizePt, 'f', -1, 64),
			row.Style,
			strconv.Itoa(row.Twips),
			string(row.Status),
			strconv.Quote(preview(row.Text, textPreview-2)),
		}
		status := 5
		if r.Unit != "" {
			vals = append(vals[:5], append([]string{rawCell(row)}, vals[5:]...)...)
			status = 6
		}
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = cell(vals[i], c.width, c.right)
		}
		switch row.Status {
		case StatusUnknown, StatusUnresolved:
			line[status] = styleWarning.Render(line[status])
		default:
			line[4] = styleNumber.Render(line[4])
		}
		b.WriteString(strings.Join(line, " ") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(styleLabel.Render("runs") + "  " + strconv.Itoa(len(r.Rows)) + "\n")
	b.WriteString(styleLabel.Render("total") + " " + styleNumber.Render(strconv.Itoa(r.TotalTwips)) +
		styleDim.Render(fmt.Sprintf(" twips (%.2f in)", float64(r.TotalTwips)/metrics.TwipsPerInch)) + "\n")
	if len(r.UnknownFonts) > 0 {
		b.WriteString(styleWarning.Render("unknown fonts: "+strings.Join(r.UnknownFonts, ", ")) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func rawCell(row Row) string {
	if row.Status != StatusMeasured {
		return "-"
	}
	return strconv.FormatFloat(row.Raw, 'f', 2, 64)
}

// cell pads or truncates s to width runes.
func cell(s string, width int, right bool) string {
	s = preview(s, width)
	if right {
		return fmt.Sprintf("%*s", width, s)
	}
	return fmt.Sprintf("%-*s", width, s)
}
