package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-mouse-recorder/internal/util"
)

type TableFormatter struct {
	headers []string
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headers: []string{"Kind", "Events", "Share"},
	}
}

func (f *TableFormatter) Format(w io.Writer, stats TraceStats) error {
	rows := make([][]string, 0, len(stats.Counts)+1)
	for _, kc := range stats.Counts {
		rows = append(rows, []string{kc.Kind, formatNumber(kc.Count), formatShare(kc.Count, stats.Events)})
	}
	total := []string{"Total", formatNumber(stats.Events), formatShare(stats.Events, stats.Events)}

	widths := f.calculateColumnWidths(append(rows, total))

	var b strings.Builder
	f.printBorder(&b, widths, "top")
	f.printRow(&b, f.headers, widths)
	f.printBorder(&b, widths, "middle")
	for _, row := range rows {
		f.printRow(&b, row, widths)
	}
	f.printBorder(&b, widths, "middle")
	f.printRow(&b, total, widths)
	f.printBorder(&b, widths, "bottom")

	fmt.Fprintf(&b, "Duration: %s", util.FormatDuration(stats.Duration))
	if stats.Bounds != nil {
		fmt.Fprintf(&b, "  Bounds: (%d,%d)-(%d,%d)",
			stats.Bounds.MinX, stats.Bounds.MinY, stats.Bounds.MaxX, stats.Bounds.MaxY)
	}
	fmt.Fprintf(&b, "  Validation: %s\n", validationLabel(stats))

	_, err := io.WriteString(w, b.String())
	return err
}

// calculateColumnWidths sizes each column to its widest cell in display cells
func (f *TableFormatter) calculateColumnWidths(rows [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = util.GetDisplayWidth(header)
	}
	for _, row := range rows {
		for i, value := range row {
			if w := util.GetDisplayWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}

	// Apply minimum widths for readability
	for i := range widths {
		if widths[i] < 6 {
			widths[i] = 6
		}
	}
	return widths
}

// printBorder writes table borders (top, middle, bottom)
func (f *TableFormatter) printBorder(b *strings.Builder, widths []int, borderType string) {
	var left, middle, right string

	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right + "\n")
}

// printRow writes a row; the kind column is left-aligned, numbers right-aligned
func (f *TableFormatter) printRow(b *strings.Builder, values []string, widths []int) {
	b.WriteString("│")
	for i, value := range values {
		b.WriteString(" " + util.PadString(value, widths[i], i == 0) + " │")
	}
	b.WriteString("\n")
}

func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result []byte
	for i, digit := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, digit)
	}

	return string(result)
}

func formatShare(n, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}

func validationLabel(stats TraceStats) string {
	if stats.Valid() {
		return "ok"
	}
	return fmt.Sprintf("%d violation(s)", len(stats.Violations))
}
