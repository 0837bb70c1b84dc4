package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/penwyp/go-mouse-recorder/internal/util"
)

// SummaryFormatter writes a human-oriented report of a trace.
type SummaryFormatter struct{}

// NewSummaryFormatter creates a new instance of SummaryFormatter.
func NewSummaryFormatter() *SummaryFormatter {
	return &SummaryFormatter{}
}

// Format writes file, timing and validation sections for stats.
func (f *SummaryFormatter) Format(w io.Writer, stats TraceStats) error {
	var b strings.Builder
	rule := strings.Repeat("=", min(util.TerminalWidth(), 60))

	b.WriteString(rule + "\n")
	b.WriteString("Mouse Trace Summary Report\n")
	b.WriteString(rule + "\n\n")

	fmt.Fprintf(&b, "File: %s (%s)\n\n", stats.Path, humanize.Bytes(uint64(max(stats.FileSize, 0))))

	if stats.Events == 0 {
		b.WriteString("No events recorded\n\n")
		b.WriteString(rule + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("Timing:\n")
	fmt.Fprintf(&b, "  Events: %s\n", humanize.Comma(int64(stats.Events)))
	fmt.Fprintf(&b, "  Duration: %s\n", util.FormatDuration(stats.Duration))
	fmt.Fprintf(&b, "  Rate: %s\n\n", util.FormatRate(stats.Events, stats.Duration))

	b.WriteString("Events by kind:\n")
	for _, kc := range stats.Counts {
		if kc.Count == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %-12s %s\n", kc.Kind+":", humanize.Comma(int64(kc.Count)))
	}
	fmt.Fprintf(&b, "  %-12s %+d\n\n", "net notches:", stats.WheelNotches)

	if stats.Bounds != nil {
		fmt.Fprintf(&b, "Bounds: (%d,%d) to (%d,%d)\n\n",
			stats.Bounds.MinX, stats.Bounds.MinY, stats.Bounds.MaxX, stats.Bounds.MaxY)
	}

	fmt.Fprintf(&b, "Validation: %s\n", validationLabel(stats))
	for _, v := range stats.Violations {
		fmt.Fprintf(&b, "  - %s\n", v)
	}

	b.WriteString("\n" + rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}
