package util

import (
	"fmt"
	"strconv"
	"time"
)

// FormatNumber abbreviates large counts (1.5K, 2.0M).
func FormatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	} else {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
}

// FormatDuration renders a replay-scale duration: sub-second values in
// milliseconds, then seconds, then minutes and hours.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// FormatSeconds renders an elapsed offset with the trace's fixed precision.
func FormatSeconds(d time.Duration, digits int) string {
	return strconv.FormatFloat(d.Seconds(), 'f', digits, 64)
}

// FormatRate renders an events-per-second rate.
func FormatRate(count int, over time.Duration) string {
	if over <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f ev/s", float64(count)/over.Seconds())
}
