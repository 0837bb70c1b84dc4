package formatter

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/penwyp/go-mouse-recorder/internal/core/model"
	"github.com/penwyp/go-mouse-recorder/internal/data/trace"
)

// Formatter renders trace statistics.
type Formatter interface {
	Format(w io.Writer, stats TraceStats) error
}

// New returns the formatter registered under name.
func New(name string) (Formatter, error) {
	switch name {
	case "table", "":
		return NewTableFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	case "summary":
		return NewSummaryFormatter(), nil
	case "csv":
		return NewCSVFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (table, json, summary, csv)", name)
	}
}

type KindCount struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// Bounds is the smallest rectangle containing every recorded position.
type Bounds struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// TraceStats aggregates a trace. WheelNotches sums the replayed notch
// directions.
type TraceStats struct {
	Path            string        `json:"path"`
	FileSize        int64         `json:"file_size"`
	Events          int           `json:"events"`
	Counts          []KindCount   `json:"counts"`
	Duration        time.Duration `json:"-"`
	DurationSeconds float64       `json:"duration_seconds"`
	Bounds          *Bounds       `json:"bounds,omitempty"`
	WheelNotches    int           `json:"wheel_notches"`
	Violations      []string      `json:"violations"`
}

// Valid reports whether the trace passed validation.
func (s TraceStats) Valid() bool {
	return len(s.Violations) == 0
}

// Count returns the number of events of kind.
func (s TraceStats) Count(kind model.Kind) int {
	for _, kc := range s.Counts {
		if kc.Kind == kind.String() {
			return kc.Count
		}
	}
	return 0
}

// BuildTraceStats aggregates a decoded trace. Counts lists every kind, in
// tag order, including zero counts.
func BuildTraceStats(path string, size int64, events []model.Event) TraceStats {
	stats := TraceStats{
		Path:       path,
		FileSize:   size,
		Events:     len(events),
		Violations: []string{},
	}

	perKind := make(map[model.Kind]int)
	bounds := Bounds{MinX: math.MaxInt, MinY: math.MaxInt, MaxX: math.MinInt, MaxY: math.MinInt}
	for _, ev := range events {
		perKind[ev.Kind]++
		if ev.Kind == model.KindWheel {
			stats.WheelNotches += model.WheelDirection(ev.Payload)
		}
		bounds.MinX = min(bounds.MinX, ev.Point.X)
		bounds.MinY = min(bounds.MinY, ev.Point.Y)
		bounds.MaxX = max(bounds.MaxX, ev.Point.X)
		bounds.MaxY = max(bounds.MaxY, ev.Point.Y)
	}
	for _, kind := range model.Kinds() {
		stats.Counts = append(stats.Counts, KindCount{Kind: kind.String(), Count: perKind[kind]})
	}

	if len(events) > 0 {
		stats.Bounds = &bounds
		stats.Duration = events[len(events)-1].Timestamp
		stats.DurationSeconds = stats.Duration.Seconds()
	}
	for _, v := range trace.Validate(events) {
		stats.Violations = append(stats.Violations, v.String())
	}
	return stats
}
