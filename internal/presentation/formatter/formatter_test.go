package formatter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-mouse-recorder/internal/core/model"
	"github.com/penwyp/go-mouse-recorder/internal/testing/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioStats() TraceStats {
	return BuildTraceStats("trace.txt", 2048, fixtures.ScenarioEvents())
}

func TestBuildTraceStats(t *testing.T) {
	stats := scenarioStats()

	assert.Equal(t, 4, stats.Events)
	assert.Len(t, stats.Counts, len(model.Kinds()))
	assert.Equal(t, 1, stats.Count(model.KindMove))
	assert.Equal(t, 1, stats.Count(model.KindLeftDown))
	assert.Equal(t, 1, stats.Count(model.KindLeftUp))
	assert.Equal(t, 0, stats.Count(model.KindRightDown))
	assert.Equal(t, 1, stats.Count(model.KindWheel))
	assert.Equal(t, -1, stats.WheelNotches)
	assert.Equal(t, 500*time.Millisecond, stats.Duration)
	require.NotNil(t, stats.Bounds)
	assert.Equal(t, Bounds{MinX: 100, MinY: 100, MaxX: 105, MaxY: 102}, *stats.Bounds)
	assert.True(t, stats.Valid())
}

func TestBuildTraceStatsEmptyAndInvalid(t *testing.T) {
	empty := BuildTraceStats("empty.txt", 30, nil)
	assert.Nil(t, empty.Bounds)
	assert.Zero(t, empty.Duration)
	assert.True(t, empty.Valid())

	broken := BuildTraceStats("broken.txt", 0, []model.Event{
		model.NewEvent(time.Second, model.Point{}, model.KindLeftUp),
		model.NewEvent(0, model.Point{}, model.KindMove),
	})
	assert.False(t, broken.Valid())
	assert.Len(t, broken.Violations, 2)
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", "table", "json", "summary", "csv"} {
		f, err := New(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}
	_, err := New("xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter().Format(&buf, scenarioStats()))
	out := buf.String()

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "┌"))
	assert.Contains(t, out, "│ left_down")
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, out, "│ Total")
	assert.Contains(t, out, "Duration: 500ms")
	assert.Contains(t, out, "Bounds: (100,100)-(105,102)")
	assert.Contains(t, out, "Validation: ok")

	// every table line has the same display width
	width := len([]rune(lines[0]))
	for _, line := range lines[:len(lines)-1] {
		assert.Equal(t, width, len([]rune(line)), line)
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, scenarioStats()))

	var decoded map[string]interface{}
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "trace.txt", decoded["path"])
	assert.EqualValues(t, 4, decoded["events"])
	assert.EqualValues(t, 0.5, decoded["duration_seconds"])
	assert.EqualValues(t, -1, decoded["wheel_notches"])
	assert.Empty(t, decoded["violations"])
	assert.NotContains(t, decoded, "Duration")
}

func TestSummaryFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSummaryFormatter().Format(&buf, scenarioStats()))
	out := buf.String()

	for _, want := range []string{
		"Mouse Trace Summary Report",
		"File: trace.txt (2.0 kB)",
		"Events: 4",
		"Duration: 500ms",
		"Rate: 8.0 ev/s",
		"wheel:",
		"net notches: -1",
		"Bounds: (100,100) to (105,102)",
		"Validation: ok",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "right_down:")
}

func TestSummaryFormatterEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSummaryFormatter().Format(&buf, BuildTraceStats("empty.txt", 30, nil)))
	assert.Contains(t, buf.String(), "No events recorded")
	assert.NotContains(t, buf.String(), "Validation")
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().Format(&buf, scenarioStats()))

	want := "kind,count\nmove,1\nleft_down,1\nleft_up,1\nright_down,0\nright_up,0\nwheel,1\ntotal,4\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}
