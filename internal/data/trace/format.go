// Package trace reads and writes the line-oriented pointer trace format:
//
//	time_seconds:X:Y:event:data
//	<t>:<x>:<y>:<kind>:<data-or-empty>
//
// Timestamps carry four decimal digits and always use '.' as the decimal
// separator. data holds the signed wheel delta on wheel rows and is empty on
// every other row.
package trace

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/go-mouse-recorder/internal/core/constants"
	"github.com/penwyp/go-mouse-recorder/internal/core/model"
	"github.com/penwyp/go-mouse-recorder/internal/util"
)

// Header is the first line of every trace.
const Header = constants.TraceHeader

// FormatEvent renders one trace row without the trailing newline.
func FormatEvent(ev model.Event) string {
	var b strings.Builder
	b.Grow(32)
	b.WriteString(util.FormatSeconds(ev.Timestamp, constants.TraceTimestampDigits))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(ev.Point.X))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(ev.Point.Y))
	b.WriteByte(':')
	b.WriteString(ev.Kind.String())
	b.WriteByte(':')
	if ev.Kind == model.KindWheel {
		b.WriteString(strconv.Itoa(ev.Payload))
	}
	return b.String()
}

// ParseLine decodes one data row. The returned error describes the first
// field that failed; callers attach the location.
func ParseLine(line string) (model.Event, error) {
	parts := strings.Split(line, constants.TraceFieldSeparator)
	if len(parts) != constants.TraceFieldCount {
		return model.Event{}, fmt.Errorf("expected %d fields, got %d", constants.TraceFieldCount, len(parts))
	}

	seconds, err := strconv.ParseFloat(parts[0], 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return model.Event{}, fmt.Errorf("invalid timestamp %q", parts[0])
	}
	if seconds < 0 {
		return model.Event{}, fmt.Errorf("negative timestamp %q", parts[0])
	}
	if seconds >= maxTimestampSeconds {
		return model.Event{}, fmt.Errorf("out of range timestamp %q", parts[0])
	}

	x, err := strconv.Atoi(parts[1])
	if err != nil {
		return model.Event{}, fmt.Errorf("invalid x coordinate %q", parts[1])
	}
	y, err := strconv.Atoi(parts[2])
	if err != nil {
		return model.Event{}, fmt.Errorf("invalid y coordinate %q", parts[2])
	}

	kind, err := model.ParseKind(parts[3])
	if err != nil {
		return model.Event{}, err
	}

	ev := model.Event{
		Timestamp: secondsToDuration(seconds),
		Point:     model.Point{X: x, Y: y},
		Kind:      kind,
	}

	data := parts[4]
	if kind == model.KindWheel {
		delta, err := strconv.Atoi(data)
		if err != nil {
			return model.Event{}, fmt.Errorf("invalid wheel delta %q", data)
		}
		ev.Payload = delta
	} else if data != "" {
		return model.Event{}, fmt.Errorf("unexpected data %q on %s row", data, kind)
	}

	return ev, nil
}

// maxTimestampSeconds is the first offset a time.Duration cannot hold.
const maxTimestampSeconds = float64(math.MaxInt64) / float64(time.Second)

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}
