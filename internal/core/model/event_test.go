package model

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			parsed, err := ParseKind(kind.String())
			require.NoError(t, err)
			assert.Equal(t, kind, parsed)
			assert.True(t, parsed.Valid())
		})
	}

	_, err := ParseKind("middle_down")
	assert.Error(t, err)
	_, err = ParseKind("")
	assert.Error(t, err)
}

func TestKindButton(t *testing.T) {
	tests := []struct {
		kind       Kind
		button     Button
		transition Transition
		ok         bool
	}{
		{KindLeftDown, ButtonLeft, TransitionDown, true},
		{KindLeftUp, ButtonLeft, TransitionUp, true},
		{KindRightDown, ButtonRight, TransitionDown, true},
		{KindRightUp, ButtonRight, TransitionUp, true},
		{KindMove, 0, 0, false},
		{KindWheel, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			button, transition, ok := tt.kind.Button()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.ok, tt.kind.IsButton())
			if !ok {
				return
			}
			assert.Equal(t, tt.button, button)
			assert.Equal(t, tt.transition, transition)
			assert.Equal(t, tt.kind, KindFor(button, transition))
		})
	}
}

func TestKindStringUnknown(t *testing.T) {
	assert.Equal(t, "kind(42)", Kind(42).String())
	assert.False(t, Kind(42).Valid())
	assert.False(t, Kind(-1).Valid())
}

func TestWheelDirection(t *testing.T) {
	assert.Equal(t, 1, WheelDirection(120))
	assert.Equal(t, 1, WheelDirection(7))
	assert.Equal(t, -1, WheelDirection(-120))
	assert.Equal(t, 0, WheelDirection(0))
}

func TestEventConstructors(t *testing.T) {
	ev := NewEvent(1500*time.Millisecond, Point{X: 3, Y: -4}, KindLeftDown)
	assert.Equal(t, 1.5, ev.Seconds())
	assert.Zero(t, ev.Payload)

	wheel := NewWheelEvent(time.Second, Point{X: 1, Y: 1}, -240)
	assert.Equal(t, KindWheel, wheel.Kind)
	assert.Equal(t, -240, wheel.Payload)
}

func TestTraceErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("load: %w", &TraceError{Path: "trace.txt", Line: 3, Reason: "bad x"})

	assert.True(t, errors.Is(err, ErrMalformedTrace))
	assert.Contains(t, err.Error(), "trace.txt line 3: bad x")

	var traceErr *TraceError
	require.True(t, errors.As(err, &traceErr))
	assert.Equal(t, 3, traceErr.Line)

	headerErr := &TraceError{Path: "trace.txt", Reason: "missing header"}
	assert.Equal(t, "malformed trace trace.txt: missing header", headerErr.Error())
}
