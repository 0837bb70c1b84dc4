package model

import (
	"fmt"
	"time"
)

// Kind is the closed set of pointer occurrences a trace can hold.
type Kind int

const (
	KindMove Kind = iota
	KindLeftDown
	KindLeftUp
	KindRightDown
	KindRightUp
	KindWheel
)

var kindNames = [...]string{
	KindMove:      "move",
	KindLeftDown:  "left_down",
	KindLeftUp:    "left_up",
	KindRightDown: "right_down",
	KindRightUp:   "right_up",
	KindWheel:     "wheel",
}

// Kinds lists every event kind in tag order.
func Kinds() []Kind {
	return []Kind{KindMove, KindLeftDown, KindLeftUp, KindRightDown, KindRightUp, KindWheel}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is one of the six known kinds.
func (k Kind) Valid() bool {
	return k >= KindMove && k <= KindWheel
}

// ParseKind converts a trace tag into a Kind.
func ParseKind(tag string) (Kind, error) {
	for i, name := range kindNames {
		if name == tag {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", tag)
}

// IsButton reports whether the kind is a button edge.
func (k Kind) IsButton() bool {
	return k >= KindLeftDown && k <= KindRightUp
}

// Button splits a button edge kind into its button and transition.
// The second return value is false for move and wheel.
func (k Kind) Button() (Button, Transition, bool) {
	switch k {
	case KindLeftDown:
		return ButtonLeft, TransitionDown, true
	case KindLeftUp:
		return ButtonLeft, TransitionUp, true
	case KindRightDown:
		return ButtonRight, TransitionDown, true
	case KindRightUp:
		return ButtonRight, TransitionUp, true
	default:
		return 0, 0, false
	}
}

// Button identifies a physical pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	default:
		return fmt.Sprintf("button(%d)", int(b))
	}
}

// Transition is the direction of a button edge.
type Transition int

const (
	TransitionDown Transition = iota
	TransitionUp
)

func (t Transition) String() string {
	if t == TransitionDown {
		return "down"
	}
	return "up"
}

// KindFor returns the edge kind for a button transition.
func KindFor(button Button, transition Transition) Kind {
	switch {
	case button == ButtonLeft && transition == TransitionDown:
		return KindLeftDown
	case button == ButtonLeft:
		return KindLeftUp
	case transition == TransitionDown:
		return KindRightDown
	default:
		return KindRightUp
	}
}

// Point is a signed screen coordinate.
type Point struct {
	X int
	Y int
}

// Event is one timestamped pointer occurrence. Timestamp is the elapsed time
// since the session origin; Payload is the raw wheel delta and zero for every
// other kind.
type Event struct {
	Timestamp time.Duration
	Point     Point
	Kind      Kind
	Payload   int
}

// NewEvent builds a non-wheel event.
func NewEvent(ts time.Duration, p Point, kind Kind) Event {
	return Event{Timestamp: ts, Point: p, Kind: kind}
}

// NewWheelEvent builds a wheel event carrying the raw rotation delta.
func NewWheelEvent(ts time.Duration, p Point, delta int) Event {
	return Event{Timestamp: ts, Point: p, Kind: KindWheel, Payload: delta}
}

// Seconds returns the timestamp as fractional seconds.
func (e Event) Seconds() float64 {
	return e.Timestamp.Seconds()
}

// WheelDirection returns the sign of a wheel payload: -1, 0 or +1.
func WheelDirection(payload int) int {
	switch {
	case payload > 0:
		return 1
	case payload < 0:
		return -1
	default:
		return 0
	}
}
