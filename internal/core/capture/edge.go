package capture

import "github.com/penwyp/go-mouse-recorder/internal/core/model"

// EdgeDetector turns sampled button levels into down/up edges. At most one
// edge is reported per sample, checked in the order left-down, left-up,
// right-down, right-up. Only the reported button's level is committed, so a
// right edge that coincides with a left edge is reported on the next sample
// instead of being lost, and each button's edges keep alternating.
type EdgeDetector struct {
	wasLeftDown  bool
	wasRightDown bool
}

// Reset forgets the previous levels; both buttons are assumed released.
func (d *EdgeDetector) Reset() {
	d.wasLeftDown = false
	d.wasRightDown = false
}

// Detect returns the edge kind for this sample, or move when no edge fired.
func (d *EdgeDetector) Detect(left, right bool) model.Kind {
	switch {
	case left && !d.wasLeftDown:
		d.wasLeftDown = true
		return model.KindLeftDown
	case !left && d.wasLeftDown:
		d.wasLeftDown = false
		return model.KindLeftUp
	case right && !d.wasRightDown:
		d.wasRightDown = true
		return model.KindRightDown
	case !right && d.wasRightDown:
		d.wasRightDown = false
		return model.KindRightUp
	default:
		return model.KindMove
	}
}
