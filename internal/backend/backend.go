// Package backend defines the narrow capability interface the capture and
// playback engines use to read pointer state and synthesize input, plus the
// adapters shipped with the recorder.
package backend

import (
	"github.com/penwyp/go-mouse-recorder/internal/core/model"
)

// WheelFunc receives one wheel notification with its raw rotation delta.
// It may be called from any goroutine.
type WheelFunc func(delta int)

// Subscription is a live wheel notification registration.
type Subscription interface {
	Unsubscribe() error
}

// Source supplies sampled pointer state and asynchronous wheel notifications.
type Source interface {
	PointerPosition() (model.Point, error)
	ButtonPressed(button model.Button) bool
	SubscribeWheel(fn WheelFunc) (Subscription, error)
}

// Injector synthesizes pointer input.
type Injector interface {
	MovePointer(x, y int) error
	InjectButton(button model.Button, transition model.Transition) error
	// InjectWheel rotates the wheel one notch; direction is -1 or +1.
	InjectWheel(direction int) error
}

// Backend is a Source that can also inject.
type Backend interface {
	Source
	Injector
}

var _ Backend = (*Scripted)(nil)

type subscriptionFunc func() error

func (f subscriptionFunc) Unsubscribe() error {
	return f()
}
