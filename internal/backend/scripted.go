package backend

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/penwyp/go-mouse-recorder/internal/core/model"
)

// Sample is one scripted polling observation.
type Sample struct {
	Point model.Point
	Left  bool
	Right bool
	// Fail makes the position read for this sample return an error.
	Fail bool
}

// OpKind tags a recorded injection.
type OpKind int

const (
	OpMove OpKind = iota
	OpButton
	OpWheel
)

func (k OpKind) String() string {
	switch k {
	case OpMove:
		return "move"
	case OpButton:
		return "button"
	case OpWheel:
		return "wheel"
	default:
		return fmt.Sprintf("op(%d)", int(k))
	}
}

// Op is one injected operation as seen by the scripted backend.
type Op struct {
	Kind       OpKind
	Point      model.Point
	Button     model.Button
	Transition model.Transition
	Direction  int
	At         time.Time
}

var errScriptedPosition = errors.New("scripted position read failure")

// Scripted is a deterministic in-memory backend. Each PointerPosition call
// consumes the next sample and the button reads that follow report that
// sample's state; the last sample repeats once the script is exhausted.
// Position reads made while EmitWheel is delivering a notification return
// the current sample without consuming one.
type Scripted struct {
	mu        sync.Mutex
	samples   []Sample
	cursor    int
	current   Sample
	exhausted chan struct{}
	exhaustMu sync.Once

	subs     map[int]WheelFunc
	nextID   int
	emitting int

	ops []Op

	// SubscribeErr, when set, makes SubscribeWheel fail.
	SubscribeErr error
	// InjectErr, when set, fails every injection after FailAfter successful ones.
	InjectErr error
	FailAfter int
}

// NewScripted builds a backend that plays samples in order.
func NewScripted(samples ...Sample) *Scripted {
	s := &Scripted{
		samples:   samples,
		exhausted: make(chan struct{}),
		subs:      make(map[int]WheelFunc),
	}
	if len(samples) == 0 {
		s.exhaustMu.Do(func() { close(s.exhausted) })
	}
	return s
}

// Exhausted is closed once every scripted sample has been read.
func (s *Scripted) Exhausted() <-chan struct{} {
	return s.exhausted
}

func (s *Scripted) PointerPosition() (model.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emitting == 0 && s.cursor < len(s.samples) {
		s.current = s.samples[s.cursor]
		s.cursor++
		if s.cursor == len(s.samples) {
			s.exhaustMu.Do(func() { close(s.exhausted) })
		}
		if s.current.Fail {
			return model.Point{}, errScriptedPosition
		}
	}
	return s.current.Point, nil
}

func (s *Scripted) ButtonPressed(button model.Button) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if button == model.ButtonLeft {
		return s.current.Left
	}
	return s.current.Right
}

func (s *Scripted) SubscribeWheel(fn WheelFunc) (Subscription, error) {
	if s.SubscribeErr != nil {
		return nil, s.SubscribeErr
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return subscriptionFunc(func() error {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		return nil
	}), nil
}

// Subscribers returns how many wheel subscriptions are live.
func (s *Scripted) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// EmitWheel notifies every subscriber on the calling goroutine.
func (s *Scripted) EmitWheel(delta int) {
	s.mu.Lock()
	fns := make([]WheelFunc, 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.emitting++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.emitting--
		s.mu.Unlock()
	}()
	for _, fn := range fns {
		fn(delta)
	}
}

func (s *Scripted) MovePointer(x, y int) error {
	return s.record(Op{Kind: OpMove, Point: model.Point{X: x, Y: y}})
}

func (s *Scripted) InjectButton(button model.Button, transition model.Transition) error {
	return s.record(Op{Kind: OpButton, Button: button, Transition: transition})
}

func (s *Scripted) InjectWheel(direction int) error {
	return s.record(Op{Kind: OpWheel, Direction: direction})
}

func (s *Scripted) record(op Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.InjectErr != nil && len(s.ops) >= s.FailAfter {
		return s.InjectErr
	}
	op.At = time.Now()
	if op.Kind != OpMove && len(s.ops) > 0 {
		op.Point = s.lastPointLocked()
	}
	s.ops = append(s.ops, op)
	return nil
}

func (s *Scripted) lastPointLocked() model.Point {
	for i := len(s.ops) - 1; i >= 0; i-- {
		if s.ops[i].Kind == OpMove {
			return s.ops[i].Point
		}
	}
	return model.Point{}
}

// Ops returns a copy of the injected operations.
func (s *Scripted) Ops() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Op, len(s.ops))
	copy(out, s.ops)
	return out
}
