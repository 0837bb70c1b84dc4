// Package playback replays a recorded event sequence through a
// backend.Injector, reproducing the delay between consecutive events.
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/penwyp/go-mouse-recorder/internal/backend"
	"github.com/penwyp/go-mouse-recorder/internal/core/model"
	"github.com/penwyp/go-mouse-recorder/internal/util"
)

// SleepFunc suspends the caller for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options tunes an Engine.
type Options struct {
	// Sleep defaults to a timer that honours cancellation.
	Sleep SleepFunc
	// Now defaults to time.Now. Waits are measured from the start of the
	// replay on this clock, so sleep overshoot does not accumulate.
	Now func() time.Time
}

// Result summarizes a replay.
type Result struct {
	Events   int
	Injected int
	Slept    time.Duration
}

// Engine is a single-use playback session.
type Engine struct {
	injector backend.Injector
	sleep    SleepFunc
	now      func() time.Time

	mu      sync.Mutex
	started bool
}

// NewEngine returns a playback engine driving injector.
func NewEngine(injector backend.Injector, opts Options) (*Engine, error) {
	if injector == nil {
		return nil, errors.New("playback injector must not be nil")
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{injector: injector, sleep: sleep, now: now}, nil
}

// Play walks events in order. Each event is due at its timestamp measured
// from the start of the replay; Play waits until then, moves the pointer to
// the event's position and then issues the kind-specific injection. An
// event stamped before its predecessor is due with it. An empty sequence is
// a no-op.
func (e *Engine) Play(ctx context.Context, events []model.Event) (Result, error) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return Result{}, fmt.Errorf("%w: playback engine already used", model.ErrSessionAlreadyActive)
	}
	e.started = true
	e.mu.Unlock()

	var result Result
	if len(events) == 0 {
		util.LogInfo("Playback skipped, trace has no events")
		return result, nil
	}

	util.LogInfo("Playback started", util.F("events", len(events)))
	start := e.now()

	var due time.Duration
	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		due = max(due, ev.Timestamp)
		if delay := Delay(e.now().Sub(start), due); delay > 0 {
			if err := e.sleep(ctx, delay); err != nil {
				return result, err
			}
			result.Slept += delay
		}

		n, err := e.dispatch(ev)
		result.Injected += n
		if err != nil {
			util.LogError("Playback aborted",
				util.F("index", i),
				util.F("kind", ev.Kind.String()),
				util.F("error", err.Error()))
			return result, err
		}
		result.Events++
	}

	util.LogInfo("Playback finished",
		util.F("events", result.Events),
		util.F("injected", result.Injected),
		util.F("elapsed", util.FormatDuration(e.now().Sub(start))))
	return result, nil
}

// Delay is the wait from elapsed until due, rounded to the millisecond.
// Events already due yield zero.
func Delay(elapsed, due time.Duration) time.Duration {
	d := (due - elapsed).Round(time.Millisecond)
	if d < 0 {
		return 0
	}
	return d
}

// dispatch returns how many injector calls succeeded.
func (e *Engine) dispatch(ev model.Event) (int, error) {
	if err := e.injector.MovePointer(ev.Point.X, ev.Point.Y); err != nil {
		return 0, wrapBackend(err)
	}

	if button, transition, ok := ev.Kind.Button(); ok {
		if err := e.injector.InjectButton(button, transition); err != nil {
			return 1, wrapBackend(err)
		}
		return 2, nil
	}

	if ev.Kind == model.KindWheel {
		direction := model.WheelDirection(ev.Payload)
		if direction == 0 {
			return 1, nil
		}
		if err := e.injector.InjectWheel(direction); err != nil {
			return 1, wrapBackend(err)
		}
		return 2, nil
	}
	return 1, nil
}

func wrapBackend(err error) error {
	if errors.Is(err, model.ErrBackendUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
