// Package capture records pointer activity from a backend.Source into an
// ordered event stream. Two producers feed it: a polling loop that samples
// position and buttons at a fixed interval, and the backend's wheel
// notifications arriving on their own goroutine. Both pass through a single
// admission point that stamps the elapsed time and enqueues the event; one
// writer goroutine drains the queue into the Sink.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/penwyp/go-mouse-recorder/internal/backend"
	"github.com/penwyp/go-mouse-recorder/internal/core/constants"
	"github.com/penwyp/go-mouse-recorder/internal/core/model"
	"github.com/penwyp/go-mouse-recorder/internal/util"
)

// Sink receives events in order of record. It is only ever called from the
// engine's writer goroutine.
type Sink interface {
	Append(ev model.Event) error
	Close() error
}

// flusher is implemented by sinks that buffer; the writer flushes whenever
// the queue runs empty so the file can be followed while recording.
type flusher interface {
	Flush() error
}

// Options tunes an Engine. Zero values select defaults.
type Options struct {
	Interval  time.Duration
	QueueSize int
	// Now is the clock source; elapsed time is measured from the value it
	// returns at Start.
	Now func() time.Time
}

// Result summarizes a finished capture.
type Result struct {
	Events   int
	Wheel    int
	Duration time.Duration
}

type engineState int

const (
	stateIdle engineState = iota
	stateRunning
	stateStopped
)

// Engine is a single-use capture session.
type Engine struct {
	source    backend.Source
	sink      Sink
	interval  time.Duration
	queueSize int
	now       func() time.Time

	stateMu sync.Mutex
	state   engineState

	// admission point, shared by the poll loop and wheel callbacks
	admitMu sync.Mutex
	origin  time.Time
	queue   chan model.Event
	closed  bool
	lastPos model.Point

	edges  EdgeDetector
	cancel context.CancelFunc
	sub    backend.Subscription

	failed     atomic.Bool
	writeErr   error
	pollDone   chan struct{}
	writerDone chan struct{}

	result Result

	stopOnce sync.Once
	stopErr  error
}

// NewEngine wires a capture engine. The engine owns sink from Start on and
// closes it on every exit path.
func NewEngine(source backend.Source, sink Sink, opts Options) (*Engine, error) {
	if source == nil {
		return nil, errors.New("capture source must not be nil")
	}
	if sink == nil {
		return nil, errors.New("capture sink must not be nil")
	}
	if opts.Interval < 0 {
		return nil, fmt.Errorf("poll interval must not be negative, got %v", opts.Interval)
	}

	interval := opts.Interval
	if interval == 0 {
		interval = constants.DefaultPollInterval
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = constants.DefaultQueueSize
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		source:     source,
		sink:       sink,
		interval:   interval,
		queueSize:  queueSize,
		now:        now,
		pollDone:   make(chan struct{}),
		writerDone: make(chan struct{}),
	}, nil
}

// Start resets the edge detector, starts the clock at zero, subscribes to
// wheel notifications and launches the polling loop. Cancelling ctx ends the
// capture the same way a write failure does: Done is closed and Stop must
// still be called to release the sink.
func (e *Engine) Start(ctx context.Context) error {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()

	if e.state != stateIdle {
		return fmt.Errorf("%w: capture engine already started", model.ErrSessionAlreadyActive)
	}

	e.edges.Reset()
	e.admitMu.Lock()
	e.origin = e.now()
	e.queue = make(chan model.Event, e.queueSize)
	e.admitMu.Unlock()

	sub, err := e.source.SubscribeWheel(e.onWheel)
	if err != nil {
		e.state = stateStopped
		close(e.pollDone)
		close(e.writerDone)
		if closeErr := e.sink.Close(); closeErr != nil {
			util.LogWarnf("Failed to close trace after subscribe failure: %v", closeErr)
		}
		if errors.Is(err, model.ErrBackendUnavailable) {
			return err
		}
		return fmt.Errorf("%w: subscribe wheel: %v", model.ErrBackendUnavailable, err)
	}
	e.sub = sub

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.state = stateRunning

	go e.writeLoop()
	go e.pollLoop(runCtx)

	util.LogInfo("Capture started", util.F("interval", e.interval.String()))
	return nil
}

// Done is closed once the polling loop has exited, whether through Stop, a
// write failure or cancellation of the Start context.
func (e *Engine) Done() <-chan struct{} {
	return e.pollDone
}

// Stop ends the capture: the polling loop observes the cancellation at its
// next tick, the wheel subscription is released, queued events are written
// and the sink is closed. Stop is idempotent and returns the first write
// error, if any.
func (e *Engine) Stop() (Result, error) {
	e.stopOnce.Do(func() {
		e.stateMu.Lock()
		state := e.state
		e.state = stateStopped
		e.stateMu.Unlock()

		if state != stateRunning {
			return
		}

		e.cancel()
		<-e.pollDone

		if err := e.sub.Unsubscribe(); err != nil {
			util.LogWarnf("Failed to unsubscribe wheel notifications: %v", err)
		}

		e.admitMu.Lock()
		e.closed = true
		close(e.queue)
		e.admitMu.Unlock()

		<-e.writerDone

		closeErr := e.sink.Close()
		switch {
		case e.writeErr != nil:
			e.stopErr = e.writeErr
		case closeErr != nil:
			e.stopErr = wrapIO(closeErr)
		}

		util.LogInfo("Capture stopped",
			util.F("events", e.result.Events),
			util.F("wheel", e.result.Wheel),
			util.F("duration", util.FormatDuration(e.result.Duration)))
	})
	return e.result, e.stopErr
}

func (e *Engine) pollLoop(ctx context.Context) {
	defer close(e.pollDone)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		e.sample()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (e *Engine) sample() {
	pos, err := e.source.PointerPosition()
	if err != nil {
		util.LogDebugf("Skipping sample, pointer position unavailable: %v", err)
		return
	}
	left := e.source.ButtonPressed(model.ButtonLeft)
	right := e.source.ButtonPressed(model.ButtonRight)
	kind := e.edges.Detect(left, right)

	e.admit(func(ts time.Duration) model.Event {
		e.lastPos = pos
		return model.NewEvent(ts, pos, kind)
	})
}

func (e *Engine) onWheel(delta int) {
	pos, err := e.source.PointerPosition()
	e.admit(func(ts time.Duration) model.Event {
		if err != nil {
			pos = e.lastPos
		}
		return model.NewWheelEvent(ts, pos, delta)
	})
}

// admit is the single serialization point. The timestamp is taken while the
// lock is held, so the queue order is also timestamp order.
func (e *Engine) admit(build func(ts time.Duration) model.Event) bool {
	e.admitMu.Lock()
	defer e.admitMu.Unlock()

	if e.closed || e.queue == nil || e.failed.Load() {
		return false
	}
	e.queue <- build(e.now().Sub(e.origin))
	return true
}

func (e *Engine) writeLoop() {
	defer close(e.writerDone)

	for ev := range e.queue {
		if e.failed.Load() {
			continue
		}
		err := e.sink.Append(ev)
		if err == nil && len(e.queue) == 0 {
			if f, ok := e.sink.(flusher); ok {
				err = f.Flush()
			}
		}
		if err != nil {
			e.writeErr = wrapIO(err)
			e.failed.Store(true)
			e.cancel()
			util.LogError("Capture aborted, trace write failed", util.F("error", err.Error()))
			continue
		}

		e.result.Events++
		if ev.Kind == model.KindWheel {
			e.result.Wheel++
		}
		e.result.Duration = ev.Timestamp
	}
}

func wrapIO(err error) error {
	if errors.Is(err, model.ErrIO) {
		return err
	}
	return fmt.Errorf("%w: %v", model.ErrIO, err)
}
