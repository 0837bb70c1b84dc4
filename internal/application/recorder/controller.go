// Package recorder owns the session lifecycle: at most one recording or
// playback runs at a time, and each begins from a fresh engine.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/penwyp/go-mouse-recorder/internal/backend"
	"github.com/penwyp/go-mouse-recorder/internal/core/capture"
	"github.com/penwyp/go-mouse-recorder/internal/core/model"
	"github.com/penwyp/go-mouse-recorder/internal/core/playback"
	"github.com/penwyp/go-mouse-recorder/internal/data/trace"
	"github.com/penwyp/go-mouse-recorder/internal/util"
)

// ErrNotRecording is returned by EndRecording when no capture is running.
var ErrNotRecording = errors.New("no recording in progress")

// Session states reported by Active.
const (
	StateIdle      = "idle"
	StateRecording = "recording"
	StatePlaying   = "playing"
)

// Dependencies are the backend capabilities a controller drives. Either may
// be nil when the caller only records or only plays.
type Dependencies struct {
	Source   backend.Source
	Injector backend.Injector
}

// Controller serializes recording and playback sessions.
type Controller struct {
	config *Config
	deps   Dependencies

	mu        sync.Mutex
	state     string
	sessionID string
	capture   *capture.Engine
	writer    *trace.Writer
}

// NewController validates cfg and returns an idle controller.
func NewController(cfg *Config, deps Dependencies) (*Controller, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Controller{config: cfg, deps: deps, state: StateIdle}, nil
}

// Config returns the validated configuration.
func (c *Controller) Config() *Config {
	return c.config
}

// Active reports the current session state.
func (c *Controller) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// BeginRecording truncates the trace file, writes the header and starts
// capturing. The returned id tags the session in logs.
func (c *Controller) BeginRecording(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return "", fmt.Errorf("%w: %s in progress", model.ErrSessionAlreadyActive, c.state)
	}
	if c.deps.Source == nil {
		return "", fmt.Errorf("%w: no capture source configured", model.ErrBackendUnavailable)
	}

	writer, err := trace.Create(c.config.TracePath)
	if err != nil {
		return "", err
	}

	engine, err := capture.NewEngine(c.deps.Source, writer, capture.Options{
		Interval:  c.config.PollInterval,
		QueueSize: c.config.QueueSize,
	})
	if err != nil {
		_ = writer.Close()
		return "", err
	}
	if err := engine.Start(ctx); err != nil {
		return "", err
	}

	c.sessionID = uuid.NewString()
	c.capture = engine
	c.writer = writer
	c.state = StateRecording

	util.LogInfo("Recording started",
		util.F("session", c.sessionID),
		util.F("trace", c.config.TracePath))
	return c.sessionID, nil
}

// RecordingDone is closed when the running capture ends, including when it
// ends on its own after a write failure or context cancellation. EndRecording
// must still be called to collect the result. Without a recording the
// returned channel is already closed.
func (c *Controller) RecordingDone() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return c.capture.Done()
}

// EndRecording stops the capture, flushes the trace and returns to idle.
func (c *Controller) EndRecording() (capture.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRecording {
		return capture.Result{}, ErrNotRecording
	}

	result, err := c.capture.Stop()
	util.LogInfo("Recording ended",
		util.F("session", c.sessionID),
		util.F("events", c.writer.Count()))

	c.capture = nil
	c.writer = nil
	c.sessionID = ""
	c.state = StateIdle
	return result, err
}

// PlaybackRun is a playback executing on its own goroutine.
type PlaybackRun struct {
	ID     string
	Events int

	cancel context.CancelFunc
	done   chan struct{}
	result playback.Result
	err    error
}

// Done is closed when the playback finishes.
func (r *PlaybackRun) Done() <-chan struct{} {
	return r.done
}

// Cancel aborts the playback before its next event.
func (r *PlaybackRun) Cancel() {
	r.cancel()
}

// Wait blocks until the playback finishes.
func (r *PlaybackRun) Wait() (playback.Result, error) {
	<-r.done
	return r.result, r.err
}

// BeginPlayback loads the whole trace and replays it in the background.
// Trace errors are returned before anything is injected.
func (c *Controller) BeginPlayback(ctx context.Context) (*PlaybackRun, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return nil, fmt.Errorf("%w: %s in progress", model.ErrSessionAlreadyActive, c.state)
	}
	if c.deps.Injector == nil {
		return nil, fmt.Errorf("%w: no injector configured", model.ErrBackendUnavailable)
	}

	events, err := trace.ReadAll(c.config.TracePath)
	if err != nil {
		return nil, err
	}

	engine, err := playback.NewEngine(c.deps.Injector, playback.Options{})
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	run := &PlaybackRun{
		ID:     uuid.NewString(),
		Events: len(events),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.sessionID = run.ID
	c.state = StatePlaying

	util.LogInfo("Playback session started",
		util.F("session", run.ID),
		util.F("trace", c.config.TracePath),
		util.F("events", len(events)))

	go func() {
		defer close(run.done)
		defer cancel()

		run.result, run.err = engine.Play(runCtx, events)

		c.mu.Lock()
		c.state = StateIdle
		c.sessionID = ""
		c.mu.Unlock()

		if run.err != nil {
			util.LogWarn("Playback ended early",
				util.F("session", run.ID),
				util.F("error", run.err.Error()))
		}
	}()
	return run, nil
}
