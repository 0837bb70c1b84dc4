package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/penwyp/go-mouse-recorder/internal/backend"
	"github.com/penwyp/go-mouse-recorder/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock records requested sleeps and advances its own time by each one
// plus overshoot, standing in for a timer that wakes late.
type fakeClock struct {
	mu        sync.Mutex
	now       time.Time
	overshoot time.Duration
	delays    []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.delays = append(c.delays, d)
	c.now = c.now.Add(d + c.overshoot)
	c.mu.Unlock()
	return ctx.Err()
}

func (c *fakeClock) options() Options {
	return Options{Sleep: c.sleep, Now: c.Now}
}

func at(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func TestDelay(t *testing.T) {
	tests := []struct {
		name     string
		elapsed, due time.Duration
		want         time.Duration
	}{
		{"already due", 0, 0, 0},
		{"whole milliseconds", 0, 500 * time.Millisecond, 500 * time.Millisecond},
		{"rounded down", 0, 1200400 * time.Microsecond, 1200 * time.Millisecond},
		{"rounded up", 0, 1200600 * time.Microsecond, 1201 * time.Millisecond},
		{"late clamps to zero", time.Second, 500 * time.Millisecond, 0},
		{"remaining after overshoot", 503 * time.Millisecond, 700 * time.Millisecond, 197 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Delay(tt.elapsed, tt.due))
		})
	}
}

func TestPlayTimingFidelity(t *testing.T) {
	injector := backend.NewScripted()
	rec := newFakeClock()
	e, err := NewEngine(injector, rec.options())
	require.NoError(t, err)

	events := []model.Event{
		model.NewEvent(at(0), model.Point{X: 1, Y: 1}, model.KindMove),
		model.NewEvent(at(0.5), model.Point{X: 2, Y: 2}, model.KindMove),
		model.NewEvent(at(1.2), model.Point{X: 3, Y: 3}, model.KindMove),
	}
	result, err := e.Play(context.Background(), events)
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{500 * time.Millisecond, 700 * time.Millisecond}, rec.delays)
	assert.Equal(t, 1200*time.Millisecond, result.Slept)
	assert.Equal(t, 3, result.Events)
	assert.Equal(t, 3, result.Injected)
}

func TestPlayOvershootDoesNotAccumulate(t *testing.T) {
	injector := backend.NewScripted()
	clock := newFakeClock()
	clock.overshoot = time.Millisecond
	e, err := NewEngine(injector, clock.options())
	require.NoError(t, err)

	events := make([]model.Event, 100)
	for i := range events {
		events[i] = model.NewEvent(time.Duration(i)*5*time.Millisecond, model.Point{X: i, Y: i}, model.KindMove)
	}
	start := clock.Now()
	result, err := e.Play(context.Background(), events)
	require.NoError(t, err)

	assert.Equal(t, 100, result.Events)
	// Every wake after the first is 1ms late, so the next wait shrinks to
	// 4ms and the run ends one overshoot past the last timestamp.
	assert.Equal(t, 495*time.Millisecond+time.Millisecond, clock.Now().Sub(start))
	require.Len(t, clock.delays, 99)
	assert.Equal(t, 5*time.Millisecond, clock.delays[0])
	for _, d := range clock.delays[1:] {
		assert.Equal(t, 4*time.Millisecond, d)
	}
}

func TestPlayOutOfOrderTimestampIsDueImmediately(t *testing.T) {
	injector := backend.NewScripted()
	clock := newFakeClock()
	e, err := NewEngine(injector, clock.options())
	require.NoError(t, err)

	result, err := e.Play(context.Background(), []model.Event{
		model.NewEvent(0, model.Point{}, model.KindMove),
		model.NewEvent(at(0.3), model.Point{}, model.KindMove),
		model.NewEvent(at(0.1), model.Point{}, model.KindMove),
		model.NewEvent(at(0.4), model.Point{}, model.KindMove),
	})
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{300 * time.Millisecond, 100 * time.Millisecond}, clock.delays)
	assert.Equal(t, 400*time.Millisecond, result.Slept)
	assert.Equal(t, 4, result.Events)
}

func TestPlayScenarioOrder(t *testing.T) {
	injector := backend.NewScripted()
	rec := newFakeClock()
	e, err := NewEngine(injector, rec.options())
	require.NoError(t, err)

	events := []model.Event{
		model.NewEvent(at(0), model.Point{X: 100, Y: 100}, model.KindMove),
		model.NewEvent(at(0.1), model.Point{X: 100, Y: 100}, model.KindLeftDown),
		model.NewEvent(at(0.3), model.Point{X: 105, Y: 102}, model.KindLeftUp),
		model.NewWheelEvent(at(0.5), model.Point{X: 105, Y: 102}, -120),
	}
	result, err := e.Play(context.Background(), events)
	require.NoError(t, err)

	ops := injector.Ops()
	require.Len(t, ops, 7)
	assert.Equal(t, backend.OpMove, ops[0].Kind)
	assert.Equal(t, model.Point{X: 100, Y: 100}, ops[0].Point)

	assert.Equal(t, backend.OpMove, ops[1].Kind)
	assert.Equal(t, backend.OpButton, ops[2].Kind)
	assert.Equal(t, model.ButtonLeft, ops[2].Button)
	assert.Equal(t, model.TransitionDown, ops[2].Transition)

	assert.Equal(t, backend.OpMove, ops[3].Kind)
	assert.Equal(t, model.Point{X: 105, Y: 102}, ops[3].Point)
	assert.Equal(t, backend.OpButton, ops[4].Kind)
	assert.Equal(t, model.TransitionUp, ops[4].Transition)
	assert.Equal(t, model.Point{X: 105, Y: 102}, ops[4].Point)

	assert.Equal(t, backend.OpMove, ops[5].Kind)
	assert.Equal(t, backend.OpWheel, ops[6].Kind)
	assert.Equal(t, -1, ops[6].Direction, "one notch, sign only")

	assert.Equal(t, []time.Duration{
		100 * time.Millisecond, 200 * time.Millisecond, 200 * time.Millisecond,
	}, rec.delays)
	assert.Equal(t, 4, result.Events)
	assert.Equal(t, 7, result.Injected)
}

func TestPlayRightButtonAndWheelMagnitude(t *testing.T) {
	injector := backend.NewScripted()
	e, err := NewEngine(injector, newFakeClock().options())
	require.NoError(t, err)

	_, err = e.Play(context.Background(), []model.Event{
		model.NewEvent(0, model.Point{}, model.KindRightDown),
		model.NewEvent(0, model.Point{}, model.KindRightUp),
		model.NewWheelEvent(0, model.Point{}, 360),
		model.NewWheelEvent(0, model.Point{}, 0),
	})
	require.NoError(t, err)

	ops := injector.Ops()
	require.Len(t, ops, 7)
	assert.Equal(t, model.ButtonRight, ops[1].Button)
	assert.Equal(t, model.TransitionDown, ops[1].Transition)
	assert.Equal(t, model.ButtonRight, ops[3].Button)
	assert.Equal(t, model.TransitionUp, ops[3].Transition)
	assert.Equal(t, 1, ops[5].Direction)
	assert.Equal(t, backend.OpMove, ops[6].Kind, "zero delta wheel only moves")
}

func TestPlayEmptyTrace(t *testing.T) {
	injector := backend.NewScripted()
	e, err := NewEngine(injector, Options{})
	require.NoError(t, err)

	result, err := e.Play(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Result{}, result)
	assert.Empty(t, injector.Ops())
}

func TestPlayInjectionFailure(t *testing.T) {
	injector := backend.NewScripted()
	injector.InjectErr = errors.New("device gone")
	injector.FailAfter = 2

	e, err := NewEngine(injector, newFakeClock().options())
	require.NoError(t, err)

	result, err := e.Play(context.Background(), []model.Event{
		model.NewEvent(0, model.Point{X: 1, Y: 1}, model.KindMove),
		model.NewEvent(at(0.1), model.Point{X: 1, Y: 1}, model.KindLeftDown),
		model.NewEvent(at(0.2), model.Point{X: 1, Y: 1}, model.KindLeftUp),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrBackendUnavailable))
	assert.Equal(t, 1, result.Events)
	assert.Equal(t, 2, result.Injected)
	assert.Len(t, injector.Ops(), 2)
}

func TestPlayCancelled(t *testing.T) {
	injector := backend.NewScripted()
	e, err := NewEngine(injector, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	started := time.Now()
	result, err := e.Play(ctx, []model.Event{
		model.NewEvent(0, model.Point{}, model.KindMove),
		model.NewEvent(10*time.Second, model.Point{}, model.KindMove),
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(started), 5*time.Second)
	assert.Equal(t, 1, result.Events)
	assert.Len(t, injector.Ops(), 1)
}

func TestPlaySingleUse(t *testing.T) {
	e, err := NewEngine(backend.NewScripted(), Options{})
	require.NoError(t, err)

	_, err = e.Play(context.Background(), nil)
	require.NoError(t, err)
	_, err = e.Play(context.Background(), nil)
	assert.ErrorIs(t, err, model.ErrSessionAlreadyActive)
}

func TestPlayRealTimer(t *testing.T) {
	injector := backend.NewScripted()
	e, err := NewEngine(injector, Options{})
	require.NoError(t, err)

	_, err = e.Play(context.Background(), []model.Event{
		model.NewEvent(0, model.Point{}, model.KindMove),
		model.NewEvent(50*time.Millisecond, model.Point{}, model.KindMove),
		model.NewEvent(120*time.Millisecond, model.Point{}, model.KindMove),
	})
	require.NoError(t, err)

	ops := injector.Ops()
	require.Len(t, ops, 3)
	first := ops[1].At.Sub(ops[0].At)
	second := ops[2].At.Sub(ops[1].At)
	assert.InDelta(t, 50*time.Millisecond, first, float64(40*time.Millisecond))
	assert.InDelta(t, 70*time.Millisecond, second, float64(40*time.Millisecond))
}

func TestNewEngineRequiresInjector(t *testing.T) {
	_, err := NewEngine(nil, Options{})
	assert.Error(t, err)
}
