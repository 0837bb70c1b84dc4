package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwyp/go-mouse-recorder/internal/core/model"
	"github.com/penwyp/go-mouse-recorder/internal/data/trace"
)

// ScenarioEvents is the canonical click-and-scroll session: a move, a left
// click spanning a small drag, then one wheel notch down.
func ScenarioEvents() []model.Event {
	return []model.Event{
		model.NewEvent(0, model.Point{X: 100, Y: 100}, model.KindMove),
		model.NewEvent(100*time.Millisecond, model.Point{X: 100, Y: 100}, model.KindLeftDown),
		model.NewEvent(300*time.Millisecond, model.Point{X: 105, Y: 102}, model.KindLeftUp),
		model.NewWheelEvent(500*time.Millisecond, model.Point{X: 105, Y: 102}, -120),
	}
}

// WriteTrace writes events to path through the trace writer.
func WriteTrace(path string, events []model.Event) error {
	w, err := trace.Create(path)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if err := w.Append(ev); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}

// WriteMalformedTrace writes a header, goodRows valid move rows and then a
// row with an unknown event kind, so the reader fails on line goodRows+2.
func WriteMalformedTrace(path string, goodRows int) error {
	var b strings.Builder
	b.WriteString(trace.Header + "\n")
	for i := 0; i < goodRows; i++ {
		ev := model.NewEvent(time.Duration(i)*10*time.Millisecond, model.Point{X: i, Y: i}, model.KindMove)
		b.WriteString(trace.FormatEvent(ev) + "\n")
	}
	b.WriteString("1.0000:5:5:middle_down:\n")
	return os.WriteFile(path, []byte(b.String()), 0644)
}

// TraceGenerator writes synthetic recording sessions under a base directory.
type TraceGenerator struct {
	baseDir string
	step    time.Duration
}

// NewTraceGenerator creates a generator sampling at the default capture rate.
func NewTraceGenerator(baseDir string) *TraceGenerator {
	return &TraceGenerator{
		baseDir: baseDir,
		step:    5 * time.Millisecond,
	}
}

// GenerateClickSession writes clicks left clicks at distinct positions and
// returns the trace path.
func (g *TraceGenerator) GenerateClickSession(name string, clicks int) (string, error) {
	var events []model.Event
	ts := time.Duration(0)
	for i := 0; i < clicks; i++ {
		p := model.Point{X: 50 + i*10, Y: 80 + i*5}
		events = append(events,
			model.NewEvent(ts, p, model.KindMove),
			model.NewEvent(ts+g.step, p, model.KindLeftDown),
			model.NewEvent(ts+2*g.step, p, model.KindLeftUp),
		)
		ts += 20 * g.step
	}
	return g.write(name, events)
}

// GenerateDragSession writes a right-button drag from `from` to `to` in
// steps polling intervals.
func (g *TraceGenerator) GenerateDragSession(name string, from, to model.Point, steps int) (string, error) {
	if steps < 1 {
		steps = 1
	}
	events := []model.Event{model.NewEvent(0, from, model.KindRightDown)}
	for i := 1; i <= steps; i++ {
		p := model.Point{
			X: from.X + (to.X-from.X)*i/steps,
			Y: from.Y + (to.Y-from.Y)*i/steps,
		}
		events = append(events, model.NewEvent(time.Duration(i)*g.step, p, model.KindMove))
	}
	events = append(events, model.NewEvent(time.Duration(steps+1)*g.step, to, model.KindRightUp))
	return g.write(name, events)
}

// GenerateScrollSession writes notches wheel events at a fixed position,
// alternating direction every `burst` notches.
func (g *TraceGenerator) GenerateScrollSession(name string, notches, burst int) (string, error) {
	if burst < 1 {
		burst = notches
	}
	p := model.Point{X: 400, Y: 300}
	events := []model.Event{model.NewEvent(0, p, model.KindMove)}
	for i := 0; i < notches; i++ {
		delta := -120
		if (i/burst)%2 == 1 {
			delta = 120
		}
		events = append(events, model.NewWheelEvent(time.Duration(i+1)*g.step, p, delta))
	}
	return g.write(name, events)
}

func (g *TraceGenerator) write(name string, events []model.Event) (string, error) {
	if err := os.MkdirAll(g.baseDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(g.baseDir, name+".txt")
	if err := WriteTrace(path, events); err != nil {
		return "", fmt.Errorf("failed to write fixture %s: %w", name, err)
	}
	return path, nil
}
