package backend

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/penwyp/go-mouse-recorder/internal/core/constants"
	"github.com/penwyp/go-mouse-recorder/internal/core/model"
	"github.com/penwyp/go-mouse-recorder/internal/util"
	"golang.org/x/term"
)

const (
	// Any-event motion tracking plus SGR extended coordinates.
	enableMouseTracking  = "\x1b[?1003h\x1b[?1006h"
	disableMouseTracking = "\x1b[?1006l\x1b[?1003l"

	sgrWheelFlag  = 64
	sgrMotionFlag = 32
	maxSGRLength  = 32

	keyCtrlC = 3
)

var errNoPointerReport = errors.New("no pointer report received yet")

// Terminal reads pointer activity from an xterm-compatible terminal using
// SGR mouse reports. Coordinates are zero-based character cells. Wheel
// reports are delivered to subscribers from the reader goroutine.
type Terminal struct {
	in  io.Reader
	out io.Writer

	fd       int
	rawState *term.State

	mu     sync.Mutex
	pos    model.Point
	seen   bool
	left   bool
	right  bool
	subs   map[int]WheelFunc
	nextID int
	opened bool

	quit     chan struct{}
	quitOnce sync.Once
	stop     chan struct{}
	stopOnce sync.Once
}

// NewTerminal builds a terminal backend over in/out. When in is a TTY it is
// switched to raw mode on Open and restored on Close.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:   in,
		out:  out,
		fd:   -1,
		subs: make(map[int]WheelFunc),
		quit: make(chan struct{}),
		stop: make(chan struct{}),
	}
}

// Open enables mouse tracking and starts reading reports.
func (t *Terminal) Open() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.opened {
		return nil
	}

	if f, ok := t.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("%w: enter raw mode: %v", model.ErrBackendUnavailable, err)
		}
		t.fd = fd
		t.rawState = state
	}

	if _, err := io.WriteString(t.out, enableMouseTracking); err != nil {
		t.restoreLocked()
		return fmt.Errorf("%w: enable mouse tracking: %v", model.ErrBackendUnavailable, err)
	}

	t.opened = true
	go t.readInput()
	util.LogDebug("Terminal mouse tracking enabled", util.F("raw", t.rawState != nil))
	return nil
}

// Close disables tracking and restores the terminal. A read blocked on the
// input returns on the next byte and is then discarded.
func (t *Terminal) Close() error {
	t.stopOnce.Do(func() { close(t.stop) })

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.opened {
		return nil
	}
	t.opened = false

	_, writeErr := io.WriteString(t.out, disableMouseTracking)
	restoreErr := t.restoreLocked()
	if writeErr != nil {
		return writeErr
	}
	return restoreErr
}

func (t *Terminal) restoreLocked() error {
	if t.rawState == nil {
		return nil
	}
	err := term.Restore(t.fd, t.rawState)
	t.rawState = nil
	return err
}

// Quit is closed when the user presses q or Ctrl+C in the terminal.
func (t *Terminal) Quit() <-chan struct{} {
	return t.quit
}

func (t *Terminal) PointerPosition() (model.Point, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.seen {
		return model.Point{}, errNoPointerReport
	}
	return t.pos, nil
}

func (t *Terminal) ButtonPressed(button model.Button) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if button == model.ButtonLeft {
		return t.left
	}
	return t.right
}

func (t *Terminal) SubscribeWheel(fn WheelFunc) (Subscription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.opened {
		return nil, fmt.Errorf("%w: terminal backend not open", model.ErrBackendUnavailable)
	}
	id := t.nextID
	t.nextID++
	t.subs[id] = fn

	return subscriptionFunc(func() error {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
		return nil
	}), nil
}

func (t *Terminal) readInput() {
	reader := bufio.NewReader(t.in)

	for {
		select {
		case <-t.stop:
			return
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if err != io.EOF {
				util.LogDebugf("Terminal input read failed: %v", err)
			}
			return
		}

		switch b {
		case 0x1b:
			report, ok := readSGRReport(reader)
			if !ok {
				continue
			}
			t.handleReport(report)
		case 'q', 'Q', keyCtrlC:
			t.quitOnce.Do(func() { close(t.quit) })
		}
	}
}

type sgrReport struct {
	code    int
	x, y    int
	release bool
}

// readSGRReport consumes "[<b;x;y" followed by M (press) or m (release)
// after an ESC byte.
func readSGRReport(r *bufio.Reader) (sgrReport, bool) {
	if b, err := r.ReadByte(); err != nil || b != '[' {
		return sgrReport{}, false
	}
	if b, err := r.ReadByte(); err != nil || b != '<' {
		return sgrReport{}, false
	}

	var body strings.Builder
	for body.Len() < maxSGRLength {
		b, err := r.ReadByte()
		if err != nil {
			return sgrReport{}, false
		}
		if b == 'M' || b == 'm' {
			return parseSGRBody(body.String(), b == 'm')
		}
		body.WriteByte(b)
	}
	return sgrReport{}, false
}

func parseSGRBody(body string, release bool) (sgrReport, bool) {
	parts := strings.Split(body, ";")
	if len(parts) != 3 {
		return sgrReport{}, false
	}
	values := make([]int, 3)
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return sgrReport{}, false
		}
		values[i] = v
	}
	return sgrReport{code: values[0], x: values[1] - 1, y: values[2] - 1, release: release}, true
}

func (t *Terminal) handleReport(r sgrReport) {
	t.mu.Lock()
	t.pos = model.Point{X: r.x, Y: r.y}
	t.seen = true

	if r.code&sgrWheelFlag != 0 {
		delta := 0
		switch r.code & 3 {
		case 0:
			delta = constants.WheelDelta
		case 1:
			delta = -constants.WheelDelta
		}
		fns := make([]WheelFunc, 0, len(t.subs))
		for _, fn := range t.subs {
			fns = append(fns, fn)
		}
		t.mu.Unlock()

		if delta != 0 {
			for _, fn := range fns {
				fn(delta)
			}
		}
		return
	}

	if r.code&sgrMotionFlag == 0 {
		switch r.code & 3 {
		case 0:
			t.left = !r.release
		case 2:
			t.right = !r.release
		}
	}
	t.mu.Unlock()
}
