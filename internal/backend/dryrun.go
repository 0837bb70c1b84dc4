package backend

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/penwyp/go-mouse-recorder/internal/core/model"
)

// DryRun is an Injector that prints every operation instead of performing it.
type DryRun struct {
	mu    sync.Mutex
	out   io.Writer
	start time.Time
	now   func() time.Time
}

// NewDryRun writes operations to out, stamped with time since creation.
func NewDryRun(out io.Writer) *DryRun {
	return &DryRun{out: out, start: time.Now(), now: time.Now}
}

func (d *DryRun) MovePointer(x, y int) error {
	return d.printf("move %d,%d", x, y)
}

func (d *DryRun) InjectButton(button model.Button, transition model.Transition) error {
	return d.printf("button %s %s", button, transition)
}

func (d *DryRun) InjectWheel(direction int) error {
	return d.printf("wheel %+d", direction)
}

func (d *DryRun) printf(format string, args ...interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	elapsed := d.now().Sub(d.start)
	if _, err := fmt.Fprintf(d.out, "[%8.3fs] "+format+"\n", append([]interface{}{elapsed.Seconds()}, args...)...); err != nil {
		return fmt.Errorf("%w: dry-run output: %v", model.ErrBackendUnavailable, err)
	}
	return nil
}
