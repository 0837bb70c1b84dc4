//go:build !linux

package backend

import (
	"fmt"

	"github.com/penwyp/go-mouse-recorder/internal/core/model"
)

// Uinput is only available on linux.
type Uinput struct{}

// OpenUinput always fails outside linux.
func OpenUinput(width, height int) (*Uinput, error) {
	return nil, fmt.Errorf("%w: uinput requires linux", model.ErrBackendUnavailable)
}

func (u *Uinput) MovePointer(x, y int) error { return errNoUinput() }

func (u *Uinput) InjectButton(model.Button, model.Transition) error { return errNoUinput() }

func (u *Uinput) InjectWheel(int) error { return errNoUinput() }

func (u *Uinput) Close() error { return nil }

func errNoUinput() error {
	return fmt.Errorf("%w: uinput requires linux", model.ErrBackendUnavailable)
}
