// Package terminal puts the controlling terminal into single-keystroke mode for
// the duration of a playback run and reads raw keystrokes from it.
package terminal

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

// ErrUnsupported is returned when the platform has no terminal mode control.
var ErrUnsupported = errors.New("terminal mode control not supported on this platform")

// Guard owns the terminal input mode captured at startup.
//
// If the input is not an interactive terminal the guard is inactive and all
// of its methods do nothing. Restore runs at most once, no matter how many
// exit paths call it.
type Guard struct {
	fd     int
	active bool
	saved  *savedState

	once       sync.Once
	restoreErr error
}

// Acquire snapshots the current mode of f. The returned guard is never nil;
// an error means f is a terminal whose mode could not be read, and the guard
// is inactive.
func Acquire(f *os.File) (*Guard, error) {
	g := &Guard{fd: int(f.Fd())} //nolint:gosec // file descriptors fit in int
	if !term.IsTerminal(g.fd) {
		return g, nil
	}

	saved, err := getState(g.fd)
	if err != nil {
		return g, fmt.Errorf("read terminal attributes: %w", err)
	}
	g.saved = saved
	g.active = true
	return g, nil
}

// Active reports whether the guard controls an interactive terminal.
func (g *Guard) Active() bool {
	return g.active
}

// EnterRaw disables echo and line buffering so that each keystroke is
// delivered as soon as it is typed.
func (g *Guard) EnterRaw() error {
	if !g.active {
		return nil
	}
	if err := makeRaw(g.fd, g.saved); err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	return nil
}

// Restore reapplies the mode captured by Acquire. Only the first call has an
// effect; later calls return the first call's result.
func (g *Guard) Restore() error {
	if !g.active {
		return nil
	}
	g.once.Do(func() {
		if err := setState(g.fd, g.saved); err != nil {
			g.restoreErr = fmt.Errorf("restore terminal attributes: %w", err)
		}
	})
	return g.restoreErr
}
