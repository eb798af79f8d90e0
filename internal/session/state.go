package session

import (
	"fmt"
	"strings"
)

// State is the render-side playback state.
type State int

const (
	Running State = iota
	Paused
	Advancing
	Exiting
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Advancing:
		return "advancing"
	case Exiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// PauseMode selects what the render callback does while paused.
type PauseMode int

const (
	// PauseBlock stalls the callback until a command arrives.
	PauseBlock PauseMode = iota
	// PauseSilence keeps the callback running and renders silence.
	PauseSilence
)

func (m PauseMode) String() string {
	if m == PauseSilence {
		return "silence"
	}
	return "block"
}

// ParsePauseMode parses "block" or "silence".
func ParsePauseMode(s string) (PauseMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "block":
		return PauseBlock, nil
	case "silence":
		return PauseSilence, nil
	default:
		return PauseBlock, fmt.Errorf("invalid pause mode %q (want block or silence)", s)
	}
}

// Process exit codes reported by ExitCode.
const (
	ExitOK    = 0
	ExitError = 1
	ExitPanic = 2
)
