// Package keymap defines the playback command vocabulary and the decoding of
// raw keyboard bytes into commands.
package keymap

// Command is a playback control request produced from a keypress.
type Command int

const (
	Pause Command = iota
	Exit
	Forward
	Backward
	Next
	Previous
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case Pause:
		return "Pause"
	case Exit:
		return "Exit"
	case Forward:
		return "Forward"
	case Backward:
		return "Backward"
	case Next:
		return "Next"
	case Previous:
		return "Previous"
	default:
		return "Unknown"
	}
}

// Unpauses reports whether applying the command clears the pause flag.
// Every command except Pause and Exit resumes playback so its effect is heard.
func (c Command) Unpauses() bool {
	switch c {
	case Forward, Backward, Next, Previous:
		return true
	default:
		return false
	}
}
