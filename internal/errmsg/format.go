// Package errmsg provides consistent error formatting for operator-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Startup
	OpLoadConfig Op = "load configuration"
	OpParseMute  Op = "parse mute list"
	OpParseSolo  Op = "parse solo list"

	// Playlist operations
	OpLoadModule       Op = "load module"
	OpReadModule       Op = "read module"
	OpSetInterpolation Op = "set interpolation"
	OpQueryPlayer      Op = "query player"

	// Terminal operations
	OpSetTerminal     Op = "set terminal mode"
	OpRestoreTerminal Op = "restore terminal mode"

	// Audio output
	OpOpenAudio Op = "open audio device"
	OpRender    Op = "render audio"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
