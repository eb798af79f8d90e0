package keymap

import (
	"fmt"
	"strings"
)

// Binding describes a single key binding for documentation.
type Binding struct {
	Command     Command
	Keys        []string
	Description string
}

// All contains all key bindings for help generation.
var All = []Binding{
	{Pause, []string{"space"}, "Pause/resume"},
	{Exit, []string{"q"}, "Quit"},
	{Forward, []string{"f", "right"}, "Jump to next position"},
	{Backward, []string{"b", "left"}, "Jump to previous position"},
	{Next, []string{"n", "up"}, "Next file"},
	{Previous, []string{"p", "down"}, "Restart file"},
}

// Help renders the binding table as aligned text lines.
func Help() string {
	var sb strings.Builder
	for _, b := range All {
		fmt.Fprintf(&sb, "  %-12s %s\n", strings.Join(b.Keys, ", "), b.Description)
	}
	return sb.String()
}
