package session

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/modplay/internal/engine"
)

var pauseStyle = lipgloss.NewStyle().Reverse(true)

// statusMemo remembers what the last status line showed.
type statusMemo struct {
	valid  bool
	row    int
	paused bool
}

// changed reports whether row or paused differ from the last status line and
// records them.
func (m *statusMemo) changed(row int, paused bool) bool {
	if m.valid && m.row == row && m.paused == paused {
		return false
	}
	m.valid = true
	m.row = row
	m.paused = paused
	return true
}

// writeStatus prints the one-line playback status, ending with a carriage
// return so the next line overwrites it.
func writeStatus(w io.Writer, fi engine.FrameInfo, mi engine.ModuleInfo, paused bool) {
	t := int(fi.Elapsed.Seconds())
	indicator := "       "
	if paused {
		indicator = pauseStyle.Render("[PAUSE]")
	}
	fmt.Fprintf(w, "pos:%02X/%02X pat:%02X/%02X row:%02X/%02X speed:%02X tempo:%02X  %d:%02d:%02d  %s \r",
		fi.Position, max(mi.Length-1, 0),
		fi.Pattern, max(mi.Patterns-1, 0),
		fi.Row, fi.NumRows,
		fi.Speed, fi.Tempo,
		t/3600, (t/60)%60, t%60,
		indicator)
}
