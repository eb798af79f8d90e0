package playlist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/modplay/internal/engine"
)

var labelStyle = lipgloss.NewStyle().Bold(true)

// writeBanner prints the module description shown when a track starts.
func writeBanner(w io.Writer, mi engine.ModuleInfo, player engine.PlayerInfo, size int64) {
	field := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-9s:", label)), value)
	}

	field("Format", mi.Format)
	if mi.Creator != "" {
		field("Creator", mi.Creator)
	}
	field("Channels", fmt.Sprintf("%d", mi.Channels))
	field("Title", mi.Title)
	field("Player", fmt.Sprintf("%s (%s)", player.Name, player.ID))
	field("Duration", formatDuration(mi.Duration))
	field("Size", humanize.Bytes(uint64(max(size, 0))))
	fmt.Fprintln(w)
}

func formatDuration(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%dmin%02ds", total/60, total%60)
}
