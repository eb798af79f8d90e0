package control

import (
	"log/slog"

	"github.com/llehouerou/modplay/internal/keymap"
)

// Pump reads keys from r until the input ends or an Exit command is produced,
// sending each decoded command to ch. The end of the input is reported as
// Exit. ch is closed on return.
//
// Pump is meant to run on its own goroutine; it blocks in r.ReadKey.
func Pump(r keymap.KeyReader, ch *Channel) {
	defer ch.Close()

	for {
		c, ok := r.ReadKey()
		if !ok {
			slog.Debug("input closed")
			ch.Send(keymap.Exit)
			return
		}

		cmd, ok := keymap.Translate(c, r)
		if !ok {
			continue
		}
		slog.Debug("key command", "key", c, "command", cmd)
		ch.Send(cmd)
		if cmd == keymap.Exit {
			return
		}
	}
}
