// Command modinfo prints the banner of every playable file without opening
// an audio device.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llehouerou/modplay/internal/config"
	"github.com/llehouerou/modplay/internal/errmsg"
	"github.com/llehouerou/modplay/internal/player"
	"github.com/llehouerou/modplay/internal/playlist"
)

func main() {
	var (
		rate       int
		playerHint string
	)

	cmd := &cobra.Command{
		Use:           "modinfo [flags] FILE|DIR...",
		Short:         "Describe music files",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := probe(os.Stdout, args, rate, playerHint)
			if err != nil {
				return err
			}
			if n == 0 {
				return errors.New("no playable files")
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&rate, "rate", "r", config.DefaultRate, "sample rate used for decoding")
	cmd.Flags().StringVarP(&playerHint, "player", "p", "", "force a decoder ("+strings.Join(player.Players(), ", ")+")")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// probe loads every entry in args, printing a banner for each one that loads,
// and returns how many did.
func probe(w io.Writer, args []string, rate int, playerHint string) (int, error) {
	loader := playlist.NewLoader(playlist.NewCursor(playlist.Expand(args)), player.New(), playlist.Options{
		SampleRate: rate,
		PlayerHint: playerHint,
		Out:        w,
	})

	loaded := 0
	for {
		h, err := loader.LoadNext()
		if errors.Is(err, playlist.ErrExhausted) {
			return loaded, nil
		}
		if err != nil {
			return loaded, errors.New(errmsg.Format(errmsg.OpLoadModule, err))
		}
		loaded++
		_ = h.Close()
	}
}
