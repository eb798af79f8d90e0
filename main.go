package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/llehouerou/modplay/internal/app"
	"github.com/llehouerou/modplay/internal/config"
	"github.com/llehouerou/modplay/internal/errmsg"
	"github.com/llehouerou/modplay/internal/keymap"
	"github.com/llehouerou/modplay/internal/player"
	"github.com/llehouerou/modplay/internal/session"
	"github.com/llehouerou/modplay/internal/stderr"
)

func main() {
	code := 0
	if err := newRootCmd(&code).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(session.ExitError)
	}
	os.Exit(code)
}

type cliFlags struct {
	configPath string
	values     config.Config
}

func newRootCmd(code *int) *cobra.Command {
	var flags cliFlags

	cmd := &cobra.Command{
		Use:           "modplay [flags] FILE|DIR...",
		Short:         "Play music files from the terminal",
		Long:          "Play music files from the terminal.\n\nKeys:\n" + keymap.Help(),
		Version:       appVersion(),
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpLoadConfig, err))
			}
			applyFlags(cmd.Flags(), cfg, &flags.values)

			level, _ := cfg.SlogLevel()
			logger := app.SetupLogging(stderr.Writer(), level)
			if err := stderr.Start(logger); err != nil {
				logger.Debug("stderr capture unavailable", "error", err)
			}
			defer stderr.Stop()

			*code = app.Run(cmd.Context(), app.Options{Config: cfg, Args: args})
			return nil
		},
	}

	bindFlags(cmd.Flags(), &flags)
	return cmd
}

func bindFlags(f *pflag.FlagSet, flags *cliFlags) {
	v := &flags.values
	f.StringVar(&flags.configPath, "config", "", "read settings from this TOML file")
	f.IntVarP(&v.Rate, "rate", "r", config.DefaultRate, "output sample rate in Hz")
	f.StringVarP(&v.Player, "player", "p", "", "force a decoder ("+strings.Join(player.Players(), ", ")+")")
	f.StringVarP(&v.Interpolation, "interpolation", "i", config.DefaultInterpolation, "resampler interpolation ("+strings.Join(player.Interpolations(), ", ")+")")
	f.BoolVarP(&v.Shuffle, "shuffle", "z", false, "shuffle the play list")
	f.StringVarP(&v.Mute, "mute", "M", "", "mute channels, e.g. 0,2-4")
	f.StringVarP(&v.Solo, "solo", "S", "", "play only these channels")
	f.StringVar(&v.PauseMode, "pause-mode", config.DefaultPauseMode, "block or silence")
	f.IntVar(&v.BufferMS, "buffer", config.DefaultBufferMS, "audio buffer length in ms")
	f.StringVar(&v.LogLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")
	f.BoolVar(&v.ForceInput, "force-input", false, "read keys even when stdin is not a terminal")
}

// applyFlags copies explicitly set flags over the file configuration.
func applyFlags(fs *pflag.FlagSet, cfg, flags *config.Config) {
	set := map[string]func(){
		"rate":          func() { cfg.Rate = flags.Rate },
		"player":        func() { cfg.Player = flags.Player },
		"interpolation": func() { cfg.Interpolation = flags.Interpolation },
		"shuffle":       func() { cfg.Shuffle = flags.Shuffle },
		"mute":          func() { cfg.Mute = flags.Mute },
		"solo":          func() { cfg.Solo = flags.Solo },
		"pause-mode":    func() { cfg.PauseMode = flags.PauseMode },
		"buffer":        func() { cfg.BufferMS = flags.BufferMS },
		"log-level":     func() { cfg.LogLevel = flags.LogLevel },
		"force-input":   func() { cfg.ForceInput = flags.ForceInput },
	}
	fs.Visit(func(f *pflag.Flag) {
		if apply, ok := set[f.Name]; ok {
			apply()
		}
	})
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-(no build info)"
	}
	if bi.Main.Version == "" {
		return "unknown-(no version)"
	}
	return bi.Main.Version
}
