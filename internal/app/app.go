// Package app wires the player together and owns the single exit path: every
// way a run can end returns through Run, which restores the terminal before
// reporting the exit code.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/llehouerou/modplay/internal/config"
	"github.com/llehouerou/modplay/internal/control"
	"github.com/llehouerou/modplay/internal/engine"
	"github.com/llehouerou/modplay/internal/errmsg"
	"github.com/llehouerou/modplay/internal/mask"
	"github.com/llehouerou/modplay/internal/output"
	"github.com/llehouerou/modplay/internal/player"
	"github.com/llehouerou/modplay/internal/playlist"
	"github.com/llehouerou/modplay/internal/session"
	"github.com/llehouerou/modplay/internal/terminal"
)

// ExitInterrupted is returned when SIGINT or SIGTERM ends playback.
const ExitInterrupted = 130

// Device is an audio output that pulls samples from a session.
type Device interface {
	Play(f output.Filler)
	Close()
}

// OpenFunc opens an audio device.
type OpenFunc func(sampleRate int, buffer time.Duration) (Device, error)

// Options holds the inputs of one run. Zero fields get production defaults.
type Options struct {
	Config *config.Config
	Args   []string

	Stdin  *os.File  // key input; defaults to os.Stdin
	Stdout io.Writer // banner and status line; defaults to os.Stdout
	Stderr io.Writer // fatal messages; defaults to os.Stderr

	Engine engine.Loader
	Open   OpenFunc
	Rand   *rand.Rand // shuffle source
}

func (o *Options) defaults() {
	if o.Config == nil {
		o.Config = config.Default()
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Engine == nil {
		o.Engine = player.New()
	}
	if o.Open == nil {
		o.Open = openSpeaker
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // playlist order
	}
}

func openSpeaker(sampleRate int, buffer time.Duration) (Device, error) {
	return output.Open(sampleRate, buffer)
}

// Run plays the files named by opts.Args and returns the process exit code.
func Run(ctx context.Context, opts Options) int {
	opts.defaults()
	cfg := opts.Config

	fail := func(msg string) int {
		fmt.Fprintln(opts.Stderr, msg)
		return session.ExitError
	}

	if err := cfg.Validate(); err != nil {
		return fail(errmsg.Format(errmsg.OpLoadConfig, err))
	}
	pauseMode, err := session.ParsePauseMode(cfg.PauseMode)
	if err != nil {
		return fail(errmsg.Format(errmsg.OpLoadConfig, err))
	}
	masks, msg := parseMasks(cfg)
	if msg != "" {
		return fail(msg)
	}

	cursor := playlist.NewCursor(playlist.Expand(opts.Args))
	if cursor.Len() == 0 {
		return fail("No modules to play")
	}
	if cfg.Shuffle {
		cursor.Shuffle(opts.Rand)
	}
	slog.Debug("playlist", "entries", cursor.Paths(), "shuffled", cfg.Shuffle)

	loader := playlist.NewLoader(cursor, opts.Engine, playlist.Options{
		SampleRate:    cfg.Rate,
		PlayerHint:    cfg.Player,
		Interpolation: cfg.Interpolation,
		Out:           opts.Stdout,
	})
	h, err := loader.LoadNext()
	if errors.Is(err, playlist.ErrExhausted) {
		return fail("No playable modules")
	}
	if err != nil {
		return fail(errmsg.Format(errmsg.OpLoadModule, err))
	}

	slog.Debug("first module loaded", "path", loader.Path())

	channels := h.ModuleInfo().Channels
	for _, m := range masks {
		m.Apply(h, channels)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	guard, raw := acquireTerminal(opts.Stdin)
	defer restoreTerminal(guard)

	commands := control.NewChannel()
	if raw || cfg.ForceInput {
		go control.Pump(terminal.NewKeyReader(opts.Stdin), commands)
	}

	sess := session.New(ctx, h, commands, loader, session.Options{
		PauseMode: pauseMode,
		Out:       opts.Stdout,
	})

	dev, err := opts.Open(cfg.Rate, cfg.Buffer())
	if err != nil {
		_ = h.Close()
		return fail(errmsg.Format(errmsg.OpOpenAudio, err))
	}
	dev.Play(sess)

	select {
	case <-sess.Done():
	case <-ctx.Done():
	}
	dev.Close()
	fmt.Fprintln(opts.Stdout)

	if ctx.Err() != nil {
		slog.Info("interrupted")
		return ExitInterrupted
	}
	if err := sess.Err(); err != nil {
		fmt.Fprintln(opts.Stderr, err)
	}
	return sess.ExitCode()
}

func parseMasks(cfg *config.Config) ([]mask.Mask, string) {
	var masks []mask.Mask
	if cfg.Mute != "" {
		m, err := mask.Parse(cfg.Mute, true)
		if err != nil {
			return nil, errmsg.FormatWith(errmsg.OpParseMute, cfg.Mute, err)
		}
		masks = append(masks, m)
	}
	if cfg.Solo != "" {
		m, err := mask.Parse(cfg.Solo, false)
		if err != nil {
			return nil, errmsg.FormatWith(errmsg.OpParseSolo, cfg.Solo, err)
		}
		masks = append(masks, m)
	}
	return masks, ""
}

// acquireTerminal puts stdin into single-keystroke mode and reports whether
// keys can be read from it. Failures are logged and leave playback running
// without key control.
func acquireTerminal(f *os.File) (*terminal.Guard, bool) {
	guard, err := terminal.Acquire(f)
	if err != nil {
		slog.Warn(errmsg.Format(errmsg.OpSetTerminal, err))
		return guard, false
	}
	return guard, enterRaw(guard)
}

type rawModer interface {
	Active() bool
	EnterRaw() error
}

func enterRaw(g rawModer) bool {
	if !g.Active() {
		return false
	}
	if err := g.EnterRaw(); err != nil {
		slog.Warn(errmsg.Format(errmsg.OpSetTerminal, err))
		return false
	}
	return true
}

func restoreTerminal(guard *terminal.Guard) {
	if err := guard.Restore(); err != nil {
		slog.Warn(errmsg.Format(errmsg.OpRestoreTerminal, err))
	}
}
