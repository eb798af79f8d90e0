// Package session implements the render-side playback state machine: it
// applies key commands to the current track and feeds the audio output.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/llehouerou/modplay/internal/engine"
	"github.com/llehouerou/modplay/internal/keymap"
	"github.com/llehouerou/modplay/internal/playlist"
)

// Commands is the receiving side of the command channel.
type Commands interface {
	TryReceive() (keymap.Command, bool)
	Receive(ctx context.Context) (keymap.Command, bool)
}

// Advancer loads the next playable track. It returns playlist.ErrExhausted
// once nothing is left.
type Advancer interface {
	LoadNext() (engine.Handle, error)
}

// Options configures a Session.
type Options struct {
	PauseMode PauseMode
	// Out receives the status line. Defaults to os.Stdout.
	Out io.Writer
}

// Session owns the current engine handle and applies commands to it from the
// audio goroutine. Fill and Monitor must be called from a single goroutine;
// Done, ExitCode and Err are safe from any goroutine.
type Session struct {
	ctx      context.Context
	commands Commands
	next     Advancer
	opts     Options

	handle  engine.Handle
	info    engine.ModuleInfo
	frame   engine.FrameInfo
	paused  bool
	advance bool
	memo    statusMemo

	done     chan struct{}
	doneOnce sync.Once
	exiting  atomic.Bool
	code     atomic.Int32
	errMu    sync.Mutex
	err      error
}

// New creates a session playing h. ctx cancellation releases a callback that
// is blocked while paused.
func New(ctx context.Context, h engine.Handle, commands Commands, next Advancer, opts Options) *Session {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	s := &Session{
		ctx:      ctx,
		commands: commands,
		next:     next,
		opts:     opts,
		done:     make(chan struct{}),
	}
	s.setHandle(h)
	return s
}

func (s *Session) setHandle(h engine.Handle) {
	s.handle = h
	s.info = h.ModuleInfo()
	s.frame = engine.FrameInfo{}
	s.advance = false
	s.memo = statusMemo{}
}

// Fill runs one render-callback step and writes interleaved stereo samples to
// buf. It returns false once the session has finished; buf is then silent.
func (s *Session) Fill(buf []int16) bool {
	if s.exiting.Load() {
		clear(buf)
		return false
	}

	s.handle.FrameInfo(&s.frame)

	if s.memo.changed(s.frame.Row, s.paused) {
		writeStatus(s.opts.Out, s.frame, s.info, s.paused)
	}

	if s.paused && s.opts.PauseMode == PauseBlock {
		s.waitUnpause()
	}

	if !s.exiting.Load() {
		if cmd, ok := s.commands.TryReceive(); ok {
			s.apply(cmd)
		}
	}
	if s.exiting.Load() {
		clear(buf)
		return false
	}

	if s.frame.LoopCount > 0 {
		s.advance = true
	}

	if s.paused && s.opts.PauseMode == PauseSilence {
		clear(buf)
		return true
	}
	s.handle.Render(buf)
	return true
}

// waitUnpause blocks on the command channel until a command clears the pause
// or ends the session.
func (s *Session) waitUnpause() {
	for s.paused && !s.exiting.Load() {
		cmd, ok := s.commands.Receive(s.ctx)
		if !ok {
			if s.ctx.Err() != nil {
				slog.Debug("render wait cancelled", "error", s.ctx.Err())
			} else {
				slog.Debug("command channel closed while paused")
			}
			s.finish(ExitOK)
			return
		}
		s.apply(cmd)
	}
}

func (s *Session) apply(cmd keymap.Command) {
	slog.Debug("command", "cmd", cmd, "state", s.State())

	switch cmd {
	case keymap.Pause:
		s.paused = !s.paused
		return
	case keymap.Exit:
		s.finish(ExitOK)
		return
	case keymap.Forward:
		s.seek(s.frame.Position + 1)
	case keymap.Backward:
		s.seek(max(s.frame.Position-1, 0))
	case keymap.Next:
		s.advance = true
	case keymap.Previous:
		s.seek(0)
	}

	if cmd.Unpauses() {
		s.paused = false
	}
}

func (s *Session) seek(position int) {
	s.handle.Seek(position)
	s.handle.FrameInfo(&s.frame)
}

// Monitor replaces the track once the current one has looped or Next was
// requested. The session finishes when the playlist is exhausted.
func (s *Session) Monitor() {
	if !s.advance || s.exiting.Load() {
		return
	}

	fmt.Fprintln(s.opts.Out)
	if err := s.handle.Close(); err != nil {
		slog.Warn("closing module", "error", err)
	}

	h, err := s.next.LoadNext()
	if errors.Is(err, playlist.ErrExhausted) {
		s.finish(ExitOK)
		return
	}
	if err != nil {
		s.Fail(err, ExitError)
		return
	}
	s.setHandle(h)
	s.paused = false
}

// State reports the render-side state. Call it from the audio goroutine.
func (s *Session) State() State {
	switch {
	case s.exiting.Load():
		return Exiting
	case s.advance:
		return Advancing
	case s.paused:
		return Paused
	default:
		return Running
	}
}

// Paused reports whether playback is paused. Call it from the audio goroutine.
func (s *Session) Paused() bool {
	return s.paused
}

// Fail ends the session with an error and exit code.
func (s *Session) Fail(err error, code int) {
	s.errMu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.errMu.Unlock()
	s.finish(code)
}

func (s *Session) finish(code int) {
	s.doneOnce.Do(func() {
		s.code.Store(int32(code)) //nolint:gosec // exit codes are small
		s.exiting.Store(true)
		close(s.done)
	})
}

// Done is closed when the session has finished.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// ExitCode returns the process exit code once Done is closed.
func (s *Session) ExitCode() int {
	return int(s.code.Load())
}

// Err returns the error passed to Fail, if any.
func (s *Session) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}
