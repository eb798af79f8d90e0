package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/modplay/internal/control"
	"github.com/llehouerou/modplay/internal/engine"
	"github.com/llehouerou/modplay/internal/keymap"
	"github.com/llehouerou/modplay/internal/playlist"
)

// queueAdvancer hands out prepared handles, then reports exhaustion.
type queueAdvancer struct {
	handles []engine.Handle
	err     error
	calls   int
}

func (q *queueAdvancer) LoadNext() (engine.Handle, error) {
	q.calls++
	if q.err != nil {
		return nil, q.err
	}
	if len(q.handles) == 0 {
		return nil, playlist.ErrExhausted
	}
	h := q.handles[0]
	q.handles = q.handles[1:]
	return h, nil
}

type fixture struct {
	s    *Session
	ch   *control.Channel
	mock *engine.Mock
	next *queueAdvancer
	out  *bytes.Buffer
}

func newFixture(t *testing.T, mode PauseMode) *fixture {
	t.Helper()
	f := &fixture{
		ch:   control.NewChannel(),
		mock: engine.NewMock(4, 8),
		next: &queueAdvancer{},
		out:  &bytes.Buffer{},
	}
	f.s = New(context.Background(), f.mock, f.ch, f.next, Options{PauseMode: mode, Out: f.out})
	return f
}

// fillAsync runs Fill on another goroutine and fails the test if it does not
// return in time.
func fillAsync(t *testing.T, s *Session, buf []int16) bool {
	t.Helper()
	result := make(chan bool, 1)
	go func() { result <- s.Fill(buf) }()
	select {
	case ok := <-result:
		return ok
	case <-time.After(2 * time.Second):
		t.Fatal("Fill did not return")
		return false
	}
}

func TestFill_RendersOncePerCall(t *testing.T) {
	f := newFixture(t, PauseBlock)
	buf := make([]int16, 64)

	assert.True(t, f.s.Fill(buf))
	assert.True(t, f.s.Fill(buf))

	assert.Equal(t, 2, f.mock.Renders())
	assert.Equal(t, Running, f.s.State())
}

func TestApply_PauseTwiceIsIdempotent(t *testing.T) {
	f := newFixture(t, PauseBlock)

	f.s.apply(keymap.Pause)
	assert.True(t, f.s.Paused())
	f.s.apply(keymap.Pause)

	assert.False(t, f.s.Paused())
	assert.Empty(t, f.mock.Seeks())
	assert.Equal(t, Running, f.s.State())
}

func TestFill_PauseThenExitTerminates(t *testing.T) {
	f := newFixture(t, PauseBlock)
	f.ch.Send(keymap.Pause)
	f.ch.Send(keymap.Exit)
	buf := make([]int16, 64)

	assert.True(t, f.s.Fill(buf))
	assert.True(t, f.s.Paused())

	assert.False(t, fillAsync(t, f.s, buf))

	select {
	case <-f.s.Done():
	default:
		t.Fatal("session not done")
	}
	assert.Equal(t, ExitOK, f.s.ExitCode())
	assert.Equal(t, Exiting, f.s.State())
	assert.Equal(t, 1, f.mock.Renders())
}

func TestFill_ExitSkipsRender(t *testing.T) {
	f := newFixture(t, PauseBlock)
	f.ch.Send(keymap.Exit)

	buf := []int16{1, 2, 3, 4}
	assert.False(t, f.s.Fill(buf))

	assert.Equal(t, 0, f.mock.Renders())
	assert.Equal(t, []int16{0, 0, 0, 0}, buf)

	// Later calls stay silent.
	buf[0] = 9
	assert.False(t, f.s.Fill(buf))
	assert.Zero(t, buf[0])
}

func TestFill_BackwardClampsAtZero(t *testing.T) {
	f := newFixture(t, PauseBlock)
	f.ch.Send(keymap.Backward)

	f.s.Fill(make([]int16, 16))

	assert.Equal(t, []int{0}, f.mock.Seeks())
	var fi engine.FrameInfo
	f.mock.FrameInfo(&fi)
	assert.Equal(t, 0, fi.Position)
}

func TestFill_ForwardAndBackwardMoveOnePosition(t *testing.T) {
	f := newFixture(t, PauseBlock)
	f.mock.SetFrame(engine.FrameInfo{Position: 3, Row: 10, NumRows: 64})

	f.ch.Send(keymap.Forward)
	f.s.Fill(make([]int16, 16))
	f.ch.Send(keymap.Backward)
	f.s.Fill(make([]int16, 16))

	assert.Equal(t, []int{4, 3}, f.mock.Seeks())
}

func TestFill_SeekWhilePausedUnpauses(t *testing.T) {
	f := newFixture(t, PauseBlock)
	buf := make([]int16, 16)
	f.ch.Send(keymap.Pause)
	f.s.Fill(buf)
	require.True(t, f.s.Paused())

	f.ch.Send(keymap.Forward)
	assert.True(t, fillAsync(t, f.s, buf))

	assert.False(t, f.s.Paused())
	assert.Equal(t, []int{1}, f.mock.Seeks())
	assert.Equal(t, 2, f.mock.Renders())
}

func TestFill_PreviousRestartsAndUnpauses(t *testing.T) {
	f := newFixture(t, PauseSilence)
	f.mock.SetFrame(engine.FrameInfo{Position: 5, NumRows: 64})
	f.s.apply(keymap.Pause)

	f.ch.Send(keymap.Previous)
	f.s.Fill(make([]int16, 16))

	assert.False(t, f.s.Paused())
	assert.Equal(t, []int{0}, f.mock.Seeks())
}

func TestFill_NextRequestsAdvance(t *testing.T) {
	f := newFixture(t, PauseBlock)
	second := engine.NewMock(4, 8)
	f.next.handles = []engine.Handle{second}

	f.ch.Send(keymap.Next)
	f.s.Fill(make([]int16, 16))
	assert.Equal(t, Advancing, f.s.State())

	f.s.Monitor()

	assert.True(t, f.mock.Closed())
	assert.Equal(t, Running, f.s.State())
	assert.Equal(t, 1, f.next.calls)

	f.s.Fill(make([]int16, 16))
	assert.Equal(t, 1, second.Renders())
	assert.Equal(t, 1, f.mock.Renders())
}

func TestFill_LoopRequestsAdvance(t *testing.T) {
	f := newFixture(t, PauseBlock)
	f.mock.SetFrame(engine.FrameInfo{NumRows: 64, LoopCount: 1})

	assert.True(t, f.s.Fill(make([]int16, 16)))

	assert.Equal(t, Advancing, f.s.State())
	assert.Equal(t, 1, f.mock.Renders())
}

func TestMonitor_NoAdvanceIsNoop(t *testing.T) {
	f := newFixture(t, PauseBlock)
	f.s.Fill(make([]int16, 16))

	f.s.Monitor()

	assert.Equal(t, 0, f.next.calls)
	assert.False(t, f.mock.Closed())
}

func TestMonitor_ExhaustionFinishes(t *testing.T) {
	f := newFixture(t, PauseBlock)
	f.mock.SetFrame(engine.FrameInfo{NumRows: 64, LoopCount: 1})
	f.s.Fill(make([]int16, 16))

	f.s.Monitor()

	select {
	case <-f.s.Done():
	default:
		t.Fatal("session not done")
	}
	assert.Equal(t, ExitOK, f.s.ExitCode())
	assert.NoError(t, f.s.Err())
	assert.True(t, strings.HasSuffix(f.out.String(), "\r\n"))
}

func TestMonitor_LoadErrorFails(t *testing.T) {
	f := newFixture(t, PauseBlock)
	f.next.err = errors.New("bad interpolation")
	f.ch.Send(keymap.Next)
	f.s.Fill(make([]int16, 16))

	f.s.Monitor()

	<-f.s.Done()
	assert.Equal(t, ExitError, f.s.ExitCode())
	assert.EqualError(t, f.s.Err(), "bad interpolation")
}

func TestFill_ClosedChannelWhilePausedExits(t *testing.T) {
	f := newFixture(t, PauseBlock)
	buf := make([]int16, 16)
	f.ch.Send(keymap.Pause)
	f.s.Fill(buf)
	f.ch.Close()

	assert.False(t, fillAsync(t, f.s, buf))
	assert.Equal(t, ExitOK, f.s.ExitCode())
}

func TestFill_ClosedChannelWhileRunningIsNoCommand(t *testing.T) {
	f := newFixture(t, PauseBlock)
	f.ch.Close()

	assert.True(t, f.s.Fill(make([]int16, 16)))
	assert.Equal(t, Running, f.s.State())
}

func TestFill_CancelReleasesPausedWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := control.NewChannel()
	mock := engine.NewMock(4, 8)
	s := New(ctx, mock, ch, &queueAdvancer{}, Options{Out: &bytes.Buffer{}})
	buf := make([]int16, 16)
	ch.Send(keymap.Pause)
	s.Fill(buf)

	result := make(chan bool, 1)
	go func() { result <- s.Fill(buf) }()
	cancel()

	select {
	case ok := <-result:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Fill did not return after cancel")
	}
}

func TestFill_SilenceModeDoesNotBlock(t *testing.T) {
	f := newFixture(t, PauseSilence)
	f.mock.OnRender(func(buf []int16) {
		for i := range buf {
			buf[i] = 7
		}
	})
	f.ch.Send(keymap.Pause)

	buf := make([]int16, 8)
	assert.True(t, f.s.Fill(buf))
	assert.Equal(t, make([]int16, 8), buf)
	assert.Equal(t, Paused, f.s.State())

	assert.True(t, fillAsync(t, f.s, buf))
	assert.Equal(t, 0, f.mock.Renders())

	f.ch.Send(keymap.Pause)
	assert.True(t, f.s.Fill(buf))
	assert.Equal(t, 1, f.mock.Renders())
	assert.Equal(t, int16(7), buf[0])
}

func TestFill_StatusWrittenOnChange(t *testing.T) {
	f := newFixture(t, PauseSilence)
	buf := make([]int16, 8)

	f.s.Fill(buf)
	f.s.Fill(buf)
	assert.Equal(t, 1, strings.Count(f.out.String(), "\r"))

	f.mock.SetFrame(engine.FrameInfo{Row: 1, NumRows: 64})
	f.s.Fill(buf)
	assert.Equal(t, 2, strings.Count(f.out.String(), "\r"))

	f.ch.Send(keymap.Pause)
	f.s.Fill(buf) // pause applied after the status line
	f.s.Fill(buf)
	assert.Equal(t, 3, strings.Count(f.out.String(), "\r"))
	assert.Contains(t, f.out.String(), "[PAUSE]")
}

func TestFail_KeepsFirstError(t *testing.T) {
	f := newFixture(t, PauseBlock)

	f.s.Fail(errors.New("render panic"), ExitPanic)
	f.s.Fail(errors.New("second"), ExitError)

	assert.Equal(t, ExitPanic, f.s.ExitCode())
	assert.EqualError(t, f.s.Err(), "render panic")
	assert.False(t, f.s.Fill(make([]int16, 4)))
}
