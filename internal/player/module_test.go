package player

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/modplay/internal/engine"
)

// stuckSource is a silent source whose Seek always fails.
type stuckSource struct {
	length int
	pos    int
}

func (s *stuckSource) Stream(samples [][2]float64) (int, bool) {
	n := min(len(samples), s.length-s.pos)
	clear(samples[:n])
	s.pos += n
	return n, n > 0
}

func (s *stuckSource) Err() error     { return nil }
func (s *stuckSource) Len() int       { return s.length }
func (s *stuckSource) Position() int  { return s.pos }
func (s *stuckSource) Seek(int) error { return errors.New("not seekable") }
func (s *stuckSource) Close() error   { return nil }

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestModule_SeekFailureIsLogged(t *testing.T) {
	logs := captureLogs(t)
	src := &stuckSource{length: 8000 * 20}
	m := newModule(src, beep.Format{SampleRate: 8000, NumChannels: 2, Precision: 2}, 8000, moduleMeta{
		player: engine.PlayerInfo{ID: "stuck"},
	})

	m.Seek(1)

	assert.Contains(t, logs.String(), "seek failed")
	assert.Contains(t, logs.String(), "player=stuck")
	assert.Contains(t, logs.String(), "not seekable")

	var fi engine.FrameInfo
	m.FrameInfo(&fi)
	assert.Equal(t, 0, fi.Position, "position unchanged after a failed seek")
}

func TestPCMConversion(t *testing.T) {
	m := &module{enabled: [2]bool{true, true}}

	assert.InDelta(t, -1.0, fromPCM(math.MinInt16), 0)
	assert.InDelta(t, 0.5, fromPCM(16384), 0)
	assert.Equal(t, int16(math.MaxInt16), m.toPCM(2, 0), "clipped")
	assert.Equal(t, int16(-math.MaxInt16), m.toPCM(-2, 1), "clipped")
	assert.Equal(t, int16(16383), m.toPCM(fromPCM(16384), 0))
}
