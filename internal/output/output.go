// Package output connects a playback session to the audio device.
package output

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/llehouerou/modplay/internal/errmsg"
	"github.com/llehouerou/modplay/internal/session"
)

// Filler produces interleaved 16-bit stereo audio. *session.Session
// implements it.
type Filler interface {
	Fill(buf []int16) bool
	Monitor()
	Fail(err error, code int)
}

// Streamer adapts a Filler to beep. Each Stream call is one render callback
// followed by a Monitor step.
type Streamer struct {
	filler Filler
	pcm    []int16
	done   bool
}

// NewStreamer creates a streamer for f.
func NewStreamer(f Filler) *Streamer {
	return &Streamer{filler: f}
}

// Stream fills samples from the session. It drains once the session
// finishes or a render panics.
func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.done {
		return 0, false
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("render panic", "panic", r, "stack", string(debug.Stack()))
			s.done = true
			s.filler.Fail(fmt.Errorf("%s: panic: %v", errmsg.OpRender, r), session.ExitPanic)
			n, ok = 0, false
		}
	}()

	need := 2 * len(samples)
	if cap(s.pcm) < need {
		s.pcm = make([]int16, need)
	}
	pcm := s.pcm[:need]

	if !s.filler.Fill(pcm) {
		s.done = true
		return 0, false
	}
	for i := range samples {
		samples[i][0] = float64(pcm[2*i]) / 32768
		samples[i][1] = float64(pcm[2*i+1]) / 32768
	}

	s.filler.Monitor()
	return len(samples), true
}

// Err implements beep.Streamer.
func (s *Streamer) Err() error {
	return nil
}

// Device is the opened speaker.
type Device struct{}

// Open initializes the speaker at sampleRate with the given buffer length.
func Open(sampleRate int, buffer time.Duration) (*Device, error) {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, max(sr.N(buffer), 1)); err != nil {
		return nil, fmt.Errorf("speaker: %w", err)
	}
	slog.Debug("audio device opened", "rate", sampleRate, "buffer", buffer)
	return &Device{}, nil
}

// Play starts pulling audio from f.
func (d *Device) Play(f Filler) {
	speaker.Play(NewStreamer(f))
}

// Close stops playback and releases the device.
func (d *Device) Close() {
	speaker.Clear()
	speaker.Close()
}

var _ beep.Streamer = (*Streamer)(nil)
