package player

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/llehouerou/modplay/internal/engine"
)

// Grid constants. Audio files have no patterns, so playback time is cut into
// rows of a fixed speed 6 / tempo 125 tracker grid.
const (
	gridSpeed   = 6
	gridTempo   = 125
	rowsPerPat  = 64
	rowDuration = time.Duration(gridSpeed) * 2500 * time.Millisecond / gridTempo
	patDuration = rowDuration * rowsPerPat
)

// DefaultInterpolation is the resampler mode used until SetInterpolation.
const DefaultInterpolation = "spline"

// interpolations maps mode names to beep resampler quality.
var interpolations = map[string]int{
	"linear": 1,
	"cubic":  2,
	"spline": 4,
	"sinc":   16,
}

// Interpolations returns the accepted interpolation mode names.
func Interpolations() []string {
	return []string{"linear", "cubic", "spline", "sinc"}
}

type moduleMeta struct {
	title   string
	creator string
	format  string
	player  engine.PlayerInfo
}

// module implements engine.Handle over a decoded audio stream.
type module struct {
	src     beep.StreamSeekCloser
	srcRate beep.SampleRate
	outRate beep.SampleRate
	quality int
	stream  beep.Streamer

	enabled [2]bool
	buf     [][2]float64
	loops   int

	meta   moduleMeta
	length int
}

func newModule(src beep.StreamSeekCloser, format beep.Format, outRate beep.SampleRate, meta moduleMeta) *module {
	m := &module{
		src:     src,
		srcRate: format.SampleRate,
		outRate: outRate,
		quality: interpolations[DefaultInterpolation],
		enabled: [2]bool{true, true},
		meta:    meta,
	}
	m.length = max(int((m.duration()+patDuration-1)/patDuration), 1)
	m.rebuild()
	return m
}

// rebuild recreates the resampler after the source moved or the quality
// changed, dropping any samples it buffered.
func (m *module) rebuild() {
	if m.srcRate == m.outRate {
		m.stream = m.src
		return
	}
	m.stream = beep.Resample(m.quality, m.srcRate, m.outRate, m.src)
}

func (m *module) duration() time.Duration {
	return m.srcRate.D(m.src.Len())
}

// Render fills buf with interleaved stereo frames. The stream wraps around at
// its end and the loop counter is incremented.
func (m *module) Render(buf []int16) {
	frames := len(buf) / 2
	if cap(m.buf) < frames {
		m.buf = make([][2]float64, frames)
	}
	samples := m.buf[:frames]

	filled := 0
	wrapped := false
	for filled < frames {
		n, ok := m.stream.Stream(samples[filled:])
		filled += n
		if n > 0 {
			wrapped = false
		}
		if ok && n > 0 {
			continue
		}
		if wrapped {
			// Nothing came out right after a rewind.
			clear(samples[filled:])
			break
		}
		m.rewind()
		wrapped = true
	}

	for i, s := range samples {
		buf[2*i] = m.toPCM(s[0], 0)
		buf[2*i+1] = m.toPCM(s[1], 1)
	}
	if len(buf)%2 == 1 {
		buf[len(buf)-1] = 0
	}
}

// pcmScale maps 16-bit PCM to and from beep's [-1, 1] sample range.
const pcmScale = 32768

func fromPCM(v int16) float64 {
	return float64(v) / pcmScale
}

func (m *module) toPCM(v float64, channel int) int16 {
	if !m.enabled[channel] {
		return 0
	}
	v = min(max(v, -1), 1)
	return int16(v * (pcmScale - 1))
}

func (m *module) rewind() {
	m.seekSource(0)
	m.loops++
	m.rebuild()
}

// seekSource moves the decoder. Handle.Seek has no error result, so a failed
// seek is logged and playback continues from wherever the decoder is.
func (m *module) seekSource(sample int) {
	if err := m.src.Seek(sample); err != nil {
		slog.Warn("seek failed", "player", m.meta.player.ID, "sample", sample, "error", err)
	}
}

// FrameInfo reports the grid cursor for the current source position.
func (m *module) FrameInfo(fi *engine.FrameInfo) {
	elapsed := m.srcRate.D(m.src.Position())
	row := int(elapsed / rowDuration)

	fi.Position = row / rowsPerPat
	fi.Pattern = fi.Position
	fi.Row = row % rowsPerPat
	fi.NumRows = rowsPerPat
	fi.Speed = gridSpeed
	fi.Tempo = gridTempo
	fi.Elapsed = elapsed
	fi.LoopCount = m.loops
}

// Seek jumps to the first row of position. Seeking past the last position
// completes a loop.
func (m *module) Seek(position int) {
	if position >= m.length {
		m.rewind()
		return
	}
	position = max(position, 0)
	m.seekSource(min(m.srcRate.N(time.Duration(position)*patDuration), m.src.Len()))
	m.rebuild()
}

// SetChannelEnabled toggles an output channel: 0 is left, 1 is right.
func (m *module) SetChannelEnabled(index int, enabled bool) {
	if index < 0 || index >= len(m.enabled) {
		return
	}
	m.enabled[index] = enabled
}

func (m *module) SetInterpolation(mode string) error {
	q, ok := interpolations[mode]
	if !ok {
		return fmt.Errorf("%w: %q", engine.ErrUnknownInterpolation, mode)
	}
	if q != m.quality {
		m.quality = q
		m.rebuild()
	}
	return nil
}

func (m *module) ModuleInfo() engine.ModuleInfo {
	return engine.ModuleInfo{
		Title:    m.meta.title,
		Format:   m.meta.format,
		Creator:  m.meta.creator,
		Channels: len(m.enabled),
		Length:   m.length,
		Patterns: m.length,
		Duration: m.duration(),
	}
}

func (m *module) PlayerInfo() (engine.PlayerInfo, error) {
	return m.meta.player, nil
}

func (m *module) Close() error {
	return m.src.Close()
}

var _ engine.Handle = (*module)(nil)
