package player

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/go-mp3"
)

// go-mp3 always produces 16-bit little-endian stereo.
const mp3FrameSize = 4

var errMP3Rate = errors.New("invalid sample rate")

// mp3Stream serves an in-memory MP3 image to the module grid. The length is
// fixed when the stream is opened so the grid never changes under playback.
type mp3Stream struct {
	dec    *mp3.Decoder
	length int
	raw    []byte
	err    error
}

func decodeMP3(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	dec, err := mp3.NewDecoder(newMemReader(data))
	if err != nil {
		return nil, beep.Format{}, err
	}
	rate := dec.SampleRate()
	if rate <= 0 {
		return nil, beep.Format{}, errMP3Rate
	}

	s := &mp3Stream{
		dec:    dec,
		length: int(max(dec.SampleCount(), 0)),
	}
	return s, beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 2, Precision: 2}, nil
}

func (s *mp3Stream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}

	want := len(samples) * mp3FrameSize
	if cap(s.raw) < want {
		s.raw = make([]byte, want)
	}
	got, err := io.ReadFull(s.dec, s.raw[:want])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		s.err = err
		return 0, false
	}

	n = got / mp3FrameSize
	for i := range n {
		frame := s.raw[i*mp3FrameSize:]
		samples[i][0] = fromPCM(int16(binary.LittleEndian.Uint16(frame[0:]))) //nolint:gosec // two's complement sample
		samples[i][1] = fromPCM(int16(binary.LittleEndian.Uint16(frame[2:]))) //nolint:gosec // two's complement sample
	}
	return n, n > 0
}

func (s *mp3Stream) Err() error { return s.err }

func (s *mp3Stream) Len() int { return s.length }

func (s *mp3Stream) Position() int {
	return min(int(s.dec.SamplePosition()), s.length)
}

func (s *mp3Stream) Seek(p int) error {
	if err := s.dec.SeekToSample(int64(min(max(p, 0), s.length))); err != nil {
		return err
	}
	s.err = nil
	return nil
}

func (s *mp3Stream) Close() error { return nil }
