package player

import (
	"bytes"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"
)

// memReader serves a module image from memory to decoders that expect a file.
type memReader struct {
	*bytes.Reader
}

func newMemReader(data []byte) memReader {
	return memReader{Reader: bytes.NewReader(data)}
}

func (memReader) Close() error { return nil }

func decodeFLAC(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	return flac.Decode(newMemReader(skipID3v2(data)))
}

func decodeWAV(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	return wav.Decode(newMemReader(data))
}
