// Package player is the audio engine behind modplay. It decodes MP3, FLAC,
// WAV, Ogg Vorbis and Ogg Opus files and presents them to the playback
// session on a tracker-style time grid.
package player

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gopxl/beep/v2"

	"github.com/llehouerou/modplay/internal/engine"
)

var (
	// ErrUnknownFormat is returned when no decoder recognizes the data.
	ErrUnknownFormat = errors.New("unrecognized module format")
	// ErrUnknownPlayer is returned for a player hint that names no decoder.
	ErrUnknownPlayer = errors.New("unknown player")
	errEmptyStream   = errors.New("stream contains no audio")
)

type decodeFunc func(data []byte) (beep.StreamSeekCloser, beep.Format, error)

type decoder struct {
	format string
	name   string
	decode decodeFunc
}

var decoders = map[string]decoder{
	"mp3":    {format: "MPEG audio layer III", name: "go-mp3", decode: decodeMP3},
	"flac":   {format: "FLAC", name: "beep flac", decode: decodeFLAC},
	"wav":    {format: "RIFF WAVE", name: "beep wav", decode: decodeWAV},
	"vorbis": {format: "Ogg Vorbis", name: "vorbis", decode: decodeVorbis},
	"opus":   {format: "Ogg Opus", name: "opus", decode: decodeOpus},
}

// Players returns the names accepted as player hints, in detection order.
func Players() []string {
	return []string{"mp3", "flac", "wav", "vorbis", "opus"}
}

// Engine loads audio files into handles. The zero value is ready to use.
type Engine struct{}

// New creates an engine.
func New() *Engine {
	return &Engine{}
}

// Load decodes data for playback at sampleRate. An empty or "auto" hint
// detects the format from the file contents.
func (e *Engine) Load(data []byte, sampleRate int, playerHint string) (engine.Handle, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	id := strings.ToLower(strings.TrimSpace(playerHint))
	if id == "" || id == "auto" {
		detected, err := detect(data)
		if err != nil {
			return nil, err
		}
		id = detected
	}

	dec, ok := decoders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, playerHint)
	}

	src, format, err := dec.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dec.name, err)
	}
	if src.Len() <= 0 {
		_ = src.Close()
		return nil, errEmptyStream
	}

	title, creator := readTags(data)
	return newModule(src, format, beep.SampleRate(sampleRate), moduleMeta{
		title:   title,
		creator: creator,
		format:  dec.format,
		player:  engine.PlayerInfo{ID: id, Name: dec.name},
	}), nil
}

var _ engine.Loader = (*Engine)(nil)
