// Package engine defines the contract between the playback control plane and
// the module decoding engine that produces audio.
package engine

import (
	"errors"
	"time"
)

// ErrUnknownInterpolation is returned by SetInterpolation for an unsupported mode.
var ErrUnknownInterpolation = errors.New("unknown interpolation mode")

// FrameInfo is a snapshot of the playback cursor.
type FrameInfo struct {
	Position  int // index in the order list
	Row       int
	NumRows   int // rows in the current pattern
	Pattern   int
	Speed     int
	Tempo     int
	Elapsed   time.Duration
	LoopCount int // times playback has wrapped past the end
}

// ModuleInfo describes a loaded module.
type ModuleInfo struct {
	Title    string
	Format   string
	Creator  string
	Channels int
	Length   int // positions in the order list
	Patterns int
	Duration time.Duration
}

// PlayerInfo identifies the replayer that renders a module.
type PlayerInfo struct {
	ID   string
	Name string
}

// Handle is one loaded module together with its live playback cursor.
// A Handle is used from a single goroutine.
type Handle interface {
	// Render fills buf with interleaved stereo 16-bit frames.
	Render(buf []int16)
	// FrameInfo writes the current cursor into fi.
	FrameInfo(fi *FrameInfo)
	// Seek moves playback to the start of position.
	Seek(position int)
	SetChannelEnabled(index int, enabled bool)
	SetInterpolation(mode string) error
	ModuleInfo() ModuleInfo
	PlayerInfo() (PlayerInfo, error)
	Close() error
}

// Loader creates handles from module data.
type Loader interface {
	// Load parses data for playback at sampleRate. playerHint selects a
	// specific replayer; empty lets the engine choose.
	Load(data []byte, sampleRate int, playerHint string) (Handle, error)
}
