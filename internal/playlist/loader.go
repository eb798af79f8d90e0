package playlist

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/llehouerou/modplay/internal/engine"
	"github.com/llehouerou/modplay/internal/errmsg"
)

var (
	// ErrExhausted is returned by LoadNext once every entry has been tried.
	ErrExhausted = errors.New("playlist exhausted")
	// ErrNotRegular is reported for entries that are not regular files.
	ErrNotRegular = errors.New("not a regular file")
)

// Options configures how entries are loaded.
type Options struct {
	SampleRate    int
	PlayerHint    string
	Interpolation string
	// Out receives the banner and per-entry diagnostics. Defaults to os.Stdout.
	Out io.Writer
}

// Loader turns playlist entries into engine handles, skipping entries that
// fail to load.
type Loader struct {
	cursor *Cursor
	engine engine.Loader
	opts   Options
	path   string
}

// NewLoader creates a loader that walks cursor.
func NewLoader(cursor *Cursor, eng engine.Loader, opts Options) *Loader {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Loader{cursor: cursor, engine: eng, opts: opts}
}

// LoadNext advances the cursor until an entry loads.
//
// Entries that cannot be read or decoded are reported on the output and
// skipped. ErrExhausted is returned once the cursor runs off the end. An
// unsupported interpolation mode is a configuration error and is returned
// immediately rather than skipped.
func (l *Loader) LoadNext() (engine.Handle, error) {
	for {
		path, ok := l.cursor.Advance()
		if !ok {
			return nil, ErrExhausted
		}

		h, err := l.load(path)
		if err == nil {
			l.path = path
			return h, nil
		}
		if errors.Is(err, engine.ErrUnknownInterpolation) {
			return nil, fmt.Errorf("%s: %w", errmsg.OpSetInterpolation, err)
		}
		fmt.Fprintln(l.opts.Out, errmsg.FormatWith(errmsg.OpLoadModule, path, err))
		slog.Debug("skipping playlist entry", "path", path, "index", l.cursor.Index(), "error", err)
	}
}

// Path returns the path of the most recently loaded entry.
func (l *Loader) Path() string {
	return l.path
}

func (l *Loader) load(path string) (engine.Handle, error) {
	fmt.Fprintf(l.opts.Out, "Loading %s...\n", path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, ErrNotRegular
	}

	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	h, err := l.engine.Load(data, l.opts.SampleRate, l.opts.PlayerHint)
	if err != nil {
		return nil, err
	}

	if l.opts.Interpolation != "" {
		if err := h.SetInterpolation(l.opts.Interpolation); err != nil {
			_ = h.Close()
			return nil, err
		}
	}

	player, err := h.PlayerInfo()
	if err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("%s: %w", errmsg.OpQueryPlayer, err)
	}

	writeBanner(l.opts.Out, h.ModuleInfo(), player, info.Size())
	return h, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.OpReadModule, err)
	}
	return data, nil
}
