package playlist

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/modplay/internal/engine"
)

var errCorrupt = errors.New("corrupt module")

// fakeEngine accepts data starting with "MOD" and records what it loaded.
type fakeEngine struct {
	loaded [][]byte
	rates  []int
	hints  []string
	mocks  []*engine.Mock
	setup  func(m *engine.Mock)
}

func (f *fakeEngine) Load(data []byte, sampleRate int, playerHint string) (engine.Handle, error) {
	f.rates = append(f.rates, sampleRate)
	f.hints = append(f.hints, playerHint)
	if !bytes.HasPrefix(data, []byte("MOD")) {
		return nil, errCorrupt
	}
	f.loaded = append(f.loaded, data)
	m := engine.NewMock(4, 8)
	m.Info.Title = string(data)
	m.Info.Duration = 95 * time.Second
	if f.setup != nil {
		f.setup(m)
	}
	f.mocks = append(f.mocks, m)
	return m, nil
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestLoader_SkipsCorruptEntry(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.mod":       "MOD a",
		"corrupt.bin": "garbage",
		"b.mod":       "MOD b",
	})
	cursor := NewCursor([]string{
		filepath.Join(dir, "a.mod"),
		filepath.Join(dir, "corrupt.bin"),
		filepath.Join(dir, "b.mod"),
	})
	eng := &fakeEngine{}
	var out bytes.Buffer
	l := NewLoader(cursor, eng, Options{SampleRate: 44100, Out: &out})

	h, err := l.LoadNext()
	require.NoError(t, err)
	assert.Equal(t, "MOD a", h.ModuleInfo().Title)
	assert.Equal(t, filepath.Join(dir, "a.mod"), l.Path())

	h, err = l.LoadNext()
	require.NoError(t, err)
	assert.Equal(t, "MOD b", h.ModuleInfo().Title)
	assert.Equal(t, 2, cursor.Index())
	assert.Contains(t, out.String(), "Failed to load module '"+filepath.Join(dir, "corrupt.bin")+"': corrupt module")

	_, err = l.LoadNext()
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestLoader_MissingAndDirectoryEntriesAreSkipped(t *testing.T) {
	dir := writeFiles(t, map[string]string{"ok.mod": "MOD ok"})
	cursor := NewCursor([]string{
		filepath.Join(dir, "missing.mod"),
		dir,
		filepath.Join(dir, "ok.mod"),
	})
	var out bytes.Buffer
	l := NewLoader(cursor, &fakeEngine{}, Options{Out: &out})

	h, err := l.LoadNext()
	require.NoError(t, err)
	assert.Equal(t, "MOD ok", h.ModuleInfo().Title)
	assert.Contains(t, out.String(), ErrNotRegular.Error())
}

func TestLoader_AllEntriesFail(t *testing.T) {
	dir := writeFiles(t, map[string]string{"x.bin": "nope", "y.bin": "nope"})
	cursor := NewCursor([]string{filepath.Join(dir, "x.bin"), filepath.Join(dir, "y.bin")})
	l := NewLoader(cursor, &fakeEngine{}, Options{Out: &bytes.Buffer{}})

	_, err := l.LoadNext()
	assert.ErrorIs(t, err, ErrExhausted)
	assert.True(t, cursor.Exhausted())
}

func TestLoader_PassesRateAndHint(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.mod": "MOD a"})
	eng := &fakeEngine{}
	l := NewLoader(NewCursor([]string{filepath.Join(dir, "a.mod")}), eng, Options{
		SampleRate: 48000,
		PlayerHint: "flac",
		Out:        &bytes.Buffer{},
	})

	_, err := l.LoadNext()
	require.NoError(t, err)
	assert.Equal(t, []int{48000}, eng.rates)
	assert.Equal(t, []string{"flac"}, eng.hints)
}

func TestLoader_AppliesInterpolation(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.mod": "MOD a"})
	eng := &fakeEngine{}
	l := NewLoader(NewCursor([]string{filepath.Join(dir, "a.mod")}), eng, Options{
		Interpolation: "cubic",
		Out:           &bytes.Buffer{},
	})

	_, err := l.LoadNext()
	require.NoError(t, err)
	require.Len(t, eng.mocks, 1)
	assert.Equal(t, "cubic", eng.mocks[0].Interpolation())
}

func TestLoader_UnknownInterpolationIsFatal(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.mod": "MOD a", "b.mod": "MOD b"})
	eng := &fakeEngine{setup: func(m *engine.Mock) {
		m.InterpErr = engine.ErrUnknownInterpolation
	}}
	cursor := NewCursor([]string{filepath.Join(dir, "a.mod"), filepath.Join(dir, "b.mod")})
	l := NewLoader(cursor, eng, Options{Interpolation: "bogus", Out: &bytes.Buffer{}})

	_, err := l.LoadNext()
	require.ErrorIs(t, err, engine.ErrUnknownInterpolation)
	assert.Equal(t, 0, cursor.Index())
	assert.True(t, eng.mocks[0].Closed())
}

func TestLoader_PlayerInfoFailureSkips(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.mod": "MOD a", "b.mod": "MOD b"})
	first := true
	eng := &fakeEngine{setup: func(m *engine.Mock) {
		if first {
			m.PlayerErr = errors.New("no player")
			first = false
		}
	}}
	var out bytes.Buffer
	cursor := NewCursor([]string{filepath.Join(dir, "a.mod"), filepath.Join(dir, "b.mod")})
	l := NewLoader(cursor, eng, Options{Out: &out})

	h, err := l.LoadNext()
	require.NoError(t, err)
	assert.Equal(t, "MOD b", h.ModuleInfo().Title)
	assert.True(t, eng.mocks[0].Closed())
	assert.Contains(t, out.String(), "query player: no player")
}

func TestLoader_PrintsBanner(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.mod": "MOD a"})
	var out bytes.Buffer
	l := NewLoader(NewCursor([]string{filepath.Join(dir, "a.mod")}), &fakeEngine{}, Options{Out: &out})

	_, err := l.LoadNext()
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "Loading "+filepath.Join(dir, "a.mod"))
	assert.Contains(t, s, "Mock")
	assert.Contains(t, s, "MOD a")
	assert.Contains(t, s, "Mock player (mock)")
	assert.Contains(t, s, "1min35s")
	assert.Contains(t, s, "5 B")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0min00s"},
		{59 * time.Second, "0min59s"},
		{61 * time.Second, "1min01s"},
		{10*time.Minute + 500*time.Millisecond, "10min01s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.in))
		})
	}
}
