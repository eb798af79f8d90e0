package engine

import "sync"

// Mock is a test double for Handle. It keeps a position cursor and records
// every control call.
type Mock struct {
	mu sync.Mutex

	Info       ModuleInfo
	Player     PlayerInfo
	PlayerErr  error
	InterpErr  error
	Frame      FrameInfo
	renders    int
	seeks      []int
	channels   map[int]bool
	interp     string
	closed     bool
	renderHook func(buf []int16)
}

// NewMock creates a mock module with the given number of channels and
// order-list length.
func NewMock(channels, length int) *Mock {
	return &Mock{
		Info: ModuleInfo{
			Title:    "mock",
			Format:   "Mock",
			Channels: channels,
			Length:   length,
			Patterns: length,
		},
		Player:   PlayerInfo{ID: "mock", Name: "Mock player"},
		Frame:    FrameInfo{NumRows: 64, Speed: 6, Tempo: 125},
		channels: make(map[int]bool),
	}
}

func (m *Mock) Render(buf []int16) {
	m.mu.Lock()
	m.renders++
	hook := m.renderHook
	m.mu.Unlock()
	if hook != nil {
		hook(buf)
	}
}

func (m *Mock) FrameInfo(fi *FrameInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*fi = m.Frame
}

func (m *Mock) Seek(position int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeks = append(m.seeks, position)
	m.Frame.Position = position
	m.Frame.Pattern = position
	m.Frame.Row = 0
}

func (m *Mock) SetChannelEnabled(index int, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[index] = enabled
}

func (m *Mock) SetInterpolation(mode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InterpErr != nil {
		return m.InterpErr
	}
	m.interp = mode
	return nil
}

func (m *Mock) ModuleInfo() ModuleInfo { return m.Info }

func (m *Mock) PlayerInfo() (PlayerInfo, error) {
	if m.PlayerErr != nil {
		return PlayerInfo{}, m.PlayerErr
	}
	return m.Player, nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

// SetFrame replaces the frame reported by FrameInfo.
func (m *Mock) SetFrame(fi FrameInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frame = fi
}

// OnRender installs a function called with every rendered buffer.
func (m *Mock) OnRender(fn func(buf []int16)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderHook = fn
}

// Renders returns the number of Render calls.
func (m *Mock) Renders() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renders
}

// Seeks returns the positions passed to Seek.
func (m *Mock) Seeks() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.seeks...)
}

// ChannelEnabled reports the last state set for a channel. Channels never set
// are enabled.
func (m *Mock) ChannelEnabled(index int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	enabled, set := m.channels[index]
	return !set || enabled
}

// Interpolation returns the last mode accepted by SetInterpolation.
func (m *Mock) Interpolation() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interp
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Handle at compile time.
var _ Handle = (*Mock)(nil)
