// Package mask parses channel lists such as "0,2-4" into mute or solo toggles.
package mask

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmptyToken    = errors.New("empty channel token")
	ErrBadNumber     = errors.New("invalid channel number")
	ErrBadRange      = errors.New("invalid channel range")
	ErrReversedRange = errors.New("range end before start")
)

// maxChannel is the highest channel number accepted in a list.
const maxChannel = 255

// Toggle sets one channel on or off.
type Toggle struct {
	Channel int
	Enabled bool
}

// ChannelSetter is the part of an engine handle a mask is applied to.
type ChannelSetter interface {
	SetChannelEnabled(index int, enabled bool)
}

// Mask is a parsed mute or solo list.
type Mask struct {
	mute    bool
	toggles []Toggle
}

// Parse reads a comma-separated list of channel numbers and inclusive
// "a-b" ranges. With mute set the listed channels are silenced and every
// other channel plays; otherwise only the listed channels play.
func Parse(text string, mute bool) (Mask, error) {
	m := Mask{mute: mute}
	for _, token := range strings.Split(text, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return Mask{}, fmt.Errorf("%w in %q", ErrEmptyToken, text)
		}

		start, end, err := parseToken(token)
		if err != nil {
			return Mask{}, err
		}
		for ch := start; ch <= end; ch++ {
			m.toggles = append(m.toggles, Toggle{Channel: ch, Enabled: !mute})
		}
	}
	return m, nil
}

func parseToken(token string) (start, end int, err error) {
	if !strings.Contains(token, "-") {
		n, err := parseChannel(token)
		return n, n, err
	}

	bounds := strings.Split(token, "-")
	if len(bounds) != 2 {
		return 0, 0, fmt.Errorf("%w %q: want a-b", ErrBadRange, token)
	}
	if start, err = parseChannel(bounds[0]); err != nil {
		return 0, 0, fmt.Errorf("%w %q: %w", ErrBadRange, token, err)
	}
	if end, err = parseChannel(bounds[1]); err != nil {
		return 0, 0, fmt.Errorf("%w %q: %w", ErrBadRange, token, err)
	}
	if end < start {
		return 0, 0, fmt.Errorf("%w: %q", ErrReversedRange, token)
	}
	return start, end, nil
}

func parseChannel(s string) (int, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil || n > maxChannel {
		return 0, fmt.Errorf("%w %q", ErrBadNumber, s)
	}
	return int(n), nil
}

// Mute reports whether the mask silences the listed channels.
func (m Mask) Mute() bool {
	return m.mute
}

// Toggles returns the per-channel settings in the order they were listed.
func (m Mask) Toggles() []Toggle {
	return append([]Toggle(nil), m.toggles...)
}

// Apply first sets all channels to the opposite of the listed state, then
// applies the toggles in order.
func (m Mask) Apply(h ChannelSetter, channels int) {
	for ch := range channels {
		h.SetChannelEnabled(ch, m.mute)
	}
	for _, t := range m.toggles {
		h.SetChannelEnabled(t.Channel, t.Enabled)
	}
}
