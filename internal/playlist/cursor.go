// Package playlist walks the list of module files given on the command line
// and loads each one into the decoding engine.
package playlist

import "math/rand/v2"

// Cursor walks an ordered list of module paths.
//
// The index starts before the first entry and only moves forward, except on
// Reset. An index at or past the end means the list is exhausted.
type Cursor struct {
	paths []string
	index int
}

// NewCursor creates a cursor over a copy of paths.
func NewCursor(paths []string) *Cursor {
	return &Cursor{
		paths: append([]string(nil), paths...),
		index: -1,
	}
}

// Shuffle permutes the entries and rewinds the cursor.
func (c *Cursor) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(c.paths), func(i, j int) {
		c.paths[i], c.paths[j] = c.paths[j], c.paths[i]
	})
	c.index = -1
}

// Advance moves to the next entry and returns its path.
// ok is false once the list is exhausted.
func (c *Cursor) Advance() (path string, ok bool) {
	if c.index < len(c.paths) {
		c.index++
	}
	return c.Current()
}

// Current returns the path at the cursor.
func (c *Cursor) Current() (path string, ok bool) {
	if c.index < 0 || c.index >= len(c.paths) {
		return "", false
	}
	return c.paths[c.index], true
}

// Index returns the cursor position (-1 before the first Advance).
func (c *Cursor) Index() int {
	return c.index
}

// Exhausted returns true once the cursor has moved past the last entry.
func (c *Cursor) Exhausted() bool {
	return c.index >= len(c.paths)
}

// Reset rewinds the cursor to before the first entry.
func (c *Cursor) Reset() {
	c.index = -1
}

// Len returns the number of entries.
func (c *Cursor) Len() int {
	return len(c.paths)
}

// Paths returns a copy of the entries in play order.
func (c *Cursor) Paths() []string {
	return append([]string(nil), c.paths...)
}
