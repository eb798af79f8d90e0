package terminal

import "io"

// KeyReader reads the controlling input one byte at a time. It never reads
// ahead, so bytes of an escape sequence stay in the stream until asked for.
type KeyReader struct {
	r   io.Reader
	buf [1]byte
}

// NewKeyReader returns a KeyReader over r (usually os.Stdin).
func NewKeyReader(r io.Reader) *KeyReader {
	return &KeyReader{r: r}
}

// ReadKey blocks until a byte arrives. ok is false once the stream is closed
// or fails.
func (k *KeyReader) ReadKey() (c byte, ok bool) {
	for {
		n, err := k.r.Read(k.buf[:])
		if n == 1 {
			return k.buf[0], true
		}
		if err != nil {
			return 0, false
		}
	}
}
