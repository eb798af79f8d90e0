//go:build !unix

// Package stderr is a pass-through where C audio libraries do not write to
// the process stderr.
package stderr

import (
	"io"
	"log/slog"
	"os"
)

// Start is a no-op.
func Start(*slog.Logger) error {
	return nil
}

// Writer returns os.Stderr.
func Writer() io.Writer {
	return os.Stderr
}

// Stop is a no-op.
func Stop() {}
