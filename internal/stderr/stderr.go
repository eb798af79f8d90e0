//go:build unix

// Package stderr captures output that C libraries (ALSA, the audio backend)
// write straight to file descriptor 2, so it cannot tear through the status
// line. Captured lines are forwarded to a logger.
package stderr

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

var (
	mu         sync.Mutex
	origStderr = -1
	pipeRead   *os.File
	pipeWrite  *os.File
	forwarded  sync.WaitGroup
)

// Start redirects fd 2 into a pipe and logs every captured line at debug
// level on logger. It must run before the audio device is opened. On error
// the program can continue without capture.
func Start(logger *slog.Logger) error {
	mu.Lock()
	defer mu.Unlock()
	if origStderr >= 0 {
		return nil
	}

	r, w, err := os.Pipe()
	if err != nil {
		return err
	}

	orig, err := unix.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return err
	}

	if err := unix.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		_ = unix.Close(orig)
		r.Close()
		w.Close()
		return err
	}

	origStderr = orig
	pipeRead = r
	pipeWrite = w

	forwarded.Add(1)
	go func() {
		defer forwarded.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				logger.Debug("captured stderr", "line", line)
			}
		}
	}()

	return nil
}

type originalWriter struct{}

func (originalWriter) Write(p []byte) (int, error) {
	mu.Lock()
	fd := origStderr
	mu.Unlock()
	if fd < 0 {
		return os.Stderr.Write(p)
	}
	return unix.Write(fd, p)
}

// Writer returns a writer to the real stderr, bypassing capture.
func Writer() io.Writer {
	return originalWriter{}
}

// Stop restores the original stderr and waits for captured output to be
// forwarded.
func Stop() {
	mu.Lock()
	if origStderr < 0 {
		mu.Unlock()
		return
	}

	_ = unix.Dup2(origStderr, int(os.Stderr.Fd()))
	_ = unix.Close(origStderr)
	origStderr = -1
	pipeWrite.Close()
	mu.Unlock()

	forwarded.Wait()
	pipeRead.Close()
}
