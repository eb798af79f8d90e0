//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package terminal

import "golang.org/x/sys/unix"

type savedState struct {
	termios unix.Termios
}

func getState(fd int) (*savedState, error) {
	t, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, err
	}
	return &savedState{termios: *t}, nil
}

// makeRaw turns off echo, canonical input and the suspend key. VMIN=1 and
// VTIME=0 make read(2) block until one byte is available, so the input
// goroutine sleeps in the kernel instead of polling.
func makeRaw(fd int, s *savedState) error {
	raw := s.termios
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.TOSTOP
	raw.Cc[unix.VSUSP] = posixVDisable
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	return unix.IoctlSetTermios(fd, ioctlWriteTermiosFlush, &raw)
}

func setState(fd int, s *savedState) error {
	t := s.termios
	return unix.IoctlSetTermios(fd, ioctlWriteTermiosFlush, &t)
}
