//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package terminal

import "golang.org/x/sys/unix"

const (
	ioctlReadTermios       = unix.TIOCGETA
	ioctlWriteTermiosFlush = unix.TIOCSETAF // TCSAFLUSH

	posixVDisable = 0xff
)
