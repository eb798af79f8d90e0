//go:build windows

package terminal

import "golang.org/x/sys/windows"

type savedState struct {
	mode uint32
}

func getState(fd int) (*savedState, error) {
	var mode uint32
	if err := windows.GetConsoleMode(windows.Handle(fd), &mode); err != nil {
		return nil, err
	}
	return &savedState{mode: mode}, nil
}

// makeRaw turns off echo and line input. Virtual terminal input makes the
// console report arrow keys as the same CSI sequences a Unix terminal sends,
// so key decoding is identical on every platform. ReadFile on the console
// blocks until a key is available.
func makeRaw(fd int, s *savedState) error {
	mode := s.mode &^ (windows.ENABLE_ECHO_INPUT | windows.ENABLE_LINE_INPUT)
	mode |= windows.ENABLE_VIRTUAL_TERMINAL_INPUT
	return windows.SetConsoleMode(windows.Handle(fd), mode)
}

func setState(fd int, s *savedState) error {
	return windows.SetConsoleMode(windows.Handle(fd), s.mode)
}
