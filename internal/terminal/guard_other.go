//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly || windows)

package terminal

type savedState struct{}

func getState(int) (*savedState, error) {
	return nil, ErrUnsupported
}

func makeRaw(int, *savedState) error {
	return ErrUnsupported
}

func setState(int, *savedState) error {
	return ErrUnsupported
}
