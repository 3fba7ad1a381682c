//go:build !linux && !darwin

package interaction

import "errors"

type termState struct{}

func enableRawMode(fd int) (*termState, error) {
	return nil, errors.New("raw keyboard input is not supported on this platform")
}

func restoreMode(fd int, state *termState) error {
	return nil
}
