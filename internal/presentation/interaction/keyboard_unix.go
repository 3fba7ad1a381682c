//go:build linux || darwin

package interaction

import (
	"golang.org/x/sys/unix"
)

type termState = unix.Termios

// enableRawMode disables echo and line buffering. Reads return after at most
// 100ms so the reader can notice Close.
func enableRawMode(fd int) (*termState, error) {
	oldState, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, err
	}

	newState := *oldState
	newState.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN
	// Keep ISIG enabled to allow Ctrl+C handling
	newState.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	newState.Cflag |= unix.CS8
	newState.Cc[unix.VMIN] = 0
	newState.Cc[unix.VTIME] = 1

	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, &newState); err != nil {
		return nil, err
	}
	return oldState, nil
}

// restoreMode restores the terminal state saved by enableRawMode
func restoreMode(fd int, state *termState) error {
	if state == nil {
		return nil
	}
	return unix.IoctlSetTermios(fd, ioctlWriteTermios, state)
}
