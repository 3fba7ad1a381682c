package interaction

import (
	"errors"
	"io"
	"os"
	"sync"
)

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyType represents the type of key pressed
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
	KeyInterrupt
)

// KeyboardReader delivers single key presses from a terminal in raw mode
type KeyboardReader struct {
	in       io.Reader
	fd       int
	oldState *termState
	input    chan KeyEvent
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewKeyboardReader puts stdin into raw mode and starts reading keys
func NewKeyboardReader() (*KeyboardReader, error) {
	kr := newKeyboardReader(os.Stdin, int(os.Stdin.Fd()))

	state, err := enableRawMode(kr.fd)
	if err != nil {
		return nil, err
	}
	kr.oldState = state

	go kr.readInput()
	return kr, nil
}

func newKeyboardReader(in io.Reader, fd int) *KeyboardReader {
	return &KeyboardReader{
		in:    in,
		fd:    fd,
		input: make(chan KeyEvent, 10),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// readInput reads keys until Close. Raw mode uses a read timeout, so the loop
// observes stop even without input.
func (kr *KeyboardReader) readInput() {
	defer close(kr.done)
	buf := make([]byte, 8)

	for {
		select {
		case <-kr.stop:
			return
		default:
		}

		n, err := kr.in.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) && n == 0 {
				select {
				case <-kr.stop:
					return
				default:
					continue
				}
			}
			continue
		}
		if n == 0 {
			continue
		}

		if event := parseInput(buf[:n]); event != nil {
			select {
			case kr.input <- *event:
			case <-kr.stop:
				return
			}
		}
	}
}

// parseInput parses raw keyboard input. Arrow keys and other escape
// sequences are ignored.
func parseInput(buf []byte) *KeyEvent {
	if len(buf) == 0 {
		return nil
	}

	switch buf[0] {
	case 3: // Ctrl+C
		return &KeyEvent{Key: 3, Type: KeyInterrupt}
	case 27:
		if len(buf) == 1 {
			return &KeyEvent{Key: 27, Type: KeyEscape}
		}
		return nil
	}

	return &KeyEvent{Key: rune(buf[0]), Type: KeyChar}
}

// Events returns the keyboard event channel
func (kr *KeyboardReader) Events() <-chan KeyEvent {
	return kr.input
}

// Close stops reading and restores the terminal
func (kr *KeyboardReader) Close() error {
	var err error
	kr.once.Do(func() {
		close(kr.stop)
		err = restoreMode(kr.fd, kr.oldState)
	})
	return err
}
