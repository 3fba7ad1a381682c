package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/penwyp/go-callflow/internal/core/ladder"
	"github.com/penwyp/go-callflow/internal/util"
	"golang.org/x/term"
)

const (
	fallbackWidth  = 100
	fallbackHeight = 30
)

// TerminalSize returns the size of stdout, or a fallback when it is not a terminal
func TerminalSize() (width, height int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return fallbackWidth, fallbackHeight
	}
	return w, h
}

// TerminalWidth returns the width of stdout, or a fallback when it is not a terminal
func TerminalWidth() int {
	w, _ := TerminalSize()
	return w
}

// IsTerminal reports whether stdout is attached to a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// WatchStatus is the status line content of the watch screen
type WatchStatus struct {
	Scope     string
	Users     []string
	Interval  time.Duration
	Boundary  time.Time
	Buffered  int
	Capacity  int
	Running   bool
	LastError string
	Toggles   string
}

// TerminalDisplay draws full-screen views on the alternate screen buffer
type TerminalDisplay struct {
	out               io.Writer
	size              func() (int, int)
	clock             *util.TimeProvider
	inAlternateScreen bool
}

// NewTerminalDisplay creates a display writing to out
func NewTerminalDisplay(out io.Writer, clock *util.TimeProvider) *TerminalDisplay {
	return &TerminalDisplay{
		out:   out,
		size:  TerminalSize,
		clock: clock,
	}
}

// EnterAlternateScreen switches to the alternate screen buffer and hides the cursor
func (td *TerminalDisplay) EnterAlternateScreen() {
	if td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.EnterAltScreen, util.ClearScreen, util.MoveCursorHome, util.ResetScrollRegion, util.HideCursor)
	td.inAlternateScreen = true
}

// ExitAlternateScreen restores the normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.ClearScreen, util.MoveCursorHome, util.ShowCursor, util.ExitAltScreen)
	td.inAlternateScreen = false
}

// RenderWatch redraws the watch screen: status, key help and the newest rows
// of the ladder that fit the terminal height
func (td *TerminalDisplay) RenderWatch(status WatchStatus, frame ladder.Frame, color bool) {
	width, height := td.size()
	lines := td.WatchLines(status, frame, width, height, color)

	var b strings.Builder
	b.WriteString(util.MoveCursorHome)
	for _, line := range lines {
		b.WriteString(util.ClearLine)
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	b.WriteString("\033[J")
	fmt.Fprint(td.out, b.String())
}

// WatchLines composes the watch screen for a terminal of width x height
func (td *TerminalDisplay) WatchLines(status WatchStatus, frame ladder.Frame, width, height int, color bool) []string {
	header := []string{
		td.statusLine(status, color),
		util.Truncate(helpLine, width),
		"",
	}
	body := NewLadderRenderer(width, color).Tail(frame, max(height-len(header)-1, 3))
	return append(header, body...)
}

const helpLine = "q quit  p pause  1-4 interval 5s/10s/30s/1m  i index  r relative  n names  c colors"

func (td *TerminalDisplay) statusLine(s WatchStatus, color bool) string {
	state := "watching"
	stateColor := util.ColorGreen
	if !s.Running {
		state = "paused"
		stateColor = util.ColorYellow
	}

	scope := s.Scope
	if len(s.Users) > 0 {
		scope += " [" + strings.Join(s.Users, ",") + "]"
	}

	parts := []string{
		scope,
		"every " + util.FormatInterval(s.Interval),
		"until " + td.clock.Clock(s.Boundary),
		util.FormatFill(s.Buffered, s.Capacity),
	}
	if s.Toggles != "" {
		parts = append(parts, s.Toggles)
	}
	line := strings.Join(parts, "  ")

	if !color {
		line = state + "  " + line
		if s.LastError != "" {
			line += "  error: " + s.LastError
		}
		return line
	}

	line = util.Colorize(state, util.ColorBold+stateColor) + "  " + line
	if s.LastError != "" {
		line += "  " + util.Colorize("error: "+s.LastError, util.ColorRed)
	}
	return line
}
