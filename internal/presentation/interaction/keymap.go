package interaction

import (
	"time"
)

// Action is what a key press asks the watch view to do
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionTogglePause
	ActionSetInterval
	ActionToggleIndex
	ActionToggleRelative
	ActionToggleNames
	ActionToggleColors
)

// Command is a resolved key press
type Command struct {
	Action   Action
	Interval time.Duration // Set for ActionSetInterval
}

var intervalKeys = map[rune]time.Duration{
	'1': 5 * time.Second,
	'2': 10 * time.Second,
	'3': 30 * time.Second,
	'4': 60 * time.Second,
}

// Resolve maps a key event to a watch view command
func Resolve(event KeyEvent) Command {
	switch event.Type {
	case KeyEscape, KeyInterrupt:
		return Command{Action: ActionQuit}
	}

	if d, ok := intervalKeys[event.Key]; ok {
		return Command{Action: ActionSetInterval, Interval: d}
	}

	switch event.Key {
	case 'q', 'Q':
		return Command{Action: ActionQuit}
	case 'p', 'P', ' ':
		return Command{Action: ActionTogglePause}
	case 'i', 'I':
		return Command{Action: ActionToggleIndex}
	case 'r', 'R':
		return Command{Action: ActionToggleRelative}
	case 'n', 'N':
		return Command{Action: ActionToggleNames}
	case 'c', 'C':
		return Command{Action: ActionToggleColors}
	}
	return Command{Action: ActionNone}
}

// PreferenceKey returns the preference toggled by a, if any
func (a Action) PreferenceKey() (string, bool) {
	switch a {
	case ActionToggleIndex:
		return "index", true
	case ActionToggleRelative:
		return "relative", true
	case ActionToggleNames:
		return "names", true
	case ActionToggleColors:
		return "colors", true
	}
	return "", false
}
