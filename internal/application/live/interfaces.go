package live

import (
	"context"
	"time"

	"github.com/penwyp/go-callflow/internal/core/ladder"
	"github.com/penwyp/go-callflow/internal/core/watch"
	"github.com/penwyp/go-callflow/internal/data/prefs"
	"github.com/penwyp/go-callflow/internal/presentation/display"
	"github.com/penwyp/go-callflow/internal/presentation/interaction"
)

// TailController runs the live-tail polling state machine
type TailController interface {
	// Start begins a watch session and returns its handle
	Start(ctx context.Context, q watch.Query) (*watch.Handle, error)
	// Stop cancels the session owned by h
	Stop(h *watch.Handle) error
	// Restart changes the interval, restarting an active session
	Restart(ctx context.Context, interval time.Duration) (*watch.Handle, error)
	// Snapshot returns a copy of the buffered state
	Snapshot() watch.Snapshot
	// Close stops any active session
	Close()
}

// DisplayController handles terminal display operations
type DisplayController interface {
	// EnterAlternateScreen switches to alternate terminal screen
	EnterAlternateScreen()
	// ExitAlternateScreen returns to normal terminal screen
	ExitAlternateScreen()
	// RenderWatch draws the watch screen
	RenderWatch(status display.WatchStatus, frame ladder.Frame, color bool)
}

// InputHandler processes keyboard and other input events
type InputHandler interface {
	// Events returns a channel of keyboard events
	Events() <-chan interaction.KeyEvent
	// Close cleans up input handler resources
	Close() error
}

// PreferenceMonitor reports preference changes made outside this process
type PreferenceMonitor interface {
	// Changes returns a channel of reloaded preferences
	Changes() <-chan prefs.Preferences
	// Acknowledge records a value this process saved itself
	Acknowledge(p prefs.Preferences)
	// Close stops monitoring
	Close() error
}
