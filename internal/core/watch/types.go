package watch

import (
	"context"
	"errors"
	"time"

	"github.com/penwyp/go-callflow/internal/core/model"
	"github.com/penwyp/go-callflow/internal/core/timeline"
)

var (
	ErrEmptyScope       = errors.New("watch scope must not be empty")
	ErrAlreadyWatching  = errors.New("already watching")
	ErrInvalidInterval  = errors.New("invalid watch interval")
	ErrStaleHandle      = errors.New("watch handle is not the active one")
	ErrControllerClosed = errors.New("watch controller is closed")
)

// Query selects the traffic to tail: a scope (domain) and optional user filters
type Query struct {
	Scope string   `json:"domain"`
	Users []string `json:"users,omitempty"`
}

// WindowRequest asks the backend for messages captured in [Start, End)
type WindowRequest struct {
	Scope string
	Users []string
	Start time.Time
	End   time.Time
}

// Fetcher retrieves the messages of one time window
type Fetcher interface {
	FetchWatchWindow(ctx context.Context, req WindowRequest) ([]model.Message, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, req WindowRequest) ([]model.Message, error)

func (f FetcherFunc) FetchWatchWindow(ctx context.Context, req WindowRequest) ([]model.Message, error) {
	return f(ctx, req)
}

// TickResult describes one poll. A failed fetch is reported in Err and counts
// as zero new messages.
type TickResult struct {
	At      time.Time `json:"at"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Fetched int       `json:"fetched"`
	Added   int       `json:"added"`
	Evicted int       `json:"evicted"`
	Err     error     `json:"-"`
}

// Failed reports whether the poll's fetch failed
func (r TickResult) Failed() bool {
	return r.Err != nil
}

// Snapshot is a copy of the controller state safe to hold after the lock is released
type Snapshot struct {
	Query    Query
	Messages []model.Message // Arrival order
	Boundary time.Time
	Interval time.Duration
	Running  bool
	Ticks    int
	LastTick TickResult
	Capacity int
}

// Timeline returns the time-sorted view of the buffer with arrival-order columns
func (s Snapshot) Timeline() *timeline.Timeline {
	return timeline.NewTimelineBuilder().FromBuffer(s.Messages, nil)
}

// Endpoints returns the buffered endpoints in first-arrival order
func (s Snapshot) Endpoints() []string {
	return timeline.DiscoverEndpoints(s.Messages)
}

// Ticker delivers poll ticks
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker firing every d
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}
