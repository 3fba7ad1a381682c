package watch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/penwyp/go-callflow/internal/core/constants"
	"github.com/penwyp/go-callflow/internal/util"
)

// Handle owns the poll timer of one watch session. It is returned by Start and
// must be passed to Stop.
type Handle struct {
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	once       sync.Once
}

// Done is closed once the poll loop of this handle has exited
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// cancelAndWait cancels the timer exactly once and waits for the loop to exit
func (h *Handle) cancelAndWait() {
	h.once.Do(h.cancel)
	<-h.done
}

// Option configures a Controller
type Option func(*Controller)

// WithClock overrides the clock used to compute poll windows
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithTickerFactory overrides how poll tickers are created
func WithTickerFactory(factory TickerFactory) Option {
	return func(c *Controller) {
		c.newTicker = factory
	}
}

// WithOnUpdate registers a callback invoked after Start and after every applied
// tick. It runs on the poll goroutine and must not block.
func WithOnUpdate(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.onUpdate = fn
	}
}

// WithInterval sets the initial poll interval. Values outside
// constants.WatchIntervals are ignored.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if constants.IsWatchInterval(d) {
			c.interval = d
		}
	}
}

// WithLogger overrides the controller logger
func WithLogger(logger util.LoggerInterface) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller tails the capture backend: it polls consecutive time windows and
// keeps the newest messages in a bounded, de-duplicated Window.
type Controller struct {
	fetcher   Fetcher
	clock     func() time.Time
	newTicker TickerFactory
	onUpdate  func(Snapshot)
	logger    util.LoggerInterface

	mu         sync.Mutex
	window     *Window
	query      Query
	interval   time.Duration
	boundary   time.Time
	running    bool
	closed     bool
	generation uint64
	handle     *Handle
	ticks      int
	lastTick   TickResult
}

// NewController creates a stopped controller polling through fetcher
func NewController(fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:   fetcher,
		clock:     time.Now,
		newTicker: newTimeTicker,
		logger:    util.Named("watch"),
		window:    NewWindow(constants.WatchCapacity),
		interval:  constants.DefaultWatchPeriod,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start clears the buffer, fetches the last WatchLookback of traffic and
// schedules polling at the configured interval.
func (c *Controller) Start(ctx context.Context, q Query) (*Handle, error) {
	q.Scope = strings.TrimSpace(q.Scope)
	if q.Scope == "" {
		return nil, ErrEmptyScope
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrControllerClosed
	}
	if c.running {
		c.mu.Unlock()
		return nil, ErrAlreadyWatching
	}

	c.generation++
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h := &Handle{
		generation: c.generation,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	c.handle = h
	c.running = true
	c.query = Query{Scope: q.Scope, Users: append([]string(nil), q.Users...)}
	c.window.Reset()
	c.boundary = time.Time{}
	c.ticks = 0
	c.lastTick = TickResult{}
	interval := c.interval
	c.mu.Unlock()

	now := c.clock()
	c.poll(ctx, h.generation, now.Add(-constants.WatchLookback), now, true)

	ticker := c.newTicker(interval)
	go c.loop(loopCtx, h, ticker)

	c.logger.Info("watch started",
		util.F("scope", q.Scope),
		util.F("users", strings.Join(q.Users, ",")),
		util.F("interval", util.FormatInterval(interval)))
	return h, nil
}

// Stop cancels the poll timer of h. The buffer is kept.
func (c *Controller) Stop(h *Handle) error {
	c.mu.Lock()
	if h == nil || h != c.handle || !c.running {
		c.mu.Unlock()
		return ErrStaleHandle
	}
	c.running = false
	c.handle = nil
	c.mu.Unlock()

	h.cancelAndWait()
	c.logger.Info("watch stopped", util.F("buffered", c.Len()))
	return nil
}

// Restart stores a new poll interval. While watching it stops and starts again
// with the same query, which clears the buffer and opens a fresh look-back
// window. When stopped it returns a nil handle.
func (c *Controller) Restart(ctx context.Context, interval time.Duration) (*Handle, error) {
	if !constants.IsWatchInterval(interval) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}

	c.mu.Lock()
	c.interval = interval
	running := c.running
	h := c.handle
	q := c.query
	c.mu.Unlock()

	if !running {
		return nil, nil
	}
	if err := c.Stop(h); err != nil {
		return nil, fmt.Errorf("failed to stop watch for restart: %w", err)
	}
	return c.Start(ctx, q)
}

// Close stops the active handle, if any. It is safe to call repeatedly and
// after Stop.
func (c *Controller) Close() {
	c.mu.Lock()
	h := c.handle
	c.handle = nil
	c.running = false
	c.closed = true
	c.mu.Unlock()

	if h != nil {
		h.cancelAndWait()
	}
}

// Running reports whether a watch session is active
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Interval returns the configured poll interval
func (c *Controller) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// Len returns the number of buffered messages
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.window.Len()
}

// Snapshot returns a copy of the controller state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Query:    Query{Scope: c.query.Scope, Users: append([]string(nil), c.query.Users...)},
		Messages: c.window.Messages(),
		Boundary: c.boundary,
		Interval: c.interval,
		Running:  c.running,
		Ticks:    c.ticks,
		LastTick: c.lastTick,
		Capacity: c.window.Capacity(),
	}
}

// loop owns the ticker of one handle. Polls run synchronously, so a tick that
// fires during a slow fetch is dropped by the ticker.
func (c *Controller) loop(ctx context.Context, h *Handle, ticker Ticker) {
	defer close(h.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			c.tick(ctx, h.generation)
		}
	}
}

func (c *Controller) tick(ctx context.Context, generation uint64) {
	c.mu.Lock()
	if generation != c.generation || !c.running {
		c.mu.Unlock()
		return
	}
	from := c.boundary
	c.mu.Unlock()

	c.poll(ctx, generation, from, c.clock(), false)
}

// poll fetches [from, to) and applies the result unless the generation went
// stale while the request was in flight. The boundary advances to `to` even
// when the fetch fails.
func (c *Controller) poll(ctx context.Context, generation uint64, from, to time.Time, initial bool) {
	c.mu.Lock()
	q := c.query
	c.mu.Unlock()

	msgs, err := c.fetcher.FetchWatchWindow(ctx, WindowRequest{
		Scope: q.Scope,
		Users: q.Users,
		Start: from,
		End:   to,
	})

	c.mu.Lock()
	if generation != c.generation || !c.running {
		c.mu.Unlock()
		c.logger.Debug("discarding stale poll result", util.F("generation", generation))
		return
	}

	result := TickResult{At: to, From: from, To: to, Err: err}
	if err != nil {
		c.logger.Warn("watch poll failed", util.Err(err), util.F("from", from), util.F("to", to))
	} else {
		result.Fetched = len(msgs)
		if initial {
			result.Added, result.Evicted = c.window.Replace(msgs)
		} else {
			result.Added, result.Evicted = c.window.Append(msgs)
		}
	}
	c.boundary = to
	c.ticks++
	c.lastTick = result
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if err == nil {
		c.logger.Debug("watch poll applied",
			util.F("fetched", result.Fetched),
			util.F("added", result.Added),
			util.F("evicted", result.Evicted),
			util.F("buffered", len(snap.Messages)))
	}

	if c.onUpdate != nil {
		c.onUpdate(snap)
	}
}
