package live

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/penwyp/go-callflow/internal/core/ladder"
	"github.com/penwyp/go-callflow/internal/core/watch"
	"github.com/penwyp/go-callflow/internal/data/prefs"
	"github.com/penwyp/go-callflow/internal/presentation/display"
	"github.com/penwyp/go-callflow/internal/presentation/interaction"
	"github.com/penwyp/go-callflow/internal/util"
)

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithKeyboard replaces the raw-mode terminal keyboard
func WithKeyboard(input InputHandler) Option {
	return func(o *Orchestrator) {
		o.keyboard = input
	}
}

// WithDisplay replaces the terminal display
func WithDisplay(d DisplayController) Option {
	return func(o *Orchestrator) {
		o.display = d
	}
}

// WithPreferenceMonitor enables hot reload of preferences saved elsewhere
func WithPreferenceMonitor(m PreferenceMonitor) Option {
	return func(o *Orchestrator) {
		o.monitor = m
	}
}

// WithController replaces the live-tail controller
func WithController(c TailController) Option {
	return func(o *Orchestrator) {
		o.controller = c
	}
}

// Orchestrator coordinates all components for the watch command
type Orchestrator struct {
	config *WatchConfig
	store  prefs.Store

	// Core components
	controller   TailController
	stateManager *StateManager

	// UI components
	display  DisplayController
	keyboard InputHandler

	// Monitoring
	monitor PreferenceMonitor

	updates chan struct{}
	logger  util.LoggerInterface
}

// NewOrchestrator creates a new Orchestrator polling through fetcher
func NewOrchestrator(config *WatchConfig, fetcher watch.Fetcher, store prefs.Store, opts ...Option) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := &Orchestrator{
		config:  config,
		store:   store,
		updates: make(chan struct{}, 1),
		logger:  util.Named("live"),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.controller == nil {
		o.controller = watch.NewController(fetcher, watch.WithOnUpdate(o.notify))
	}
	if o.display == nil {
		o.display = display.NewTerminalDisplay(os.Stdout, util.GetTimeProvider())
	}
	return o, nil
}

// notify wakes the event loop after a poll. It never blocks the poll goroutine;
// a pending wake-up already covers the newest snapshot.
func (o *Orchestrator) notify(watch.Snapshot) {
	select {
	case o.updates <- struct{}{}:
	default:
	}
}

// Run starts the orchestrator main loop
func (o *Orchestrator) Run(ctx context.Context) error {
	defer o.Close()

	p, err := prefs.LoadOrDefault(ctx, o.store)
	if err != nil {
		o.logger.Warn("failed to load preferences, using defaults", util.Err(err))
	}
	o.stateManager = NewStateManager(p)

	interval := o.config.Interval
	if interval == 0 {
		interval = p.Interval()
	}
	if _, err := o.controller.Restart(ctx, interval); err != nil {
		return fmt.Errorf("failed to set watch interval: %w", err)
	}

	if o.keyboard == nil {
		keyboard, err := interaction.NewKeyboardReader()
		if err != nil {
			return fmt.Errorf("failed to initialize keyboard: %w", err)
		}
		o.keyboard = keyboard
	}

	o.display.EnterAlternateScreen()
	defer o.display.ExitAlternateScreen()

	h, err := o.controller.Start(ctx, o.config.Query())
	if err != nil {
		return fmt.Errorf("failed to start watch: %w", err)
	}
	o.stateManager.SetHandle(h)
	o.updateDisplay()

	uiTicker := time.NewTicker(o.config.UIRefreshPeriod)
	defer uiTicker.Stop()

	var changes <-chan prefs.Preferences
	if o.monitor != nil {
		changes = o.monitor.Changes()
	}

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("shutting down watch view")
			return nil

		case <-o.updates:
			o.updateDisplay()

		case <-uiTicker.C:
			// Picks up terminal resizes
			o.updateDisplay()

		case p, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			o.handlePreferenceChange(ctx, p)
			o.updateDisplay()

		case event := <-o.keyboard.Events():
			if o.handleKeyboard(ctx, event) {
				return nil
			}
			o.updateDisplay()
		}
	}
}

// handleKeyboard handles keyboard events and reports whether to exit
func (o *Orchestrator) handleKeyboard(ctx context.Context, event interaction.KeyEvent) bool {
	cmd := interaction.Resolve(event)

	switch cmd.Action {
	case interaction.ActionQuit:
		return true
	case interaction.ActionTogglePause:
		o.togglePause(ctx)
	case interaction.ActionSetInterval:
		o.setInterval(ctx, cmd.Interval)
	case interaction.ActionNone:
	default:
		if key, ok := cmd.Action.PreferenceKey(); ok {
			o.toggle(ctx, key)
		}
	}
	return false
}

func (o *Orchestrator) togglePause(ctx context.Context) {
	if h := o.stateManager.GetHandle(); h != nil {
		err := o.controller.Stop(h)
		o.stateManager.SetLastError(err)
		if err != nil {
			o.logger.Warn("failed to pause watch", util.Err(err))
			// The handle is only dropped once nothing is polling
			if o.controller.Snapshot().Running {
				return
			}
		}
		o.stateManager.SetHandle(nil)
		return
	}

	h, err := o.controller.Start(ctx, o.config.Query())
	o.stateManager.SetLastError(err)
	if err != nil {
		o.logger.Error("failed to resume watch", util.Err(err))
		return
	}
	o.stateManager.SetHandle(h)
}

// setInterval restarts polling at d and persists it
func (o *Orchestrator) setInterval(ctx context.Context, d time.Duration) {
	if !o.restart(ctx, d) {
		return
	}
	p, _ := o.stateManager.UpdatePreferences(func(p *prefs.Preferences) error {
		*p = p.WithInterval(d)
		return nil
	})
	o.persist(ctx, p)
}

// restart applies a new interval. While paused only the interval is stored.
func (o *Orchestrator) restart(ctx context.Context, d time.Duration) bool {
	h, err := o.controller.Restart(ctx, d)
	if err != nil {
		o.logger.Error("failed to change watch interval", util.Err(err), util.F("interval", d))
		o.stateManager.SetLastError(err)
		return false
	}
	if h != nil {
		o.stateManager.SetHandle(h)
	}
	return true
}

func (o *Orchestrator) toggle(ctx context.Context, key string) {
	p, err := o.stateManager.UpdatePreferences(func(p *prefs.Preferences) error {
		_, err := p.Toggle(key)
		return err
	})
	if err != nil {
		o.logger.Warn("failed to toggle preference", util.Err(err), util.F("key", key))
		return
	}
	o.persist(ctx, p)
}

func (o *Orchestrator) persist(ctx context.Context, p prefs.Preferences) {
	if o.monitor != nil {
		o.monitor.Acknowledge(p)
	}
	err := o.store.Save(ctx, p)
	o.stateManager.SetLastError(err)
	if err != nil {
		o.logger.Error("failed to save preferences", util.Err(err))
	}
}

// handlePreferenceChange adopts preferences saved by another process. A new
// interval restarts the active session.
func (o *Orchestrator) handlePreferenceChange(ctx context.Context, p prefs.Preferences) {
	previous := o.stateManager.GetPreferences()
	o.stateManager.SetPreferences(p)
	o.logger.Debug("preferences reloaded")

	if p.Interval() != previous.Interval() {
		o.restart(ctx, p.Interval())
	}
}

// updateDisplay renders the newest controller snapshot
func (o *Orchestrator) updateDisplay() {
	snap := o.controller.Snapshot()
	p := o.stateManager.GetPreferences()

	frame := o.frame(snap, p)

	status := display.WatchStatus{
		Scope:     snap.Query.Scope,
		Users:     snap.Query.Users,
		Interval:  snap.Interval,
		Boundary:  snap.Boundary,
		Buffered:  len(snap.Messages),
		Capacity:  snap.Capacity,
		Running:   snap.Running,
		LastError: o.stateManager.GetLastError(),
		Toggles:   togglesLabel(p),
	}
	if snap.LastTick.Failed() {
		status.LastError = snap.LastTick.Err.Error()
	}

	o.display.RenderWatch(status, frame, o.config.Color)
}

func (o *Orchestrator) frame(snap watch.Snapshot, p prefs.Preferences) ladder.Frame {
	tl := snap.Timeline()
	return ladder.Compute(tl.Columns(), tl.Messages, p.Options(tl.SessionIDs))
}

func togglesLabel(p prefs.Preferences) string {
	var on []string
	if p.ShowIndex {
		on = append(on, "index")
	}
	if p.RelativeTime {
		on = append(on, "relative")
	}
	if p.ShowEndpointNames {
		on = append(on, "names")
	}
	if p.ColorBySession {
		on = append(on, "colors")
	}
	return strings.Join(on, ",")
}

// Close cleans up all resources
func (o *Orchestrator) Close() error {
	o.controller.Close()

	var errs []string
	if o.keyboard != nil {
		if err := o.keyboard.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if o.monitor != nil {
		if err := o.monitor.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close watch view: %s", strings.Join(errs, "; "))
	}
	return nil
}
