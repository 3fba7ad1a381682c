package live

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/penwyp/go-callflow/internal/core/ladder"
	"github.com/penwyp/go-callflow/internal/core/model"
	"github.com/penwyp/go-callflow/internal/core/watch"
	"github.com/penwyp/go-callflow/internal/data/prefs"
	"github.com/penwyp/go-callflow/internal/presentation/display"
	"github.com/penwyp/go-callflow/internal/presentation/interaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	p       *prefs.Preferences
	saveErr error
}

func (s *memoryStore) Load(ctx context.Context) (prefs.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.p == nil {
		return prefs.Preferences{}, prefs.ErrNotFound
	}
	return *s.p, nil
}

func (s *memoryStore) Save(ctx context.Context, p prefs.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.p = &p
	return nil
}

func (s *memoryStore) Close() error { return nil }

func (s *memoryStore) saved() (prefs.Preferences, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.p == nil {
		return prefs.Preferences{}, false
	}
	return *s.p, true
}

type fakeKeyboard struct {
	events chan interaction.KeyEvent
	closed atomic.Bool
}

func newFakeKeyboard() *fakeKeyboard {
	return &fakeKeyboard{events: make(chan interaction.KeyEvent)}
}

func (k *fakeKeyboard) Events() <-chan interaction.KeyEvent { return k.events }

func (k *fakeKeyboard) Close() error {
	k.closed.Store(true)
	return nil
}

func (k *fakeKeyboard) press(t *testing.T, key rune) {
	t.Helper()
	select {
	case k.events <- interaction.KeyEvent{Key: key, Type: interaction.KeyChar}:
	case <-time.After(5 * time.Second):
		t.Fatalf("key %q was not consumed", key)
	}
}

type recordingDisplay struct {
	mu       sync.Mutex
	entered  bool
	exited   bool
	statuses []display.WatchStatus
	frames   []ladder.Frame
}

func (d *recordingDisplay) EnterAlternateScreen() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entered = true
}

func (d *recordingDisplay) ExitAlternateScreen() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.exited = true
}

func (d *recordingDisplay) RenderWatch(status display.WatchStatus, frame ladder.Frame, color bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses = append(d.statuses, status)
	d.frames = append(d.frames, frame)
}

func (d *recordingDisplay) last() (display.WatchStatus, ladder.Frame) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.statuses[len(d.statuses)-1], d.frames[len(d.frames)-1]
}

type fakeMonitor struct {
	changes chan prefs.Preferences
	mu      sync.Mutex
	acked   []prefs.Preferences
	closed  bool
}

func (m *fakeMonitor) Changes() <-chan prefs.Preferences { return m.changes }

func (m *fakeMonitor) Acknowledge(p prefs.Preferences) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, p)
}

func (m *fakeMonitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type countingFetcher struct {
	calls atomic.Int32
}

func (f *countingFetcher) FetchWatchWindow(ctx context.Context, req watch.WindowRequest) ([]model.Message, error) {
	n := f.calls.Add(1)
	return []model.Message{{
		ID:  int64(n),
		Raw: "OPTIONS sip:probe@example.com SIP/2.0",
		ProtocolHeader: model.ProtocolHeader{
			SrcIP:       "10.0.0.1",
			DstIP:       "10.0.0.2",
			TimeSeconds: req.End.Unix() - 1,
		},
	}}, nil
}

type harness struct {
	orchestrator *Orchestrator
	store        *memoryStore
	keys         *fakeKeyboard
	display      *recordingDisplay
	fetcher      *countingFetcher
	done         chan error
}

func startHarness(t *testing.T, cfg *WatchConfig, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		store:   &memoryStore{},
		keys:    newFakeKeyboard(),
		display: &recordingDisplay{},
		fetcher: &countingFetcher{},
		done:    make(chan error, 1),
	}
	opts = append([]Option{WithKeyboard(h.keys), WithDisplay(h.display)}, opts...)

	o, err := NewOrchestrator(cfg, h.fetcher, h.store, opts...)
	require.NoError(t, err)
	h.orchestrator = o

	go func() {
		h.done <- o.Run(context.Background())
	}()
	return h
}

func (h *harness) quit(t *testing.T) {
	t.Helper()
	h.keys.press(t, 'q')
	select {
	case err := <-h.done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("orchestrator did not exit")
	}
}

func TestOrchestrator_KeysPersistPreferences(t *testing.T) {
	h := startHarness(t, &WatchConfig{Scope: "example.com"})

	h.keys.press(t, '3')
	h.keys.press(t, 'i')
	h.keys.press(t, 'c')
	h.quit(t)

	saved, ok := h.store.saved()
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, saved.Interval())
	assert.True(t, saved.ShowIndex)
	assert.True(t, saved.ColorBySession)
	assert.False(t, saved.RelativeTime)

	// Initial start plus the restart for the new interval
	assert.Equal(t, int32(2), h.fetcher.calls.Load())

	status, frame := h.display.last()
	assert.Equal(t, 30*time.Second, status.Interval)
	assert.Equal(t, "index,colors", status.Toggles)
	require.Len(t, frame.Rows, 1)
	assert.Equal(t, "[1] OPTIONS", frame.Rows[0].Label)

	assert.True(t, h.display.entered)
	assert.True(t, h.display.exited)
	assert.True(t, h.keys.closed.Load())
}

func TestOrchestrator_PauseAndResume(t *testing.T) {
	h := startHarness(t, &WatchConfig{Scope: "example.com", Interval: 5 * time.Second})

	h.keys.press(t, 'p')
	h.keys.press(t, 'x') // ignored key, forces a render
	status, frame := h.display.last()
	assert.False(t, status.Running)
	assert.Len(t, frame.Rows, 1, "pausing keeps the buffer")

	h.keys.press(t, 'p')
	h.keys.press(t, 'x')
	status, _ = h.display.last()
	assert.True(t, status.Running)
	assert.Equal(t, 5*time.Second, status.Interval)
	h.quit(t)

	assert.Equal(t, int32(2), h.fetcher.calls.Load())
	_, saved := h.store.saved()
	assert.False(t, saved, "pausing does not touch preferences")
}

type flakyStopController struct {
	*watch.Controller
	stops atomic.Int32
}

func (c *flakyStopController) Stop(h *watch.Handle) error {
	if c.stops.Add(1) == 1 {
		return watch.ErrStaleHandle
	}
	return c.Controller.Stop(h)
}

func TestOrchestrator_FailedPauseKeepsHandle(t *testing.T) {
	ctrl := &flakyStopController{Controller: watch.NewController(&countingFetcher{})}
	h := startHarness(t, &WatchConfig{Scope: "example.com"}, WithController(ctrl))

	h.keys.press(t, 'p')
	h.keys.press(t, 'x')
	status, _ := h.display.last()
	assert.True(t, status.Running)
	assert.Contains(t, status.LastError, watch.ErrStaleHandle.Error())

	h.keys.press(t, 'p')
	h.keys.press(t, 'x')
	status, _ = h.display.last()
	assert.False(t, status.Running, "the kept handle still pauses the watch")
	assert.Empty(t, status.LastError)
	h.quit(t)

	assert.Equal(t, int32(2), ctrl.stops.Load())
}

func TestOrchestrator_IntervalWhilePaused(t *testing.T) {
	h := startHarness(t, &WatchConfig{Scope: "example.com"})

	h.keys.press(t, 'p')
	h.keys.press(t, '4')
	h.keys.press(t, 'x')
	status, _ := h.display.last()
	assert.False(t, status.Running)
	assert.Equal(t, time.Minute, status.Interval)
	h.quit(t)

	assert.Equal(t, int32(1), h.fetcher.calls.Load())
	saved, ok := h.store.saved()
	require.True(t, ok)
	assert.Equal(t, time.Minute, saved.Interval())
}

func TestOrchestrator_UsesStoredInterval(t *testing.T) {
	store := &memoryStore{}
	stored := prefs.Defaults().WithInterval(30 * time.Second)
	stored.RelativeTime = true
	store.p = &stored

	keys := newFakeKeyboard()
	disp := &recordingDisplay{}
	o, err := NewOrchestrator(&WatchConfig{Scope: "example.com"}, &countingFetcher{}, store,
		WithKeyboard(keys), WithDisplay(disp))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background()) }()

	keys.press(t, 'x')
	status, frame := disp.last()
	assert.Equal(t, 30*time.Second, status.Interval)
	assert.Equal(t, "relative", status.Toggles)
	require.Len(t, frame.Rows, 1)
	assert.Equal(t, "00", frame.Rows[0].Timestamp)

	keys.events <- interaction.KeyEvent{Key: 27, Type: interaction.KeyEscape}
	require.NoError(t, <-done)
}

func TestOrchestrator_ExternalPreferenceChange(t *testing.T) {
	monitor := &fakeMonitor{changes: make(chan prefs.Preferences)}
	h := startHarness(t, &WatchConfig{Scope: "example.com"}, WithPreferenceMonitor(monitor))

	h.keys.press(t, 'n')

	changed := prefs.Defaults().WithInterval(5 * time.Second)
	changed.ShowIndex = true
	select {
	case monitor.changes <- changed:
	case <-time.After(5 * time.Second):
		t.Fatal("preference change was not consumed")
	}
	h.keys.press(t, 'x')

	status, _ := h.display.last()
	assert.Equal(t, 5*time.Second, status.Interval)
	assert.Equal(t, "index", status.Toggles)
	h.quit(t)

	assert.Equal(t, int32(2), h.fetcher.calls.Load())

	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	require.Len(t, monitor.acked, 1)
	assert.True(t, monitor.acked[0].ShowEndpointNames)
	assert.True(t, monitor.closed)
}

func TestOrchestrator_SaveFailureShownInStatus(t *testing.T) {
	h := startHarness(t, &WatchConfig{Scope: "example.com"})
	h.store.mu.Lock()
	h.store.saveErr = errors.New("disk full")
	h.store.mu.Unlock()

	h.keys.press(t, 'r')
	h.keys.press(t, 'x')
	status, _ := h.display.last()
	assert.Equal(t, "disk full", status.LastError)
	assert.Equal(t, "relative", status.Toggles)
	h.quit(t)
}

func TestOrchestrator_ContextCancel(t *testing.T) {
	keys := newFakeKeyboard()
	o, err := NewOrchestrator(&WatchConfig{Scope: "example.com"}, &countingFetcher{}, &memoryStore{},
		WithKeyboard(keys), WithDisplay(&recordingDisplay{}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()

	keys.press(t, 'x')
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("orchestrator ignored cancellation")
	}
	assert.True(t, keys.closed.Load())
}

func TestWatchConfig_Validate(t *testing.T) {
	cfg := &WatchConfig{Scope: "  example.com ", Users: []string{"alice", " ", "bob "}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "example.com", cfg.Scope)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Users)
	assert.Equal(t, time.Second, cfg.UIRefreshPeriod)
	assert.Equal(t, watch.Query{Scope: "example.com", Users: []string{"alice", "bob"}}, cfg.Query())

	assert.ErrorIs(t, (&WatchConfig{Scope: " "}).Validate(), watch.ErrEmptyScope)
	assert.ErrorIs(t, (&WatchConfig{Scope: "a", Interval: 7 * time.Second}).Validate(), watch.ErrInvalidInterval)

	_, err := NewOrchestrator(&WatchConfig{}, &countingFetcher{}, &memoryStore{})
	assert.ErrorIs(t, err, watch.ErrEmptyScope)
}

func TestStateManager(t *testing.T) {
	sm := NewStateManager(prefs.Defaults())

	p, err := sm.UpdatePreferences(func(p *prefs.Preferences) error {
		_, err := p.Toggle("index")
		return err
	})
	require.NoError(t, err)
	assert.True(t, p.ShowIndex)
	assert.True(t, sm.GetPreferences().ShowIndex)

	_, err = sm.UpdatePreferences(func(p *prefs.Preferences) error {
		p.ShowIndex = false
		return errors.New("rejected")
	})
	require.Error(t, err)
	assert.True(t, sm.GetPreferences().ShowIndex, "failed update leaves state unchanged")

	sm.SetLastError(errors.New("boom"))
	assert.Equal(t, "boom", sm.GetLastError())
	sm.SetLastError(nil)
	assert.Empty(t, sm.GetLastError())
}
