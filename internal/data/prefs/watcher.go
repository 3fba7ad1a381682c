package prefs

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-callflow/internal/util"
)

// Watcher reloads preferences when their backing file changes on disk, so
// edits made by another process (`callflow prefs set`) reach a running view.
// Only values that differ from the last delivered ones are emitted.
type Watcher struct {
	watcher *fsnotify.Watcher
	store   Store
	names   map[string]struct{}
	changes chan Preferences
	logger  util.LoggerInterface

	mu   sync.Mutex
	last Preferences
	done chan struct{}
	once sync.Once
}

// NewWatcher watches the directory holding path. Events for path and its
// SQLite journal files trigger a reload from store.
func NewWatcher(path string, store Store, initial Preferences) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	base := filepath.Base(path)
	w := &Watcher{
		watcher: fsw,
		store:   store,
		names: map[string]struct{}{
			base:          {},
			base + "-wal": {},
			base + "-shm": {},
		},
		changes: make(chan Preferences, 8),
		logger:  util.Named("prefs"),
		last:    initial,
		done:    make(chan struct{}),
	}

	go w.processEvents()
	return w, nil
}

// Changes delivers reloaded preferences
func (w *Watcher) Changes() <-chan Preferences {
	return w.changes
}

// Close stops watching; Changes is closed afterwards
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

// Acknowledge records p as already known, so writes made by this process do
// not come back as changes
func (w *Watcher) Acknowledge(p Preferences) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = p
}

func (w *Watcher) processEvents() {
	defer close(w.done)
	defer close(w.changes)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("preferences watch error", util.Err(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".preferences-") {
		return false
	}
	_, ok := w.names[name]
	return ok
}

func (w *Watcher) reload() {
	p, err := w.store.Load(context.Background())
	if err != nil {
		w.logger.Debug("preferences reload skipped", util.Err(err))
		return
	}

	w.mu.Lock()
	if p == w.last {
		w.mu.Unlock()
		return
	}
	w.last = p
	w.mu.Unlock()

	w.logger.Info("preferences reloaded", util.F("interval", util.FormatInterval(p.Interval())))
	select {
	case w.changes <- p:
	default:
		w.logger.Warn("dropping preferences change, consumer is behind")
	}
}
