package live

import (
	"sync"

	"github.com/penwyp/go-callflow/internal/core/watch"
	"github.com/penwyp/go-callflow/internal/data/prefs"
)

// StateManager manages watch view state in a thread-safe manner
type StateManager struct {
	mu sync.RWMutex

	preferences prefs.Preferences
	handle      *watch.Handle

	// Last error that is not a poll failure, e.g. a failed save
	lastError string
}

// NewStateManager creates a new StateManager instance
func NewStateManager(p prefs.Preferences) *StateManager {
	return &StateManager{preferences: p}
}

// GetPreferences returns the current preferences
func (sm *StateManager) GetPreferences() prefs.Preferences {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.preferences
}

// SetPreferences replaces the current preferences
func (sm *StateManager) SetPreferences(p prefs.Preferences) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.preferences = p
}

// UpdatePreferences applies updateFunc to the preferences and returns the result
func (sm *StateManager) UpdatePreferences(updateFunc func(*prefs.Preferences) error) (prefs.Preferences, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	next := sm.preferences
	if err := updateFunc(&next); err != nil {
		return sm.preferences, err
	}
	sm.preferences = next
	return next, nil
}

// GetHandle returns the handle of the active watch session, if any
func (sm *StateManager) GetHandle() *watch.Handle {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.handle
}

// SetHandle stores the handle of the active watch session
func (sm *StateManager) SetHandle(h *watch.Handle) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.handle = h
}

// GetLastError returns the last non-poll error message
func (sm *StateManager) GetLastError() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.lastError
}

// SetLastError records err, or clears it when err is nil
func (sm *StateManager) SetLastError(err error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if err == nil {
		sm.lastError = ""
		return
	}
	sm.lastError = err.Error()
}
