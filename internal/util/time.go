package util

import (
	"fmt"
	"sync"
	"time"
)

// TimeProvider renders wall-clock times in the user's display timezone.
// Ladder timestamps are always UTC; the provider only serves status lines.
type TimeProvider struct {
	location *time.Location
	clock    func() time.Time
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	timeMu             sync.Mutex
)

// NewTimeProvider creates a provider for the named timezone
func NewTimeProvider(timezone string) (*TimeProvider, error) {
	tp := &TimeProvider{clock: time.Now}
	if err := tp.SetTimezone(timezone); err != nil {
		return nil, err
	}
	return tp, nil
}

// InitializeTimeProvider replaces the global provider. The previous provider is
// kept when timezone cannot be loaded.
func InitializeTimeProvider(timezone string) error {
	provider, err := NewTimeProvider(timezone)
	if err != nil {
		return err
	}

	timeMu.Lock()
	defer timeMu.Unlock()
	globalTimeProvider = provider
	return nil
}

// GetTimeProvider returns the global provider, defaulting to the local timezone
func GetTimeProvider() *TimeProvider {
	timeMu.Lock()
	defer timeMu.Unlock()
	if globalTimeProvider == nil {
		globalTimeProvider, _ = NewTimeProvider("Local")
	}
	return globalTimeProvider
}

// SetTimezone updates the display timezone
func (tp *TimeProvider) SetTimezone(timezone string) error {
	loc := time.Local
	switch timezone {
	case "", "Local":
	case "UTC":
		loc = time.UTC
	default:
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, Europe/Berlin, America/Sao_Paulo", timezone, err)
		}
		loc = l
	}

	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.location = loc
	return nil
}

// SetClock overrides the source of the current time
func (tp *TimeProvider) SetClock(clock func() time.Time) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.clock = clock
}

// Location returns the display timezone
func (tp *TimeProvider) Location() *time.Location {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.location
}

// Now returns the current time in the display timezone
func (tp *TimeProvider) Now() time.Time {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.clock().In(tp.location)
}

// Format formats t in the display timezone
func (tp *TimeProvider) Format(t time.Time, layout string) string {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return t.In(tp.location).Format(layout)
}

// Clock formats t as a time of day, or "--:--:--" for the zero time
func (tp *TimeProvider) Clock(t time.Time) string {
	if t.IsZero() {
		return "--:--:--"
	}
	return tp.Format(t, "15:04:05")
}
