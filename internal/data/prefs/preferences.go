package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/go-callflow/internal/core/constants"
	"github.com/penwyp/go-callflow/internal/core/ladder"
)

// ErrNotFound is returned by Store.Load when nothing has been saved yet
var ErrNotFound = errors.New("preferences not found")

// Preferences are the persisted view toggles of the call-flow ladder
type Preferences struct {
	ShowIndex         bool `json:"showIndex"`
	RelativeTime      bool `json:"showRelativeTimestamp"`
	ShowEndpointNames bool `json:"showIpNames"`
	ColorBySession    bool `json:"showCallColors"`
	// Poll interval of the watch view in milliseconds
	RefreshIntervalMS int64 `json:"refreshIntervalMs"`
}

// Defaults returns the preferences used before anything is saved
func Defaults() Preferences {
	return Preferences{
		RefreshIntervalMS: constants.DefaultWatchPeriod.Milliseconds(),
	}
}

// Interval returns the watch poll interval, falling back to the default for
// unsupported values
func (p Preferences) Interval() time.Duration {
	d := time.Duration(p.RefreshIntervalMS) * time.Millisecond
	if !constants.IsWatchInterval(d) {
		return constants.DefaultWatchPeriod
	}
	return d
}

// WithInterval returns a copy with the poll interval set
func (p Preferences) WithInterval(d time.Duration) Preferences {
	p.RefreshIntervalMS = d.Milliseconds()
	return p
}

// Options converts the preferences into layout options for the given sessions
func (p Preferences) Options(sessionIDs []string) ladder.Options {
	return ladder.Options{
		ShowIndex:         p.ShowIndex,
		RelativeTime:      p.RelativeTime,
		ShowEndpointNames: p.ShowEndpointNames,
		ColorBySession:    p.ColorBySession,
		SessionIDs:        sessionIDs,
	}
}

// Keys lists the names accepted by Set, in display order
var Keys = []string{"index", "relative", "names", "colors", "interval"}

// Set updates one preference from its textual form
func (p *Preferences) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	var target *bool
	switch key {
	case "index", "show-index", "showindex":
		target = &p.ShowIndex
	case "relative", "relative-time", "showrelativetimestamp":
		target = &p.RelativeTime
	case "names", "endpoint-names", "showipnames":
		target = &p.ShowEndpointNames
	case "colors", "colours", "session-colors", "showcallcolors":
		target = &p.ColorBySession
	case "interval", "refresh", "refreshintervalms":
		d, err := parseInterval(value)
		if err != nil {
			return err
		}
		p.RefreshIntervalMS = d.Milliseconds()
		return nil
	default:
		return fmt.Errorf("unknown preference %q (valid: %s)", key, strings.Join(Keys, ", "))
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: expected true or false", value, key)
	}
	*target = b
	return nil
}

// Get returns the textual form of one preference
func (p Preferences) Get(key string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "index":
		return strconv.FormatBool(p.ShowIndex), nil
	case "relative":
		return strconv.FormatBool(p.RelativeTime), nil
	case "names":
		return strconv.FormatBool(p.ShowEndpointNames), nil
	case "colors":
		return strconv.FormatBool(p.ColorBySession), nil
	case "interval":
		return p.Interval().String(), nil
	}
	return "", fmt.Errorf("unknown preference %q", key)
}

// Toggle flips one boolean preference and returns the new value
func (p *Preferences) Toggle(key string) (bool, error) {
	if key == "interval" {
		return false, fmt.Errorf("interval cannot be toggled")
	}
	current, err := p.Get(key)
	if err != nil {
		return false, err
	}
	next := current != "true"
	if err := p.Set(key, strconv.FormatBool(next)); err != nil {
		return false, err
	}
	return next, nil
}

// parseInterval accepts durations ("30s", "1m") and bare seconds ("30")
func parseInterval(value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		secs, convErr := strconv.Atoi(value)
		if convErr != nil {
			return 0, fmt.Errorf("invalid interval %q: %w", value, err)
		}
		d = time.Duration(secs) * time.Second
	}
	if !constants.IsWatchInterval(d) {
		return 0, fmt.Errorf("invalid interval %s: must be one of 5s, 10s, 30s, 1m", d)
	}
	return d, nil
}

// Store persists preferences
type Store interface {
	Load(ctx context.Context) (Preferences, error)
	Save(ctx context.Context, p Preferences) error
	Close() error
}

// LoadOrDefault loads stored preferences, returning Defaults when none exist
func LoadOrDefault(ctx context.Context, store Store) (Preferences, error) {
	p, err := store.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return Defaults(), err
	}
	return p, nil
}
