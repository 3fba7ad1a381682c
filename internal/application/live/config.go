package live

import (
	"fmt"
	"strings"
	"time"

	"github.com/penwyp/go-callflow/internal/core/constants"
	"github.com/penwyp/go-callflow/internal/core/watch"
)

// WatchConfig contains configuration for the watch command
type WatchConfig struct {
	// Traffic selection
	Scope string
	Users []string

	// Poll interval; zero uses the stored preference
	Interval time.Duration

	// Display settings
	Color           bool
	UIRefreshPeriod time.Duration
}

// Validate checks if the configuration is valid and fills defaults
func (c *WatchConfig) Validate() error {
	c.Scope = strings.TrimSpace(c.Scope)
	if c.Scope == "" {
		return watch.ErrEmptyScope
	}

	users := make([]string, 0, len(c.Users))
	for _, u := range c.Users {
		if u = strings.TrimSpace(u); u != "" {
			users = append(users, u)
		}
	}
	c.Users = users

	if c.Interval != 0 && !constants.IsWatchInterval(c.Interval) {
		return fmt.Errorf("%w: %s", watch.ErrInvalidInterval, c.Interval)
	}
	if c.UIRefreshPeriod == 0 {
		c.UIRefreshPeriod = time.Second
	}
	return nil
}

// Query returns the watch query described by the configuration
func (c *WatchConfig) Query() watch.Query {
	return watch.Query{Scope: c.Scope, Users: c.Users}
}
