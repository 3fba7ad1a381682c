package flow

import (
	"fmt"
	"strings"

	"github.com/penwyp/go-callflow/internal/presentation/formatter"
)

// FlowConfig contains configuration for the flow command
type FlowConfig struct {
	// Sessions to merge, in display order
	SessionIDs []string

	// Offline replay file; "-" reads stdin. Empty means the backend is queried.
	InputFile string

	// Output settings
	Output string // ladder, table, json, csv
	Width  int
	Color  bool
}

// Validate checks if the configuration is valid and fills defaults
func (c *FlowConfig) Validate() error {
	cleaned := make([]string, 0, len(c.SessionIDs))
	for _, sid := range c.SessionIDs {
		if sid = strings.TrimSpace(sid); sid != "" {
			cleaned = append(cleaned, sid)
		}
	}
	c.SessionIDs = cleaned

	if len(c.SessionIDs) == 0 && c.InputFile == "" {
		return fmt.Errorf("at least one session id or an input file is required")
	}
	if c.Output == "" {
		c.Output = formatter.FormatLadder
	}
	if c.Width <= 0 {
		c.Width = 100
	}
	return nil
}
