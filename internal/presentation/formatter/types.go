package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-callflow/internal/core/ladder"
)

// Formatter writes a ladder frame in one output format
type Formatter interface {
	Format(w io.Writer, frame ladder.Frame) error
}

// Supported output formats
const (
	FormatLadder = "ladder"
	FormatTable  = "table"
	FormatJSON   = "json"
	FormatCSV    = "csv"
)

// Names lists the supported output formats
var Names = []string{FormatLadder, FormatTable, FormatJSON, FormatCSV}

// Options tune the text formatters
type Options struct {
	Width int  // Terminal width for the ladder format
	Color bool // Emit ANSI colours in the ladder format
}

// New returns the formatter registered under name
func New(name string, opts Options) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FormatLadder:
		return NewLadderFormatter(opts.Width, opts.Color), nil
	case FormatTable:
		return NewTableFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatCSV:
		return NewCSVFormatter(), nil
	}
	return nil, fmt.Errorf("unsupported output format %q (valid: %s)", name, strings.Join(Names, ", "))
}

// endpointLabel returns the label of column i, or "?" for a missing endpoint
func endpointLabel(frame ladder.Frame, i int) string {
	if i < 0 || i >= len(frame.Columns) {
		return "?"
	}
	return frame.Columns[i].Label
}

func direction(row ladder.Row) string {
	switch {
	case !row.Placed:
		return ""
	case row.SelfLoop:
		return "self"
	case row.RightToLeft:
		return "left"
	default:
		return "right"
	}
}
