package ladder

import (
	"github.com/penwyp/go-callflow/internal/core/palette"
)

// LoopSide tells on which side of its column a self-message loop is drawn
type LoopSide string

const (
	LoopNone  LoopSide = ""
	LoopLeft  LoopSide = "left"
	LoopRight LoopSide = "right"
)

// Options are the display toggles that shape a frame
type Options struct {
	ShowIndex         bool     // Prefix labels with "[n] "
	RelativeTime      bool     // Show offsets from the first row instead of wall time
	ShowEndpointNames bool     // Use backend display names as column labels
	ColorBySession    bool     // Colour rows by session when more than one is shown
	SessionIDs        []string // Ordered session ids used for colour assignment
}

// Column is one endpoint of the ladder
type Column struct {
	Index    int     `json:"index"`
	Address  string  `json:"address"`
	Label    string  `json:"label"`
	Position float64 `json:"position"` // Normalised horizontal position in (0, 1)
}

// Row is the geometry of one message
type Row struct {
	Index       int           `json:"index"`
	MessageID   int64         `json:"message_id"`
	SessionID   string        `json:"session_id"`
	SrcIndex    int           `json:"src_index"` // -1 when the source is not a column
	DstIndex    int           `json:"dst_index"` // -1 when the destination is not a column
	Placed      bool          `json:"placed"`
	LineStart   float64       `json:"line_start"`
	LineEnd     float64       `json:"line_end"`
	Width       float64       `json:"width"`
	RightToLeft bool          `json:"right_to_left"`
	SelfLoop    bool          `json:"self_loop"`
	LoopSide    LoopSide      `json:"loop_side,omitempty"`
	Arrowheads  []int         `json:"arrowheads"`
	Label       string        `json:"label"`
	Timestamp   string        `json:"timestamp"`
	TimestampMS float64       `json:"timestamp_ms"`
	Color       palette.Color `json:"color"`
}

// Frame is the full ladder geometry for one render
type Frame struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// IsEmpty reports whether the frame has no rows to draw
func (f Frame) IsEmpty() bool {
	return len(f.Rows) == 0
}
