package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/penwyp/go-callflow/internal/core/ladder"
	"github.com/penwyp/go-callflow/internal/util"
)

const (
	// NoMessages is rendered in place of an empty ladder
	NoMessages = "No messages"

	minColumnGap = 6
)

// LadderRenderer draws a ladder frame as text. Each message takes two lines:
// the timestamp and label, then the arrow.
type LadderRenderer struct {
	width int
	color bool
}

// NewLadderRenderer creates a renderer for the given terminal width.
// With color disabled no ANSI sequences are emitted.
func NewLadderRenderer(width int, color bool) *LadderRenderer {
	return &LadderRenderer{width: width, color: color}
}

// Render writes the frame to w
func (r *LadderRenderer) Render(w io.Writer, frame ladder.Frame) error {
	for _, line := range r.Lines(frame) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Lines returns the header line followed by two lines per row
func (r *LadderRenderer) Lines(frame ladder.Frame) []string {
	if frame.IsEmpty() {
		return []string{NoMessages}
	}

	g := r.layout(frame)
	lines := make([]string, 0, 1+2*len(frame.Rows))
	lines = append(lines, g.header(frame.Columns))
	for _, row := range frame.Rows {
		label, arrow := g.row(row, r.color)
		lines = append(lines, label, arrow)
	}
	return lines
}

// Tail returns the header and as many of the latest rows as fit in maxLines
func (r *LadderRenderer) Tail(frame ladder.Frame, maxLines int) []string {
	lines := r.Lines(frame)
	if len(lines) <= maxLines || maxLines < 3 {
		return lines
	}
	rows := (maxLines - 1) / 2
	return append([]string{lines[0]}, lines[len(lines)-2*rows:]...)
}

// grid holds the horizontal geometry of one frame
type grid struct {
	gutter  int   // Timestamp gutter width, excluding the separating space
	area    int   // Drawing area width
	columns []int // Lifeline x per column, relative to the drawing area
	gap     int   // Distance between neighbouring lifelines
}

func (r *LadderRenderer) layout(frame ladder.Frame) grid {
	g := grid{gutter: 2}
	for _, row := range frame.Rows {
		g.gutter = max(g.gutter, runewidth.StringWidth(row.Timestamp))
	}

	n := len(frame.Columns)
	g.area = max(r.width-g.gutter-1, (n+1)*minColumnGap)
	g.gap = g.area / (n + 1)
	g.columns = make([]int, n)
	for i, col := range frame.Columns {
		g.columns[i] = min(int(col.Position*float64(g.area)), g.area-1)
	}
	return g
}

func (g grid) prefix(timestamp string) string {
	return util.PadRight(timestamp, g.gutter) + " "
}

func (g grid) lifelines() *canvas {
	c := newCanvas(g.area)
	for _, x := range g.columns {
		c.put(x, '|')
	}
	return c
}

func (g grid) header(columns []ladder.Column) string {
	c := newCanvas(g.area)
	span := max(g.gap-1, 3)
	for i, col := range columns {
		label := util.Truncate(col.Label, span)
		w := runewidth.StringWidth(label)
		c.text(g.columns[i]-w/2, label, w)
	}
	return strings.TrimRight(g.prefix("")+c.String(), " ")
}

// row renders the label line and the arrow line of one message
func (g grid) row(row ladder.Row, color bool) (string, string) {
	labelLine := g.lifelines()
	arrowLine := g.lifelines()
	ansi := ""
	if color {
		ansi = row.Color.ANSI
	}

	switch {
	case !row.Placed:
		labelLine.centre(0, g.area, "? "+row.Label)
		labelLine.colorize(0, g.area-1, ansi)

	case row.SelfLoop:
		x := g.columns[row.SrcIndex]
		span := max(g.gap-1, 3)
		if row.LoopSide == ladder.LoopLeft {
			labelLine.centre(x-span, span, row.Label)
			labelLine.colorize(x-span, x-1, ansi)
			arrowLine.text(x-3, "└->", 3)
			arrowLine.colorize(x-3, x-1, ansi)
		} else {
			labelLine.centre(x+1, span, row.Label)
			labelLine.colorize(x+1, x+span, ansi)
			arrowLine.text(x+1, "<-┘", 3)
			arrowLine.colorize(x+1, x+3, ansi)
		}

	default:
		src, dst := g.columns[row.SrcIndex], g.columns[row.DstIndex]
		lo, hi := min(src, dst), max(src, dst)
		labelLine.centre(lo+1, hi-lo-1, row.Label)
		labelLine.colorize(lo+1, hi-1, ansi)

		for x := lo + 1; x < hi; x++ {
			arrowLine.put(x, '-')
		}
		head := '>'
		if row.RightToLeft {
			head = '<'
		}
		for _, k := range row.Arrowheads {
			arrowLine.put(g.columns[k], head)
		}
		if row.RightToLeft {
			arrowLine.put(dst+1, head)
		} else {
			arrowLine.put(dst-1, head)
		}
		arrowLine.colorize(lo+1, hi-1, ansi)
	}

	return g.prefix(row.Timestamp) + labelLine.String(),
		strings.TrimRight(g.prefix("")+arrowLine.String(), " ")
}
