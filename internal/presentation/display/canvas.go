package display

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/penwyp/go-callflow/internal/util"
)

// canvas is one terminal line addressed by cell. A wide rune occupies its cell
// and leaves the following cell empty.
type canvas struct {
	cells     []string
	colorFrom int
	colorTo   int
	colorANSI string
}

func newCanvas(width int) *canvas {
	cells := make([]string, width)
	for i := range cells {
		cells[i] = " "
	}
	return &canvas{cells: cells, colorFrom: -1}
}

func (c *canvas) width() int {
	return len(c.cells)
}

// put writes a single-cell rune at x, ignoring positions off the canvas
func (c *canvas) put(x int, r rune) {
	if x < 0 || x >= len(c.cells) {
		return
	}
	c.cells[x] = string(r)
}

// text writes s starting at x, clipped to the cells in [x, x+limit)
func (c *canvas) text(x int, s string, limit int) {
	end := min(x+limit, len(c.cells))
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x < 0 {
			x += w
			continue
		}
		if x+w > end {
			return
		}
		c.cells[x] = string(r)
		for k := 1; k < w; k++ {
			c.cells[x+k] = ""
		}
		x += w
	}
}

// centre writes s centred in the cells [from, from+span)
func (c *canvas) centre(from, span int, s string) {
	if span <= 0 || s == "" {
		return
	}
	s = util.Truncate(s, span)
	w := runewidth.StringWidth(s)
	c.text(from+(span-w)/2, s, w)
}

// colorize marks cells [from, to] to be wrapped in an ANSI colour
func (c *canvas) colorize(from, to int, ansi string) {
	if ansi == "" || from > to {
		return
	}
	c.colorFrom = max(from, 0)
	c.colorTo = min(to, len(c.cells)-1)
	c.colorANSI = ansi
}

func (c *canvas) String() string {
	var b strings.Builder
	for i, cell := range c.cells {
		if i == c.colorFrom {
			b.WriteString(c.colorANSI)
		}
		b.WriteString(cell)
		if i == c.colorTo && c.colorFrom >= 0 {
			b.WriteString(util.ColorReset)
		}
	}
	return strings.TrimRight(b.String(), " ")
}
