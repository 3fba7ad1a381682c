package palette

import (
	"github.com/penwyp/go-callflow/internal/core/constants"
)

// Color is one palette entry with a hex value for external renderers and an
// ANSI sequence for the terminal.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
	ANSI string `json:"-"`
}

// Palette is the fixed, ordered set of session colours
var Palette = [constants.PaletteSize]Color{
	{Name: "blue", Hex: "#3b82f6", ANSI: "\033[34m"},
	{Name: "red", Hex: "#ef4444", ANSI: "\033[31m"},
	{Name: "green", Hex: "#22c55e", ANSI: "\033[32m"},
	{Name: "yellow", Hex: "#eab308", ANSI: "\033[33m"},
	{Name: "magenta", Hex: "#a855f7", ANSI: "\033[35m"},
	{Name: "cyan", Hex: "#06b6d4", ANSI: "\033[36m"},
}

// Default is used when only one session is shown or the session is unknown
var Default = Color{Name: "default", Hex: "#e5e7eb", ANSI: ""}

// Assigner maps session ids to palette colours by their position in a
// caller-supplied list.
type Assigner struct {
	index map[string]int
}

// NewAssigner creates an assigner over sessionIDs; the first occurrence of a
// duplicated id decides its position.
func NewAssigner(sessionIDs []string) *Assigner {
	index := make(map[string]int, len(sessionIDs))
	for i, sid := range sessionIDs {
		if _, ok := index[sid]; !ok {
			index[sid] = i
		}
	}
	return &Assigner{index: index}
}

// Enabled reports whether more than one session is being displayed
func (a *Assigner) Enabled() bool {
	return a != nil && len(a.index) > 1
}

// ColorFor returns the colour of sid
func (a *Assigner) ColorFor(sid string) Color {
	if !a.Enabled() {
		return Default
	}
	i, ok := a.index[sid]
	if !ok {
		return Default
	}
	return Palette[i%len(Palette)]
}
