package formatter

import (
	"io"

	"github.com/penwyp/go-callflow/internal/core/ladder"
	"github.com/penwyp/go-callflow/internal/presentation/display"
)

type LadderFormatter struct {
	renderer *display.LadderRenderer
}

func NewLadderFormatter(width int, color bool) *LadderFormatter {
	if width <= 0 {
		width = display.TerminalWidth()
	}
	return &LadderFormatter{renderer: display.NewLadderRenderer(width, color)}
}

func (f *LadderFormatter) Format(w io.Writer, frame ladder.Frame) error {
	return f.renderer.Render(w, frame)
}
