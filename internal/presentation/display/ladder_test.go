package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/penwyp/go-callflow/internal/core/ladder"
	"github.com/penwyp/go-callflow/internal/core/palette"
	"github.com/penwyp/go-callflow/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeColumns() []ladder.Column {
	return []ladder.Column{
		{Index: 0, Address: "A", Label: "A", Position: ladder.ColumnPosition(0, 3)},
		{Index: 1, Address: "B", Label: "B", Position: ladder.ColumnPosition(1, 3)},
		{Index: 2, Address: "C", Label: "C", Position: ladder.ColumnPosition(2, 3)},
	}
}

func sp(n int) string {
	return strings.Repeat(" ", n)
}

func TestLadderRenderer_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewLadderRenderer(80, false).Render(&buf, ladder.Frame{Columns: threeColumns()}))

	assert.Equal(t, "No messages\n", buf.String())
}

func TestLadderRenderer_LeftToRightAcrossColumns(t *testing.T) {
	frame := ladder.Frame{
		Columns: threeColumns(),
		Rows: []ladder.Row{{
			SrcIndex: 0, DstIndex: 2, Placed: true,
			Arrowheads: []int{1},
			Label:      "INVITE",
			Timestamp:  "00",
		}},
	}

	lines := NewLadderRenderer(33, false).Lines(frame)

	require.Len(t, lines, 3)
	assert.Equal(t, sp(3)+sp(11)+"A"+sp(6)+"B"+sp(7)+"C", lines[0])
	assert.Equal(t, "00 "+sp(11)+"|"+sp(4)+"INVITE"+sp(4)+"|", lines[1])
	assert.Equal(t, sp(3)+sp(11)+"|------>------>|", lines[2])
}

func TestLadderRenderer_RightToLeft(t *testing.T) {
	frame := ladder.Frame{
		Columns: threeColumns(),
		Rows: []ladder.Row{{
			SrcIndex: 2, DstIndex: 0, Placed: true, RightToLeft: true,
			Arrowheads: []int{1},
			Label:      "200 OK",
			Timestamp:  "00",
		}},
	}

	lines := NewLadderRenderer(33, false).Lines(frame)

	assert.Equal(t, sp(3)+sp(11)+"|<-----<-------|", lines[2])
	assert.Contains(t, lines[1], "200 OK")
}

func TestLadderRenderer_SelfLoops(t *testing.T) {
	frame := ladder.Frame{
		Columns: threeColumns(),
		Rows: []ladder.Row{
			{SrcIndex: 0, DstIndex: 0, Placed: true, SelfLoop: true, LoopSide: ladder.LoopRight, Label: "X", Timestamp: "00"},
			{SrcIndex: 2, DstIndex: 2, Placed: true, SelfLoop: true, LoopSide: ladder.LoopLeft, Label: "Y", Timestamp: "00"},
		},
	}

	lines := NewLadderRenderer(33, false).Lines(frame)

	require.Len(t, lines, 5)
	assert.Equal(t, sp(3)+sp(11)+"|<-┘"+sp(3)+"|"+sp(7)+"|", lines[2])
	assert.Equal(t, sp(3)+sp(11)+"|"+sp(6)+"|"+sp(4)+"└->|", lines[4])
}

func TestLadderRenderer_UnplacedRow(t *testing.T) {
	frame := ladder.Frame{
		Columns: threeColumns(),
		Rows:    []ladder.Row{{SrcIndex: -1, DstIndex: 1, Label: "BYE", Timestamp: "00"}},
	}

	lines := NewLadderRenderer(33, false).Lines(frame)

	assert.Contains(t, lines[1], "? BYE")
	assert.Equal(t, sp(3)+sp(11)+"|"+sp(6)+"|"+sp(7)+"|", lines[2])
}

func TestLadderRenderer_Colors(t *testing.T) {
	frame := ladder.Frame{
		Columns: threeColumns(),
		Rows: []ladder.Row{{
			SrcIndex: 0, DstIndex: 1, Placed: true,
			Label: "INVITE", Timestamp: "00",
			Color: palette.Palette[1],
		}},
	}

	colored := NewLadderRenderer(33, true).Lines(frame)
	plain := NewLadderRenderer(33, false).Lines(frame)

	assert.Contains(t, colored[2], palette.Palette[1].ANSI+"----->"+util.ColorReset)
	assert.NotContains(t, plain[2], "\033[")
}

func TestLadderRenderer_GutterFitsTimestamps(t *testing.T) {
	frame := ladder.Frame{
		Columns: threeColumns(),
		Rows: []ladder.Row{
			{SrcIndex: 0, DstIndex: 1, Placed: true, Timestamp: "01/01/2024 10:00:00.123"},
		},
	}

	lines := NewLadderRenderer(80, false).Lines(frame)

	assert.True(t, strings.HasPrefix(lines[1], "01/01/2024 10:00:00.123 "))
	assert.True(t, strings.HasPrefix(lines[2], sp(24)))
}

func TestLadderRenderer_Tail(t *testing.T) {
	rows := make([]ladder.Row, 0, 5)
	for i := 0; i < 5; i++ {
		rows = append(rows, ladder.Row{Index: i, SrcIndex: 0, DstIndex: 1, Placed: true, Label: string(rune('a' + i)), Timestamp: "00"})
	}
	frame := ladder.Frame{Columns: threeColumns(), Rows: rows}
	r := NewLadderRenderer(33, false)

	tail := r.Tail(frame, 6)

	require.Len(t, tail, 5)
	assert.Equal(t, r.Lines(frame)[0], tail[0])
	assert.Contains(t, tail[1], " d ")
	assert.Contains(t, tail[3], " e ")
	assert.Len(t, r.Tail(frame, 100), 11)
}
