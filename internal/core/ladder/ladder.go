package ladder

import (
	"github.com/penwyp/go-callflow/internal/core/model"
	"github.com/penwyp/go-callflow/internal/core/palette"
)

// ColumnPosition is the normalised horizontal position of column i of n
func ColumnPosition(i, n int) float64 {
	return (float64(i) + 1.5) / float64(n+1)
}

// Compute lays out msgs, in the order given, against the ordered columns
func Compute(columns []model.Endpoint, msgs []model.Message, opts Options) Frame {
	n := len(columns)
	frame := Frame{
		Columns: make([]Column, 0, n),
		Rows:    make([]Row, 0, len(msgs)),
	}

	index := make(map[string]int, n)
	for i, ep := range columns {
		if _, dup := index[ep.Address]; !dup {
			index[ep.Address] = i
		}
		label := ep.Address
		if opts.ShowEndpointNames {
			label = ep.Label()
		}
		frame.Columns = append(frame.Columns, Column{
			Index:    i,
			Address:  ep.Address,
			Label:    label,
			Position: ColumnPosition(i, n),
		})
	}

	var assigner *palette.Assigner
	if opts.ColorBySession {
		assigner = palette.NewAssigner(opts.SessionIDs)
	}

	var firstMS float64
	for i, msg := range msgs {
		ts := msg.TimestampMS()
		if i == 0 {
			firstMS = ts
		}

		row := Row{
			Index:       i,
			MessageID:   msg.ID,
			SessionID:   msg.SessionID,
			SrcIndex:    lookup(index, msg.Source()),
			DstIndex:    lookup(index, msg.Destination()),
			Arrowheads:  []int{},
			TimestampMS: ts,
			Color:       assigner.ColorFor(msg.SessionID),
		}
		placeRow(&row, n)

		row.Label = ExtractLabel(msg.Raw)
		if opts.ShowIndex {
			row.Label = IndexLabel(i, row.Label)
		}

		if opts.RelativeTime {
			row.Timestamp = FormatRelative(i, ts-firstMS)
		} else {
			row.Timestamp = FormatAbsolute(msg)
		}

		frame.Rows = append(frame.Rows, row)
	}

	return frame
}

// placeRow fills the line geometry of a row whose indices are known
func placeRow(row *Row, n int) {
	if row.SrcIndex < 0 || row.DstIndex < 0 {
		return
	}
	row.Placed = true

	srcPos := ColumnPosition(row.SrcIndex, n)
	dstPos := ColumnPosition(row.DstIndex, n)
	row.LineStart = min(srcPos, dstPos)
	row.LineEnd = max(srcPos, dstPos)
	row.Width = (row.LineEnd - row.LineStart) * float64(n)
	row.RightToLeft = row.SrcIndex > row.DstIndex

	if row.SrcIndex == row.DstIndex {
		row.SelfLoop = true
		if float64(row.SrcIndex) < float64(n)/2 {
			row.LoopSide = LoopRight
		} else {
			row.LoopSide = LoopLeft
		}
		return
	}

	lo, hi := min(row.SrcIndex, row.DstIndex), max(row.SrcIndex, row.DstIndex)
	for k := lo; k <= hi; k++ {
		if k == row.SrcIndex || k == row.DstIndex {
			continue
		}
		row.Arrowheads = append(row.Arrowheads, k)
	}
	if row.RightToLeft {
		// Heads are listed in drawing order, from source towards destination
		for i, j := 0, len(row.Arrowheads)-1; i < j; i, j = i+1, j-1 {
			row.Arrowheads[i], row.Arrowheads[j] = row.Arrowheads[j], row.Arrowheads[i]
		}
	}
}

func lookup(index map[string]int, addr string) int {
	if addr == "" {
		return -1
	}
	if i, ok := index[addr]; ok {
		return i
	}
	return -1
}
