package formatter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/penwyp/go-callflow/internal/core/ladder"
	"github.com/penwyp/go-callflow/internal/presentation/display"
)

type TableFormatter struct {
	headers []string
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headers: []string{"#", "Time", "Session", "Source", "Destination", "Message"},
	}
}

func (f *TableFormatter) Format(w io.Writer, frame ladder.Frame) error {
	if frame.IsEmpty() {
		_, err := fmt.Fprintln(w, display.NoMessages)
		return err
	}

	t := tablewriter.NewWriter(w)
	t.SetHeader(f.headers)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetRowLine(false)

	for _, row := range frame.Rows {
		t.Append([]string{
			strconv.Itoa(row.Index + 1),
			row.Timestamp,
			row.SessionID,
			endpointLabel(frame, row.SrcIndex),
			endpointLabel(frame, row.DstIndex),
			row.Label,
		})
	}
	t.Render()
	return nil
}
