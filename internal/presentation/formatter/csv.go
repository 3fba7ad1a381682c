package formatter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/penwyp/go-callflow/internal/core/ladder"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (f *CSVFormatter) Format(w io.Writer, frame ladder.Frame) error {
	cw := csv.NewWriter(w)

	headers := []string{
		"index", "timestamp", "timestamp_ms", "session", "message_id",
		"source", "destination", "direction", "label",
	}
	if err := cw.Write(headers); err != nil {
		return err
	}

	for _, row := range frame.Rows {
		record := []string{
			strconv.Itoa(row.Index + 1),
			row.Timestamp,
			strconv.FormatFloat(row.TimestampMS, 'f', 3, 64),
			row.SessionID,
			strconv.FormatInt(row.MessageID, 10),
			endpointLabel(frame, row.SrcIndex),
			endpointLabel(frame, row.DstIndex),
			direction(row),
			row.Label,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
