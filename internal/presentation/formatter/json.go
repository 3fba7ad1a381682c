package formatter

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-callflow/internal/core/ladder"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Format(w io.Writer, frame ladder.Frame) error {
	data, err := sonic.ConfigStd.MarshalIndent(frame, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
