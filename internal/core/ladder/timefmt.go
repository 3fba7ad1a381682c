package ladder

import (
	"fmt"
	"math"

	"github.com/penwyp/go-callflow/internal/core/constants"
	"github.com/penwyp/go-callflow/internal/core/model"
)

// AbsoluteLayout is the wall-clock display format, always rendered in UTC
const AbsoluteLayout = "02/01/2006 15:04:05.000"

// FormatAbsolute renders the capture time of m in UTC
func FormatAbsolute(m model.Message) string {
	return m.Time().UTC().Format(AbsoluteLayout)
}

// FormatRelative renders the offset of a row from the first row of the trace.
// The first row is "00"; later rows are "+Nms" below 500ms and "+S.sss s" above.
func FormatRelative(row int, deltaMS float64) string {
	if row == 0 {
		return "00"
	}
	if deltaMS < constants.RelativeSecondsThresholdMS {
		return fmt.Sprintf("+%dms", int64(math.Round(deltaMS)))
	}
	return fmt.Sprintf("+%.3fs", deltaMS/1000)
}
