package timeline

import (
	"github.com/penwyp/go-callflow/internal/core/model"
)

// ColumnOrder names how the endpoint columns of a trace were discovered
type ColumnOrder string

const (
	// OrderSession scans each session's messages in fetch order, before the time sort
	OrderSession ColumnOrder = "session"
	// OrderArrival scans a live-tail buffer in the order messages were appended
	OrderArrival ColumnOrder = "arrival"
)

// Timeline is the time-ordered trace of one or more call sessions
type Timeline struct {
	Messages      []model.Message   // Sorted by TimestampMS, stable on ties
	EndpointNames map[string]string // Merged ip_mappings, later sessions win
	SessionIDs    []string          // Session ids in the order they were supplied
	Endpoints     []string          // Column addresses in first-discovery order
	Order         ColumnOrder
}

// IsEmpty reports whether the timeline holds no messages
func (t *Timeline) IsEmpty() bool {
	return t == nil || len(t.Messages) == 0
}

// Columns resolves the endpoint addresses into endpoints carrying display names
func (t *Timeline) Columns() []model.Endpoint {
	if t == nil {
		return []model.Endpoint{}
	}
	return ResolveEndpoints(t.Endpoints, t.EndpointNames)
}
