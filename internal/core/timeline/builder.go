package timeline

import (
	"sort"

	"github.com/penwyp/go-callflow/internal/core/model"
)

// TimelineBuilder merges call sessions into a single timeline
type TimelineBuilder struct{}

// NewTimelineBuilder creates a new timeline builder
func NewTimelineBuilder() *TimelineBuilder {
	return &TimelineBuilder{}
}

// Merge stamps every message with its session id, concatenates the sessions in
// the order supplied and stable-sorts the result by capture time.
// Input sessions are not modified.
func (tb *TimelineBuilder) Merge(sessions []model.CallSession) *Timeline {
	var totalSize int
	for _, s := range sessions {
		totalSize += len(s.Messages)
	}

	merged := make([]model.Message, 0, totalSize)
	sessionIDs := make([]string, 0, len(sessions))
	for _, s := range sessions {
		sessionIDs = append(sessionIDs, s.ID)
		for _, msg := range s.Messages {
			msg.SessionID = s.ID
			merged = append(merged, msg)
		}
	}

	SortByTime(merged)

	return &Timeline{
		Messages:      merged,
		EndpointNames: tb.MergeEndpointNames(sessions),
		SessionIDs:    sessionIDs,
		Endpoints:     EndpointsFromSessions(sessions),
		Order:         OrderSession,
	}
}

// MergeEndpointNames combines the ip_mappings of all sessions; on key
// collisions the later session wins.
func (tb *TimelineBuilder) MergeEndpointNames(sessions []model.CallSession) map[string]string {
	names := make(map[string]string)
	for _, s := range sessions {
		for addr, name := range s.IPMappings {
			names[addr] = name
		}
	}
	return names
}

// FromBuffer builds a timeline over a live-tail buffer given in arrival order.
// Columns follow arrival order; rows are time-sorted. The buffer is one stream,
// so no session ids are carried and rows are never coloured per session.
func (tb *TimelineBuilder) FromBuffer(buffer []model.Message, names map[string]string) *Timeline {
	rows := make([]model.Message, len(buffer))
	copy(rows, buffer)
	SortByTime(rows)

	if names == nil {
		names = make(map[string]string)
	}

	return &Timeline{
		Messages:      rows,
		EndpointNames: names,
		Endpoints:     DiscoverEndpoints(buffer),
		Order:         OrderArrival,
	}
}

// SortByTime sorts msgs in place by capture time, keeping the relative order of
// messages with equal timestamps.
func SortByTime(msgs []model.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].TimestampMS()-msgs[j].TimestampMS() < 0
	})
}
