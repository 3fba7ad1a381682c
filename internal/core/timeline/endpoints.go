package timeline

import (
	"github.com/penwyp/go-callflow/internal/core/model"
)

// DiscoverEndpoints returns the unique endpoint addresses referenced by msgs in
// first-discovery order. For every message the source is considered before the
// destination; empty addresses are skipped.
func DiscoverEndpoints(msgs []model.Message) []string {
	endpoints := make([]string, 0)
	seen := make(map[string]struct{})

	add := func(addr string) {
		if addr == "" {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		endpoints = append(endpoints, addr)
	}

	for _, msg := range msgs {
		add(msg.Source())
		add(msg.Destination())
	}
	return endpoints
}

// EndpointsFromSessions discovers endpoints from the per-session message order,
// as fetched, session after session. Rows are time-sorted separately, so this
// order can differ from the order produced by scanning the merged timeline.
func EndpointsFromSessions(sessions []model.CallSession) []string {
	var total int
	for _, s := range sessions {
		total += len(s.Messages)
	}

	msgs := make([]model.Message, 0, total)
	for _, s := range sessions {
		msgs = append(msgs, s.Messages...)
	}
	return DiscoverEndpoints(msgs)
}

// ResolveEndpoints pairs each address with its display name, when known
func ResolveEndpoints(addresses []string, names map[string]string) []model.Endpoint {
	endpoints := make([]model.Endpoint, 0, len(addresses))
	for _, addr := range addresses {
		endpoints = append(endpoints, model.Endpoint{
			Address:     addr,
			DisplayName: names[addr],
		})
	}
	return endpoints
}
