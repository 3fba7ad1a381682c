package flow

import (
	"context"
	"fmt"

	"github.com/penwyp/go-callflow/internal/core/ladder"
	"github.com/penwyp/go-callflow/internal/core/model"
	"github.com/penwyp/go-callflow/internal/core/timeline"
	"github.com/penwyp/go-callflow/internal/data/prefs"
	"github.com/penwyp/go-callflow/internal/util"
)

// CallDetailFetcher loads the messages of one or more call sessions
type CallDetailFetcher interface {
	FetchCallDetail(ctx context.Context, sids []string) (*model.DetailResponse, error)
}

// Result is the outcome of loading a call flow. On failure Err is set and
// Timeline and Frame are empty, so callers can still render the no-data state.
type Result struct {
	Timeline *timeline.Timeline
	Frame    ladder.Frame
	Err      error
}

// Loader fetches call sessions and turns them into ladder frames
type Loader struct {
	fetcher CallDetailFetcher
	builder *timeline.TimelineBuilder
	logger  util.LoggerInterface
}

// NewLoader creates a loader reading sessions from fetcher
func NewLoader(fetcher CallDetailFetcher) *Loader {
	return &Loader{
		fetcher: fetcher,
		builder: timeline.NewTimelineBuilder(),
		logger:  util.Named("flow"),
	}
}

// Load fetches sids, merges them into one timeline and lays it out with p
func (l *Loader) Load(ctx context.Context, sids []string, p prefs.Preferences) Result {
	resp, err := l.fetcher.FetchCallDetail(ctx, sids)
	if err != nil {
		l.logger.Error("call detail fetch failed", util.Err(err), util.F("sessions", len(sids)))
		empty := l.builder.Merge(nil)
		return Result{
			Timeline: empty,
			Frame:    l.Layout(empty, p),
			Err:      fmt.Errorf("failed to fetch call detail: %w", err),
		}
	}

	tl := l.builder.Merge(resp.Detail)
	l.logger.Debug("call flow merged",
		util.F("sessions", len(tl.SessionIDs)),
		util.F("messages", len(tl.Messages)),
		util.F("endpoints", len(tl.Endpoints)))

	return Result{
		Timeline: tl,
		Frame:    l.Layout(tl, p),
	}
}

// Layout computes the ladder geometry of tl. It is cheap enough to call again
// whenever a display toggle changes.
func (l *Loader) Layout(tl *timeline.Timeline, p prefs.Preferences) ladder.Frame {
	if tl == nil {
		tl = &timeline.Timeline{}
	}
	return ladder.Compute(tl.Columns(), tl.Messages, p.Options(tl.SessionIDs))
}
