package cache

import (
	"context"

	"github.com/penwyp/go-callflow/internal/core/model"
	"github.com/penwyp/go-callflow/internal/util"
)

// DetailFetcher loads call sessions by id
type DetailFetcher interface {
	FetchCallDetail(ctx context.Context, sids []string) (*model.DetailResponse, error)
}

// CachedFetcher wraps another fetcher with a session cache. Only sessions
// missing from the cache are requested; when that request fails, stale
// entries are served if they cover every missing session.
type CachedFetcher struct {
	fetcher DetailFetcher
	cache   *MemoryCache
	logger  util.LoggerInterface
}

// NewCachedFetcher creates a caching fetcher
func NewCachedFetcher(fetcher DetailFetcher, cache *MemoryCache) *CachedFetcher {
	return &CachedFetcher{
		fetcher: fetcher,
		cache:   cache,
		logger:  util.Named("cache"),
	}
}

// FetchCallDetail returns the requested sessions in request order. Sessions
// the backend does not know are left out.
func (f *CachedFetcher) FetchCallDetail(ctx context.Context, sids []string) (*model.DetailResponse, error) {
	found := make(map[string]model.CallSession, len(sids))
	requested := make(map[string]bool, len(sids))
	var missing []string
	for _, sid := range sids {
		if requested[sid] {
			continue
		}
		requested[sid] = true
		if s, ok := f.cache.Get(sid); ok {
			found[sid] = s
			continue
		}
		missing = append(missing, sid)
	}

	if len(missing) > 0 {
		resp, err := f.fetcher.FetchCallDetail(ctx, missing)
		if err != nil {
			if !f.fillStale(missing, found) {
				return nil, err
			}
			f.logger.Info("backend failed, serving stale sessions", util.Err(err), util.F("sessions", len(missing)))
		} else {
			for _, s := range resp.Detail {
				f.cache.Set(s)
				found[s.ID] = s
			}
		}
	}

	f.logger.Debug("call detail served",
		util.F("requested", len(sids)),
		util.F("fetched", len(missing)),
		util.F("cached", f.cache.Len()))

	detail := make([]model.CallSession, 0, len(sids))
	emitted := make(map[string]bool, len(sids))
	for _, sid := range sids {
		s, ok := found[sid]
		if !ok || emitted[sid] {
			continue
		}
		emitted[sid] = true
		detail = append(detail, s)
	}
	return &model.DetailResponse{Detail: detail}, nil
}

func (f *CachedFetcher) fillStale(missing []string, found map[string]model.CallSession) bool {
	stale := make(map[string]model.CallSession, len(missing))
	for _, sid := range missing {
		s, ok := f.cache.GetStale(sid)
		if !ok {
			return false
		}
		stale[sid] = s
	}
	for sid, s := range stale {
		found[sid] = s
	}
	return true
}
