package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/penwyp/go-callflow/internal/application/flow"
	"github.com/penwyp/go-callflow/internal/core/constants"
	"github.com/penwyp/go-callflow/internal/core/ladder"
	"github.com/penwyp/go-callflow/internal/core/watch"
	"github.com/penwyp/go-callflow/internal/data/prefs"
	"github.com/penwyp/go-callflow/internal/util"
)

// Handlers serves call flows, a server-owned watch session and preferences
type Handlers struct {
	loader     *flow.Loader
	controller *watch.Controller
	store      prefs.Store

	mu     sync.Mutex
	handle *watch.Handle
}

// NewHandlers creates handlers over the given loader, controller and store
func NewHandlers(loader *flow.Loader, controller *watch.Controller, store prefs.Store) *Handlers {
	return &Handlers{
		loader:     loader,
		controller: controller,
		store:      store,
	}
}

// StartWatchRequest is the body of POST /watch/start
type StartWatchRequest struct {
	Domain   string   `json:"domain"`
	Users    []string `json:"users"`
	Interval string   `json:"interval"`
}

// WatchFrameResponse is the body of GET /watch/frame
type WatchFrameResponse struct {
	Running   bool         `json:"running"`
	Domain    string       `json:"domain"`
	Users     []string     `json:"users"`
	Interval  string       `json:"interval"`
	Boundary  *time.Time   `json:"boundary,omitempty"`
	Buffered  int          `json:"buffered"`
	Capacity  int          `json:"capacity"`
	Ticks     int          `json:"ticks"`
	LastError string       `json:"last_error,omitempty"`
	Frame     ladder.Frame `json:"frame"`
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Flow returns the merged ladder frame of ?sids=a,b
func (h *Handlers) Flow(c *gin.Context) {
	sids := splitList(c.Query("sids"))
	if len(sids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sids parameter is required"})
		return
	}

	ctx := c.Request.Context()
	p := h.preferences(ctx)
	result := h.loader.Load(ctx, sids, p)
	if result.Err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": result.Err.Error()})
		return
	}
	c.JSON(http.StatusOK, result.Frame)
}

func (h *Handlers) StartWatch(c *gin.Context) {
	var req StartWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.controller.Running() {
		c.JSON(http.StatusConflict, gin.H{"error": watch.ErrAlreadyWatching.Error()})
		return
	}

	if strings.TrimSpace(req.Domain) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": watch.ErrEmptyScope.Error()})
		return
	}

	// The poll loop outlives this request
	ctx := context.WithoutCancel(c.Request.Context())

	if req.Interval != "" {
		d, err := time.ParseDuration(req.Interval)
		if err != nil || !constants.IsWatchInterval(d) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "interval must be one of 5s, 10s, 30s, 1m"})
			return
		}
		if _, err := h.controller.Restart(ctx, d); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	handle, err := h.controller.Start(ctx, watch.Query{Scope: req.Domain, Users: req.Users})
	switch {
	case errors.Is(err, watch.ErrEmptyScope):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, watch.ErrAlreadyWatching):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.handle = handle

	util.Named("api").WithContext(c.Request.Context()).Info("watch started via API", util.F("domain", req.Domain))
	c.JSON(http.StatusOK, h.frameResponse(c.Request.Context()))
}

func (h *Handlers) StopWatch(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.controller.Stop(h.handle); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "not watching"})
		return
	}
	h.handle = nil
	c.JSON(http.StatusOK, h.frameResponse(c.Request.Context()))
}

func (h *Handlers) WatchFrame(c *gin.Context) {
	c.JSON(http.StatusOK, h.frameResponse(c.Request.Context()))
}

func (h *Handlers) frameResponse(ctx context.Context) WatchFrameResponse {
	snap := h.controller.Snapshot()
	p := h.preferences(ctx)
	tl := snap.Timeline()

	resp := WatchFrameResponse{
		Running:  snap.Running,
		Domain:   snap.Query.Scope,
		Users:    snap.Query.Users,
		Interval: snap.Interval.String(),
		Buffered: len(snap.Messages),
		Capacity: snap.Capacity,
		Ticks:    snap.Ticks,
		Frame:    ladder.Compute(tl.Columns(), tl.Messages, p.Options(tl.SessionIDs)),
	}
	if resp.Users == nil {
		resp.Users = []string{}
	}
	if !snap.Boundary.IsZero() {
		b := snap.Boundary.UTC()
		resp.Boundary = &b
	}
	if snap.LastTick.Failed() {
		resp.LastError = snap.LastTick.Err.Error()
	}
	return resp
}

func (h *Handlers) GetPreferences(c *gin.Context) {
	p, err := prefs.LoadOrDefault(c.Request.Context(), h.store)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// PutPreferences merges the body into the stored preferences
func (h *Handlers) PutPreferences(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := prefs.LoadOrDefault(ctx, h.store)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}
	d := time.Duration(p.RefreshIntervalMS) * time.Millisecond
	if !constants.IsWatchInterval(d) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshIntervalMs must be one of 5000, 10000, 30000, 60000"})
		return
	}

	if err := h.store.Save(ctx, p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) preferences(ctx context.Context) prefs.Preferences {
	p, err := prefs.LoadOrDefault(ctx, h.store)
	if err != nil {
		util.Named("api").WithContext(ctx).Warn("failed to load preferences", util.Err(err))
	}
	return p
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
