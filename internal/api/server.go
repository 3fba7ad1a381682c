package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/penwyp/go-callflow/internal/application/flow"
	"github.com/penwyp/go-callflow/internal/core/cache"
	"github.com/penwyp/go-callflow/internal/core/watch"
	"github.com/penwyp/go-callflow/internal/data/prefs"
	"github.com/penwyp/go-callflow/internal/util"
)

// Config contains configuration for the HTTP server
type Config struct {
	ListenAddr string
	// How long fetched call sessions are served from memory
	CacheTTL time.Duration
}

// Validate fills defaults
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8090"
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative")
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 30 * time.Second
	}
	return nil
}

type Server struct {
	httpServer *http.Server
	controller *watch.Controller
}

// NewServer wires the handlers into a gin router
func NewServer(cfg Config, fetcher flow.CallDetailFetcher, watcher watch.Fetcher, store prefs.Store) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	controller := watch.NewController(watcher)
	cached := cache.NewCachedFetcher(fetcher, cache.NewMemoryCache(cfg.CacheTTL))
	h := NewHandlers(flow.NewLoader(cached), controller, store)

	return &Server{
		controller: controller,
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           NewRouter(h),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// NewRouter registers all routes on a fresh gin engine
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(util.Named("api")))

	router.GET("/healthz", h.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/flow", h.Flow)
		v1.POST("/watch/start", h.StartWatch)
		v1.POST("/watch/stop", h.StopWatch)
		v1.GET("/watch/frame", h.WatchFrame)
		v1.GET("/preferences", h.GetPreferences)
		v1.PUT("/preferences", h.PutPreferences)
	}
	return router
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests and the watch session
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.controller.Close()
	return err
}
