package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/penwyp/go-callflow/internal/api"
	"github.com/penwyp/go-callflow/internal/util"
	"github.com/spf13/cobra"
)

var (
	serveListen   string
	serveCacheTTL time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve call-flow ladders over HTTP",
	Long: `Starts an HTTP server exposing the ladder geometry as JSON for external renderers.

Routes:
  GET  /healthz
  GET  /api/v1/flow?sids=a,b
  POST /api/v1/watch/start   {"domain":"example.com","users":["alice"],"interval":"10s"}
  POST /api/v1/watch/stop
  GET  /api/v1/watch/frame
  GET  /api/v1/preferences
  PUT  /api/v1/preferences`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", ":8090",
		"HTTP listen address")
	serveCmd.Flags().DurationVar(&serveCacheTTL, "cache-ttl", 30*time.Second,
		"How long fetched call sessions are served from memory")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := setupRuntime(); err != nil {
		return err
	}
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	store, _, err := openPreferenceStore()
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := newBackendClient()
	if err != nil {
		return err
	}

	server, err := api.NewServer(api.Config{ListenAddr: serveListen, CacheTTL: serveCacheTTL}, client, client, store)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		util.LogInfo("HTTP server listening", util.F("addr", server.Addr()))
		fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", server.Addr())
		errCh <- server.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			util.LogError("HTTP server failed", util.Err(err))
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	util.LogInfo("shutting down HTTP server")
	return server.Shutdown(shutdownCtx)
}
