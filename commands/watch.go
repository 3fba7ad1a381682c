package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/penwyp/go-callflow/internal/application/live"
	"github.com/penwyp/go-callflow/internal/data/prefs"
	"github.com/penwyp/go-callflow/internal/presentation/display"
	"github.com/penwyp/go-callflow/internal/util"
	"github.com/spf13/cobra"
)

var (
	watchDomain   string
	watchUsers    []string
	watchInterval time.Duration
	watchNoColor  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail live SIP traffic as a ladder",
	Long: `Polls the capture backend for new messages of a domain and redraws the ladder
of the most recent 128 messages, similar to tail -f.

Starting a watch shows the last 10 seconds of traffic. Changing the interval
starts over with a fresh 10 second look-back.

Keys:
  q, Esc     quit
  p          pause / resume
  1-4        poll every 5s, 10s, 30s, 1m
  i r n c    toggle index, relative time, endpoint names, session colours`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchDomain, "domain", "",
		"Domain whose traffic is tailed (required)")
	watchCmd.Flags().StringSliceVar(&watchUsers, "users", nil,
		"Restrict to these users (comma separated)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0,
		"Poll interval (5s, 10s, 30s, 1m; default from preferences)")
	watchCmd.Flags().BoolVar(&watchNoColor, "no-color", false,
		"Disable ANSI colours")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := setupRuntime(); err != nil {
		return err
	}

	config := &live.WatchConfig{
		Scope:    watchDomain,
		Users:    watchUsers,
		Interval: watchInterval,
		Color:    !watchNoColor,
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid watch options: %w", err)
	}
	if !display.IsTerminal() {
		return fmt.Errorf("watch requires an interactive terminal")
	}

	store, path, err := openPreferenceStore()
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := newBackendClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		cancel()
	}()

	opts := []live.Option{}
	initial, err := prefs.LoadOrDefault(ctx, store)
	if err != nil {
		util.LogWarnf("failed to load preferences, watching with defaults: %v", err)
	}
	if monitor, err := prefs.NewWatcher(path, store, initial); err != nil {
		util.LogWarn("preference hot reload disabled", util.Err(err))
	} else {
		opts = append(opts, live.WithPreferenceMonitor(monitor))
	}

	util.LogDebug("starting watch",
		util.F("domain", config.Scope),
		util.F("users", len(config.Users)),
		util.F("interval", config.Interval.String()))
	orchestrator, err := live.NewOrchestrator(config, client, store, opts...)
	if err != nil {
		return err
	}
	return orchestrator.Run(ctx)
}
