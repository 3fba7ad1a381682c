package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/penwyp/go-callflow/internal/application/flow"
	"github.com/penwyp/go-callflow/internal/data/prefs"
	"github.com/penwyp/go-callflow/internal/data/source"
	"github.com/penwyp/go-callflow/internal/presentation/display"
	"github.com/penwyp/go-callflow/internal/presentation/formatter"
	"github.com/penwyp/go-callflow/internal/util"
	"github.com/spf13/cobra"
)

var (
	flowSessionIDs []string
	flowInput      string
	flowOutput     string
	flowWidth      int
	flowNoColor    bool

	// Preference overrides, applied only when set on the command line
	flowShowIndex bool
	flowRelative  bool
	flowNames     bool
	flowColors    bool
)

var flowCmd = &cobra.Command{
	Use:   "flow [sid...]",
	Short: "Render the call-flow ladder of one or more calls",
	Long: `Fetches the given call sessions, merges their messages into one trace ordered
by capture time and renders it as a ladder diagram.

Columns are the endpoints in the order they are first seen. Each row is one SIP
message labelled with its method or response status.`,
	RunE: runFlow,
}

func init() {
	rootCmd.AddCommand(flowCmd)

	// Input flags
	flowCmd.Flags().StringSliceVar(&flowSessionIDs, "sid", nil,
		"Call session ids to merge (comma separated or repeated)")
	flowCmd.Flags().StringVarP(&flowInput, "input", "i", "",
		"Read a saved call-detail JSON document instead of the backend (- for stdin)")

	// Output flags
	flowCmd.Flags().StringVarP(&flowOutput, "output", "o", formatter.FormatLadder,
		"Output format (ladder, table, json, csv)")
	flowCmd.Flags().IntVar(&flowWidth, "width", 0,
		"Ladder width in columns (0 = terminal width)")
	flowCmd.Flags().BoolVar(&flowNoColor, "no-color", false,
		"Disable ANSI colours")

	// Preference overrides
	flowCmd.Flags().BoolVar(&flowShowIndex, "show-index", false,
		"Prefix labels with their row number")
	flowCmd.Flags().BoolVar(&flowRelative, "relative", false,
		"Show time offsets from the first message")
	flowCmd.Flags().BoolVar(&flowNames, "names", false,
		"Label endpoints with backend display names")
	flowCmd.Flags().BoolVar(&flowColors, "colors", false,
		"Colour rows by call session")
}

func runFlow(cmd *cobra.Command, args []string) error {
	if err := setupRuntime(); err != nil {
		return err
	}

	store, _, err := openPreferenceStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	p, err := prefs.LoadOrDefault(ctx, store)
	if err != nil {
		util.LogWarn("failed to load preferences, using defaults", util.Err(err))
	}
	applyFlowOverrides(cmd, &p)

	config := &flow.FlowConfig{
		SessionIDs: append(append([]string(nil), flowSessionIDs...), args...),
		InputFile:  flowInput,
		Output:     flowOutput,
		Width:      flowWidth,
		Color:      !flowNoColor && display.IsTerminal(),
	}
	if config.Width <= 0 {
		config.Width = display.TerminalWidth()
	}
	if err := config.Validate(); err != nil {
		return err
	}

	f, err := formatter.New(config.Output, formatter.Options{Width: config.Width, Color: config.Color})
	if err != nil {
		return err
	}

	var fetcher flow.CallDetailFetcher
	if config.InputFile != "" {
		fetcher = source.NewFileSource(config.InputFile)
	} else {
		client, err := newBackendClient()
		if err != nil {
			return err
		}
		fetcher = client
	}

	result := flow.NewLoader(fetcher).Load(ctx, config.SessionIDs, p)
	if result.Err != nil {
		util.LogErrorf("flow for %d sessions failed: %v", len(config.SessionIDs), result.Err)
	} else {
		util.LogInfof("rendered %d messages as %s", len(result.Frame.Rows), config.Output)
	}
	if err := f.Format(cmd.OutOrStdout(), result.Frame); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return result.Err
}

// applyFlowOverrides copies explicitly set toggle flags over stored preferences
func applyFlowOverrides(cmd *cobra.Command, p *prefs.Preferences) {
	overrides := []struct {
		flag  string
		value bool
		field *bool
	}{
		{"show-index", flowShowIndex, &p.ShowIndex},
		{"relative", flowRelative, &p.RelativeTime},
		{"names", flowNames, &p.ShowEndpointNames},
		{"colors", flowColors, &p.ColorBySession},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.field = o.value
		}
	}
}
