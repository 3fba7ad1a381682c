package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/penwyp/go-callflow/internal/data/prefs"
	"github.com/spf13/cobra"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change stored display preferences",
	Long: `Display preferences are shared by flow, watch and serve.

Keys:
  index      prefix message labels with their row number (true/false)
  relative   show time offsets from the first message (true/false)
  names      label endpoints with backend display names (true/false)
  colors     colour rows by call session (true/false)
  interval   watch poll interval (5s, 10s, 30s, 1m)

A running watch picks up changes made here.`,
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print stored preferences",
	Args:  cobra.NoArgs,
	RunE:  runPrefsShow,
}

var prefsSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Change one or more preferences",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPrefsSet,
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default preferences",
	Args:  cobra.NoArgs,
	RunE:  runPrefsReset,
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsShowCmd, prefsSetCmd, prefsResetCmd)
}

func runPrefsShow(cmd *cobra.Command, args []string) error {
	store, _, err := openPreferenceStore()
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := prefs.LoadOrDefault(context.Background(), store)
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}
	return printPreferences(cmd, p)
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	store, _, err := openPreferenceStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	p, err := prefs.LoadOrDefault(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("invalid argument '%s': expected key=value", arg)
		}
		if err := p.Set(key, value); err != nil {
			return err
		}
	}

	if err := store.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return printPreferences(cmd, p)
}

func runPrefsReset(cmd *cobra.Command, args []string) error {
	store, _, err := openPreferenceStore()
	if err != nil {
		return err
	}
	defer store.Close()

	p := prefs.Defaults()
	if err := store.Save(context.Background(), p); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return printPreferences(cmd, p)
}

func printPreferences(cmd *cobra.Command, p prefs.Preferences) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Key", "Value"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)

	for _, key := range prefs.Keys {
		value, err := p.Get(key)
		if err != nil {
			return err
		}
		table.Append([]string{key, value})
	}
	table.Render()
	return nil
}
