package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/penwyp/go-callflow/internal/data/backend"
	"github.com/penwyp/go-callflow/internal/data/prefs"
	"github.com/penwyp/go-callflow/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug bool

	// Backend connection
	serverURL string
	token     string

	// Display related
	timezone string

	// Local state
	homeDir      string
	prefsBackend string

	rootCmd = &cobra.Command{
		Use:   "go-callflow",
		Short: "SIP call-flow ladder console",
		Long: `go-callflow renders captured SIP traffic as call-flow ladder diagrams.

It fetches call sessions from a capture backend, merges them into one time-ordered
trace and draws the exchange between endpoints. The watch command tails live traffic
for a domain; serve exposes the same ladder geometry over HTTP.

Examples:
  go-callflow flow --sid abc123                         # Ladder of one call
  go-callflow flow --sid abc123,def456 --colors         # Two calls, coloured by session
  go-callflow flow --input call.json --output json      # Replay a saved call-detail document
  go-callflow watch --domain example.com --interval 30s # Tail live traffic
  go-callflow serve --listen :8090                      # Serve the HTTP API
  go-callflow prefs set relative=true interval=30s      # Change stored display preferences`,
		SilenceUsage: true,
	}
)

const (
	defaultHome     = "~/.go-callflow"
	defaultServer   = "http://localhost:8080"
	logFileName     = "logs/app.log"
	prefsFileName   = "preferences.json"
	prefsSQLiteName = "preferences.db"

	envServer = "CALLFLOW_SERVER"
	envToken  = "CALLFLOW_TOKEN"
)

func init() {
	// Backend connection
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr(envServer, defaultServer),
		"Capture backend base URL (env "+envServer+")")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv(envToken),
		"Backend access token (env "+envToken+")")

	// Display
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "Local",
		"Timezone for the watch status line (e.g., Asia/Shanghai, UTC)")

	// Local state
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", defaultHome,
		"Directory for logs and preferences")
	rootCmd.PersistentFlags().StringVar(&prefsBackend, "prefs-backend", "file",
		"Preference storage (file, sqlite)")

	// System and debugging
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
}

func Execute() error {
	return rootCmd.Execute()
}

// setupRuntime initializes logging and the time provider for a command run
func setupRuntime() error {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	home := expandPath(homeDir)
	logFile := filepath.Join(home, logFileName)
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	util.InitLogger(logLevel, logFile, debug)

	if err := util.InitializeTimeProvider(timezone); err != nil {
		return fmt.Errorf("failed to initialize timezone: %w", err)
	}
	util.LogDebugf("runtime ready: home=%s timezone=%s", home, timezone)
	return nil
}

// openPreferenceStore opens the configured preference store and returns the
// path of its backing file
func openPreferenceStore() (prefs.Store, string, error) {
	home := expandPath(homeDir)
	if err := ensureDir(home); err != nil {
		return nil, "", fmt.Errorf("failed to create home directory: %w", err)
	}

	switch strings.ToLower(prefsBackend) {
	case "", "file":
		path := filepath.Join(home, prefsFileName)
		store, err := prefs.NewFileStore(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open preference file: %w", err)
		}
		return store, path, nil
	case "sqlite":
		path := filepath.Join(home, prefsSQLiteName)
		store, err := prefs.NewSQLiteStore(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open preference database: %w", err)
		}
		return store, path, nil
	}
	return nil, "", fmt.Errorf("invalid prefs backend '%s': must be either 'file' or 'sqlite'", prefsBackend)
}

func newBackendClient() (*backend.Client, error) {
	client, err := backend.New(serverURL, backend.WithToken(token))
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	return client, nil
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
