package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/comandaflow/timetrack/internal/config"
	"github.com/comandaflow/timetrack/internal/debug"
	"github.com/comandaflow/timetrack/internal/telemetry"
	"github.com/comandaflow/timetrack/internal/ui"
)

var (
	jsonOutput  bool
	verboseFlag bool // Enable verbose/debug output
	quietFlag   bool // Suppress non-essential output
	configPath  string
	tasksDir    string
	timezone    string

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc

	cfg    *config.Config
	logger = slog.New(slog.DiscardHandler)
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $TT_CONFIG, ./.tt/config.yaml, $XDG_CONFIG_HOME/tt/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&tasksDir, "tasks-dir", "", "Directory holding the task documents (overrides tasks.path)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "", "IANA timezone for session times (overrides timezone)")

	rootCmd.AddGroup(&cobra.Group{ID: "tracking", Title: "Time Tracking:"})
	rootCmd.AddGroup(&cobra.Group{ID: "views", Title: "Views:"})
	rootCmd.AddGroup(&cobra.Group{ID: "setup", Title: "Setup & Configuration:"})
}

var rootCmd = &cobra.Command{
	Use:   "tt",
	Short: "tt - time tracking for GitHub issues",
	Long: `Track work sessions on GitHub issues in plain markdown task documents.

Each task document carries a "Time" section with estimates, the tracked
total and the session list. Every command updates the document and pushes
the result to the issue and its Projects board.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupSignalContext()
		applyVerbosityFlags()
		loadConfig()
		ui.ApplyColorProfile()

		if err := telemetry.Init(rootCtx, "tt", Version); err != nil {
			WarnError("%v", err)
		}
		logger = debug.NewLogger(os.Stderr)
		debug.Logf("config: %s", configSource())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdownTelemetry()
		if rootCancel != nil {
			rootCancel()
		}
	},
}

func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// applyVerbosityFlags propagates --verbose and --quiet to the debug package
// so the logger and PrintNormal respect them.
func applyVerbosityFlags() {
	debug.SetVerbose(verboseFlag)
	debug.SetQuiet(quietFlag)
}

// loadConfig reads the config file and environment, then applies flag
// overrides on top.
func loadConfig() {
	if err := config.Initialize(configPath); err != nil {
		FatalErrorWithHint(err.Error(), "Pass an existing file with --config or unset TT_CONFIG")
	}
	if tasksDir != "" {
		config.Set("tasks.path", tasksDir)
	}
	if timezone != "" {
		config.Set("timezone", timezone)
	}

	loaded, err := config.Load()
	if err != nil {
		FatalError("%v", err)
	}
	cfg = loaded
}

func configSource() string {
	if f := config.ConfigFileUsed(); f != "" {
		return f
	}
	return "defaults and environment"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}
