// Stylegen is a terminal front-end for a style-transfer image backend.
//
// It keeps a WebSocket connection to the backend, lets the user pick a theme,
// write a prompt and tune the generation parameters, and shows the location
// of each generated image.
//
// Usage:
//
//	stylegen [command] [flags]
//
// Running without arguments opens the interactive form.
// See 'stylegen --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/stylegen/internal/config"
	"github.com/muurk/stylegen/internal/discovery"
	"github.com/muurk/stylegen/internal/logging"
	"github.com/muurk/stylegen/internal/tui"
	"github.com/muurk/stylegen/internal/version"
)

// tuiLogFile is used when logging is enabled for the form but no file is configured
const tuiLogFile = "stylegen.log"

// Global flags
var (
	endpointFlag string
	logLevelFlag string
	discoverFlag bool
)

// settings is resolved once per invocation by loadSettings
var settings *config.Settings

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stylegen",
	Short: "Style Transfer Image Generator",
	Long: `A terminal front-end for a style-transfer image generation backend.

Pick one of the fixed themes, describe the image you want, tune the number of
inference steps and the guidance scale, and request a generation over a
persistent WebSocket connection.

If no command is specified, the interactive form will launch automatically.`,
	Version: version.Version,
	Example: `  # Open the form against the configured backend
  stylegen

  # Use a specific backend
  stylegen --endpoint ws://gpu-box.local:8000/ws

  # Find a backend on the local network first
  stylegen --discover

  # One-shot generation
  stylegen send --prompt "a lighthouse at dusk" --theme Abstract --save`,
	RunE: runForm,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&endpointFlag, "endpoint", "", "Backend WebSocket URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&discoverFlag, "discover", false, "Locate the backend via mDNS")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stylegen %s\n", version.Full())
	},
}

func runForm(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	if err := loadSettings(cmd.Context(), true); err != nil {
		return err
	}

	return tui.Run(cmd.Context(), settings)
}

// loadSettings reads the config file, applies flag overrides, optionally
// resolves the endpoint via mDNS, and starts logging.
// The form owns the terminal, so interactive sessions log to a file.
func loadSettings(ctx context.Context, interactive bool) error {
	s, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if endpointFlag != "" {
		s.Endpoint = endpointFlag
	}
	if logLevelFlag != "" {
		s.LogLevel = logLevelFlag
	}

	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logFile := s.LogFile
	if interactive && logFile == "" && s.LogLevel != "" {
		if dir, err := config.GetConfigDir(); err == nil && os.MkdirAll(dir, 0o700) == nil {
			logFile = filepath.Join(dir, tuiLogFile)
		}
	}
	if err := logging.InitializeWithOutput(s.LogLevel, logFile); err != nil {
		return err
	}

	if discoverFlag {
		if !interactive {
			fmt.Printf("Searching for a backend (timeout: %s)...\n", discovery.DefaultScanTimeout)
		}
		backend, err := discovery.FindBackend(ctx, discovery.DefaultScanTimeout)
		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}
		s.Endpoint = backend.URL()
		logging.Info("Using discovered backend",
			zap.Stringer("backend", backend),
			zap.String("endpoint", s.Endpoint),
		)
	}

	settings = s
	return nil
}

// secondsFlag converts an integer seconds flag to a duration
func secondsFlag(n int) time.Duration {
	return time.Duration(n) * time.Second
}
