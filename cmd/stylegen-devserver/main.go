// Stylegen-devserver is a stand-in image backend for developing stylegen.
//
// It serves the same WebSocket protocol as a real backend but answers every
// request with a small placeholder PNG, so the form and the one-shot CLI can
// be exercised without a model or GPU. It can advertise itself over mDNS and
// capture traffic for inspection.
//
// Usage:
//
//	stylegen-devserver serve [flags]
//
// See 'stylegen-devserver serve --help' for available options.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/stylegen/internal/discovery"
	"github.com/muurk/stylegen/internal/logging"
	"github.com/muurk/stylegen/internal/server"
	"github.com/muurk/stylegen/internal/version"
)

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
	Use:   "stylegen-devserver",
	Short: "Stylegen Development Backend",
	Long: `A stand-in image backend for developing and testing stylegen.

The server accepts the same JSON requests as a real backend on its WebSocket
endpoint and on POST /generate, and answers each one with a deterministic
placeholder PNG encoded as a data URL.

Note: No image model is involved. Use a real backend for actual generation.`,
	Version: version.Version,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command flags
var (
	host       string
	port       int
	path       string
	delay      time.Duration
	advertise  bool
	instance   string
	logLevel   string
	captureDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development backend",
	Long: `Start the development backend and serve until interrupted.

Use --delay to simulate generation time, --advertise to make the server
discoverable with 'stylegen discover', and --capture-dir to record every
frame as JSON Lines.`,
	Example: `  # Serve on the default port
  stylegen-devserver serve

  # Slow responses, discoverable on the LAN
  stylegen-devserver serve --delay 3s --advertise

  # Record traffic for inspection
  stylegen-devserver serve --capture-dir ./captures --log-level debug`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", server.DefaultHost, "Listen address")
	serveCmd.Flags().IntVar(&port, "port", discovery.DefaultPort, "Listen port")
	serveCmd.Flags().StringVar(&path, "path", discovery.DefaultPath, "WebSocket endpoint path")
	serveCmd.Flags().DurationVar(&delay, "delay", 0, "Simulated generation time per request")
	serveCmd.Flags().BoolVar(&advertise, "advertise", false, "Advertise the server via mDNS")
	serveCmd.Flags().StringVar(&instance, "instance", server.DefaultInstance, "mDNS instance name")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&captureDir, "capture-dir", "", "Directory to write frame captures (disabled if not specified)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if !logging.ValidLevel(logLevel) {
		return fmt.Errorf("invalid --log-level %q", logLevel)
	}
	if delay < 0 {
		return fmt.Errorf("--delay must not be negative")
	}
	if path == "" || path[0] != '/' {
		return fmt.Errorf("--path must start with /")
	}

	if captureDir != "" {
		info, err := os.Stat(captureDir)
		if err == nil && !info.IsDir() {
			return fmt.Errorf("capture path is not a directory: %s", captureDir)
		}
	}

	cmd.SilenceUsage = true

	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	srv := server.New(server.Config{
		Host:       host,
		Port:       port,
		Path:       path,
		Delay:      delay,
		Advertise:  advertise,
		Instance:   instance,
		CaptureDir: captureDir,
		Version:    version.Version,
	})

	return srv.Start(cmd.Context())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stylegen-devserver %s\n", version.Full())
	},
}
