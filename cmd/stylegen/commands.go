package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/stylegen/internal/artifact"
	"github.com/muurk/stylegen/internal/config"
	"github.com/muurk/stylegen/internal/discovery"
	"github.com/muurk/stylegen/internal/form"
	"github.com/muurk/stylegen/internal/transform"
	"github.com/muurk/stylegen/internal/tui"
	"github.com/muurk/stylegen/internal/ui"
	"github.com/muurk/stylegen/internal/wsclient"
)

// Command flags
var (
	sendPrompt   string
	sendNegative string
	sendTheme    string
	sendSteps    int
	sendGuidance float64
	sendSave     bool
	sendTimeout  int
	scanTimeout  int
	forceInit    bool
)

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(themesCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(configCmd)
}

// sendCmd performs one generation without the interactive form
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Request a single image and print the result",
	Long: `Connect to the backend, send one transformation request and wait for
the response.

The request is built exactly as the interactive form builds it: the theme
description is prepended to the prompt. Unlike the form, parameters are
checked before anything is sent.`,
	Example: `  # Default theme and parameters
  stylegen send --prompt "a cat on a windowsill"

  # Pick a theme by name and tune the parameters
  stylegen send --prompt "harbour at night" --theme Realistic --steps 35 --guidance 7.5

  # Save the generated image to the output directory
  stylegen send --prompt "a forest" --save`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&sendPrompt, "prompt", "p", "", "Text describing the image (required)")
	sendCmd.Flags().StringVar(&sendNegative, "negative", "", "Negative prompt")
	sendCmd.Flags().StringVarP(&sendTheme, "theme", "t", "", "Theme ID or name (default from config)")
	sendCmd.Flags().IntVar(&sendSteps, "steps", 0, "Inference steps, 1-50 (default from config)")
	sendCmd.Flags().Float64Var(&sendGuidance, "guidance", 0, "Guidance scale, 1.0-10.0 (default from config)")
	sendCmd.Flags().BoolVar(&sendSave, "save", false, "Save the generated image to the output directory")
	sendCmd.Flags().IntVar(&sendTimeout, "timeout", 120, "Seconds to wait for connection and response")
	_ = sendCmd.MarkFlagRequired("prompt")
}

func runSend(cmd *cobra.Command, args []string) error {
	if err := loadSettings(cmd.Context(), false); err != nil {
		return err
	}
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	printer := ui.NewPrinter(cmd.OutOrStdout())

	f := tui.NewForm(settings)
	if sendTheme != "" {
		theme, ok := transform.FindTheme(sendTheme)
		if !ok {
			err := fmt.Errorf("unknown theme %q", sendTheme)
			printer.PrintError("Invalid arguments", err, []string{
				"List available themes: stylegen themes",
			})
			return err
		}
		f.SelectTheme(theme)
	}
	if cmd.Flags().Changed("steps") {
		f.EditSteps(sendSteps)
	}
	if cmd.Flags().Changed("guidance") {
		f.EditGuidance(sendGuidance)
	}
	f.EditPrompt(sendPrompt)
	f.EditNegative(sendNegative)

	if err := f.Request().Validate(); err != nil {
		printer.PrintError("Invalid arguments", err, []string{
			fmt.Sprintf("Steps must be %d-%d", transform.MinSteps, transform.MaxSteps),
			fmt.Sprintf("Guidance must be %.1f-%.1f", transform.MinGuidance, transform.MaxGuidance),
		})
		return err
	}

	printer.PrintHeader("Generate Image", "stylegen send", []ui.Field{
		{Key: "Endpoint", Value: settings.Endpoint},
		{Key: "Theme", Value: f.Theme.Name},
		{Key: "Steps", Value: strconv.Itoa(f.Steps)},
		{Key: "Guidance", Value: strconv.FormatFloat(f.Guidance, 'f', 1, 64)},
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), secondsFlag(sendTimeout))
	defer cancel()

	resp, err := generate(ctx, f)
	if err != nil {
		printer.PrintError("Generation failed", err, []string{
			"Check the backend is running: " + settings.Endpoint,
			"Find a backend on the network: stylegen discover",
			"Increase --timeout for slow generations",
		})
		return err
	}

	f.Receive(resp)
	if f.Err != "" {
		err := errors.New(f.Err)
		printer.PrintError("Generation failed", err, []string{
			"The backend rejected the request; see its logs for details",
		})
		return err
	}

	details := []ui.Field{
		{Key: "Image", Value: tui.AbbreviateLocation(f.Image, 60)},
	}
	if sendSave {
		path, err := artifact.Save(ctx, f.Image, settings.OutputDir)
		if err != nil {
			printer.PrintError("Image generated but not saved", err, []string{
				"Check output_dir in: stylegen config path",
			})
			return err
		}
		details = append(details, ui.Field{Key: "Saved", Value: path})
	}

	printer.PrintSuccess("Image generated", details)
	return nil
}

// generate connects, submits the form and waits for the response.
// The connection is closed before it returns.
func generate(ctx context.Context, f *form.Form) (transform.Response, error) {
	opened := make(chan struct{})
	var openOnce sync.Once
	responses := make(chan transform.Response, 1)

	client := wsclient.New(wsclient.Options{
		URL:              settings.Endpoint,
		ReconnectDelay:   settings.ReconnectDelay,
		HandshakeTimeout: settings.HandshakeTimeout,
		OnState: func(state wsclient.State) {
			if state == wsclient.StateOpen {
				openOnce.Do(func() { close(opened) })
			}
		},
	}, func(resp transform.Response) {
		select {
		case responses <- resp:
		default:
		}
	})
	defer client.Disconnect()

	select {
	case <-opened:
	case <-ctx.Done():
		return transform.Response{}, fmt.Errorf("no connection to %s after %d attempt(s): %w",
			client.URL(), client.Attempts(), ctx.Err())
	}

	sent, err := f.Submit(client)
	if err != nil {
		return transform.Response{}, fmt.Errorf("failed to send request: %w", err)
	}
	if !sent {
		return transform.Response{}, errors.New("request not sent")
	}

	select {
	case resp := <-responses:
		return resp, nil
	case <-ctx.Done():
		return transform.Response{}, fmt.Errorf("no response from %s: %w", client.URL(), ctx.Err())
	}
}

// themesCmd lists the available themes
var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rows := lo.Map(transform.DefaultThemes(), func(t transform.Theme, _ int) []string {
			return []string{t.ID, t.Name, t.Description}
		})
		printer := ui.NewPrinter(cmd.OutOrStdout())
		printer.PrintTable([]string{"ID", "NAME", "DESCRIPTION"}, rows)
	},
}

// discoverCmd lists backends on the local network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find backends on the local network",
	Long: `Find image backends using mDNS/DNS-SD discovery.

Backends advertise the ` + discovery.ServiceType + ` service. The WebSocket path is
taken from the "path" TXT record and defaults to ` + discovery.DefaultPath + `.`,
	Example: `  # Scan for 5 seconds (default)
  stylegen discover

  # Longer scan for busy networks
  stylegen discover --timeout 15`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Scan timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	printer := ui.NewPrinter(cmd.OutOrStdout())

	printer.PrintMuted(fmt.Sprintf("Scanning for %s services (timeout: %ds)...", discovery.ServiceType, scanTimeout))
	printer.Newline()

	scanner := discovery.NewScanner()
	scanner.Timeout = secondsFlag(scanTimeout)
	backends, err := scanner.Scan(cmd.Context())
	if err != nil {
		printer.PrintError("Scan failed", err, []string{
			"Check that multicast traffic is allowed on this network",
		})
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(backends) == 0 {
		printer.PrintWarning("No backends found", []ui.Field{
			{Key: "Service", Value: discovery.ServiceType},
			{Key: "Hint", Value: "Ensure the backend advertises itself via mDNS"},
			{Key: "Hint", Value: "Try increasing --timeout for slower networks"},
			{Key: "Hint", Value: "Use --endpoint to connect directly"},
		})
		return nil
	}

	rows := lo.Map(backends, func(b *discovery.Backend, _ int) []string {
		v := b.GetMetadata(discovery.MetadataVersion)
		if v == "" {
			v = "-"
		}
		return []string{b.Instance, b.Host, b.URL(), v}
	})
	printer.PrintTable([]string{"INSTANCE", "HOST", "ENDPOINT", "VERSION"}, rows)
	printer.Newline()
	printer.PrintMuted("Use 'stylegen --endpoint <url>' or 'stylegen --discover' to connect")

	return nil
}

// configCmd groups settings file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the settings file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default settings file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Long: `Print the settings in effect after applying the settings file,
environment variables and command-line flags.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing file without asking")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	printer := ui.NewPrinter(cmd.OutOrStdout())

	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	force := forceInit
	if _, err := os.Stat(path); err == nil && !force {
		force = printer.Confirm(cmd.InOrStdin(), "Overwrite settings",
			[]string{"A settings file already exists at " + path},
			"Replace it with defaults?")
		if !force {
			return nil
		}
	}

	if _, err := config.CreateDefaultConfig(force); err != nil {
		printer.PrintError("Could not write settings", err, nil)
		return err
	}

	printer.PrintSuccess("Settings written", []ui.Field{{Key: "Path", Value: path}})
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if err := loadSettings(cmd.Context(), false); err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
