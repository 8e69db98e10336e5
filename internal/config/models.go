package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/muurk/stylegen/internal/logging"
	"github.com/muurk/stylegen/internal/transform"
)

// CurrentVersion is the settings file format version
const CurrentVersion = 1

// Default values written by NewSettings
const (
	DefaultEndpoint         = "ws://localhost:8000/ws"
	DefaultReconnectDelay   = 5 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultSteps            = 20
	DefaultGuidance         = 3.0
)

// Settings represents the entire user configuration file.
type Settings struct {
	Version          int           `yaml:"version"`
	Endpoint         string        `yaml:"endpoint"`             // WebSocket URL of the backend
	ReconnectDelay   time.Duration `yaml:"reconnect_delay"`      // Fixed wait between reconnect attempts
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`    // Bound on each connection attempt
	Defaults         *FormDefaults `yaml:"defaults,omitempty"`   // Initial form values
	OutputDir        string        `yaml:"output_dir,omitempty"` // Where saved images go
	LogLevel         string        `yaml:"log_level,omitempty"`  // Empty disables logging
	LogFile          string        `yaml:"log_file,omitempty"`   // Log destination for the TUI
}

// FormDefaults are the values the form starts with.
type FormDefaults struct {
	Theme    string  `yaml:"theme"`    // Theme ID
	Steps    int     `yaml:"steps"`    // num_inference_steps
	Guidance float64 `yaml:"guidance"` // guidance_scale
}

// NewSettings creates Settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:          CurrentVersion,
		Endpoint:         DefaultEndpoint,
		ReconnectDelay:   DefaultReconnectDelay,
		HandshakeTimeout: DefaultHandshakeTimeout,
		Defaults:         newFormDefaults(),
	}
}

func newFormDefaults() *FormDefaults {
	return &FormDefaults{
		Theme:    transform.DefaultThemeID,
		Steps:    DefaultSteps,
		Guidance: DefaultGuidance,
	}
}

// fillDefaults replaces zero values with defaults
func (s *Settings) fillDefaults() {
	if s.Endpoint == "" {
		s.Endpoint = DefaultEndpoint
	}
	if s.ReconnectDelay == 0 {
		s.ReconnectDelay = DefaultReconnectDelay
	}
	if s.HandshakeTimeout == 0 {
		s.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if s.Defaults == nil {
		s.Defaults = newFormDefaults()
	}
}

// Theme returns the configured default theme, falling back to the first theme.
func (s *Settings) Theme() transform.Theme {
	if s.Defaults != nil {
		if theme, ok := transform.FindTheme(s.Defaults.Theme); ok {
			return theme
		}
	}
	return transform.DefaultThemes()[0]
}

// Validate checks that the settings are usable.
// All problems are reported together.
func (s *Settings) Validate() error {
	var errs []error

	if s.Version != CurrentVersion {
		errs = append(errs, fmt.Errorf("unsupported config version: %d (expected %d)", s.Version, CurrentVersion))
	}

	if err := ValidateEndpoint(s.Endpoint); err != nil {
		errs = append(errs, err)
	}

	if s.ReconnectDelay <= 0 {
		errs = append(errs, fmt.Errorf("reconnect_delay must be positive, got %s", s.ReconnectDelay))
	}
	if s.HandshakeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("handshake_timeout must be positive, got %s", s.HandshakeTimeout))
	}

	if d := s.Defaults; d != nil {
		if _, ok := transform.FindTheme(d.Theme); !ok {
			errs = append(errs, fmt.Errorf("unknown default theme %q", d.Theme))
		}
		if d.Steps < transform.MinSteps || d.Steps > transform.MaxSteps {
			errs = append(errs, fmt.Errorf("default steps must be between %d and %d, got %d",
				transform.MinSteps, transform.MaxSteps, d.Steps))
		}
		if d.Guidance < transform.MinGuidance || d.Guidance > transform.MaxGuidance {
			errs = append(errs, fmt.Errorf("default guidance must be between %.1f and %.1f, got %g",
				transform.MinGuidance, transform.MaxGuidance, d.Guidance))
		}
	}

	if s.LogLevel != "" {
		if !logging.ValidLevel(s.LogLevel) {
			errs = append(errs, fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", s.LogLevel))
		}
	}

	return errors.Join(errs...)
}

// ValidateEndpoint checks that endpoint is an absolute ws:// or wss:// URL
func ValidateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("invalid endpoint %q: scheme must be ws or wss", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	return nil
}
