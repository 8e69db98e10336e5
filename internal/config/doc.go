// Package config provides user configuration management for stylegen.
//
// This package manages a YAML settings file holding the backend endpoint,
// connection timing, the initial form values, the output directory for saved
// images and logging preferences. The file follows OS-specific conventions for
// storage location. A missing file means defaults.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/stylegen/config.yaml or $HOME/.config/stylegen/config.yaml
//   - macOS: $HOME/.config/stylegen/config.yaml
//   - Windows: %LOCALAPPDATA%\stylegen\config.yaml
//
// # Environment Overrides
//
// STYLEGEN_ENDPOINT, STYLEGEN_LOG_LEVEL and STYLEGEN_OUTPUT_DIR override the
// file. They may also be placed in a .env file in the working directory;
// variables already set in the environment win over the .env file.
//
// # Usage Example
//
//	settings, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	settings.Endpoint = "ws://gpu-box.local:8000/ws"
//	if err := settings.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// File operations are protected by a mutex to ensure atomic writes.
package config
