// Package logging provides structured logging for stylegen.
//
// This package wraps a package-level zap logger with convenience functions.
// Logging is silent unless a level is passed to Initialize or the
// STYLEGEN_LOG_LEVEL environment variable is set, so the CLI and the
// terminal UI produce no stray output by default.
//
// # Log Levels
//
//   - Debug: frame contents, state transitions
//   - Info: connection lifecycle (open, close, reconnect), messages
//   - Warn: dropped frames, failed dials
//   - Error: sends attempted while disconnected, write failures
//
// # Usage
//
//	if err := logging.InitializeWithOutput("debug", "/tmp/stylegen.log"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
//	logging.LogConnection("ws://localhost:8000/ws", "open")
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once initialized.
package logging
