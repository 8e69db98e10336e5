// Package ui provides terminal output components for the stylegen CLI.
//
// These components follow a "run once and exit" pattern used by the
// one-shot commands (send, themes, discover, config). They render styled
// output with Lipgloss but never take over the terminal; the interactive
// form lives in the tui package.
//
// # Components
//
//   - Header: Command banner showing operation name and parameters
//   - Result: Success/failure boxes with styled details
//   - Table: Aligned listing for themes and discovered backends
//   - Confirm: Yes/no prompt before overwriting files
//
// Output goes through a Printer so commands can be pointed at any writer.
//
// Example:
//
//	p := ui.NewPrinter(cmd.OutOrStdout())
//	p.PrintHeader("Generate", "stylegen send", []ui.Field{
//	    {Key: "Endpoint", Value: endpoint},
//	})
//	p.PrintSuccess("Image generated", []ui.Field{{Key: "Image", Value: path}})
//
// # Logging Integration
//
// This package expects logging to be controlled via the STYLEGEN_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly.
package ui
