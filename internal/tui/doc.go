// Package tui implements the interactive transformation form.
//
// The form is a single Bubble Tea screen with five focusable fields: the
// theme selector, the prompt input, the steps and guidance sliders, and the
// Generate button. Below them sit the connection indicator, the most recent
// image location and the error banner.
//
// # Architecture
//
// State lives in a form.Form; this package only renders it and turns key
// presses into form edits. The WebSocket client runs its own goroutine, so
// its callbacks never touch the model directly. They push messages onto a
// channel and a waitForEvent command feeds them into Update one at a time,
// keeping every mutation on the Bubble Tea loop.
//
// # Key Bindings
//
//	tab / shift+tab   move between fields
//	←/→               change theme or slider value
//	enter             generate
//	ctrl+s            save the current image
//	ctrl+c / esc      quit
//
// # Screen Layout
//
// Every view is wrapped by RenderApplicationContainer, which draws the
// application header, the bordered content area and the help footer.
//
// # Lifecycle
//
// Run builds the client when the screen mounts and disconnects it on every
// exit path, including context cancellation and program errors.
package tui
