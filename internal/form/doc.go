// Package form holds the state of the image transformation form.
//
// A Form tracks the selected theme, the prompt text, the two numeric
// parameters, the most recent image and error, and whether a request is in
// flight. It knows nothing about rendering; the tui package draws it and
// forwards user input and backend responses into it.
//
// Submitting is gated: nothing is sent while a request is in flight, while
// the prompt is empty, or when no sender is available. The in-flight flag is
// cleared by the next response of either kind, or immediately when the
// sender refuses the request.
//
// Example usage:
//
//	f := form.New(transform.DefaultThemes())
//	f.EditPrompt("a cat")
//	if sent, err := f.Submit(client); err != nil {
//		// f.Err already holds the banner text
//	} else if sent {
//		// wait for the response and pass it to f.Receive
//	}
package form
