package form

import (
	"github.com/muurk/stylegen/internal/transform"
	"github.com/muurk/stylegen/internal/wsclient"
)

// Default values for the numeric controls
const (
	DefaultSteps    = 20
	DefaultGuidance = 3.0
)

// NotConnectedError is shown when a request cannot be handed to the backend
const NotConnectedError = "Not connected to server"

// Sender delivers a request to the backend.
// *wsclient.Client satisfies this interface.
type Sender interface {
	Send(req transform.Request) error
}

// Form is the state behind the transformation form
type Form struct {
	Themes   []transform.Theme
	Theme    transform.Theme
	Prompt   string
	Steps    int
	Guidance float64

	// Negative is sent as negative_prompt when non-empty
	Negative string

	// Image is the location of the most recent generated image
	Image string

	// InFlight is true between a submit and the next response
	InFlight bool

	// Err is the text of the last failure, empty when there is none
	Err string
}

// New creates a form with the first theme selected and default parameters
func New(themes []transform.Theme) *Form {
	f := &Form{
		Themes:   themes,
		Steps:    DefaultSteps,
		Guidance: DefaultGuidance,
	}
	if len(themes) > 0 {
		f.Theme = themes[0]
	}
	return f
}

// SelectTheme replaces the selected theme
func (f *Form) SelectTheme(theme transform.Theme) {
	f.Theme = theme
}

// EditPrompt replaces the prompt text
func (f *Form) EditPrompt(text string) {
	f.Prompt = text
}

// EditNegative replaces the negative prompt text
func (f *Form) EditNegative(text string) {
	f.Negative = text
}

// EditSteps replaces the step count
func (f *Form) EditSteps(steps int) {
	f.Steps = steps
}

// EditGuidance replaces the guidance scale
func (f *Form) EditGuidance(guidance float64) {
	f.Guidance = guidance
}

// CanSubmit reports whether Submit would send a request
func (f *Form) CanSubmit() bool {
	return !f.InFlight && f.Prompt != ""
}

// Request builds the request the form would send
func (f *Form) Request() transform.Request {
	return transform.Request{
		Prompt:            transform.ComposePrompt(f.Theme, f.Prompt),
		NegativePrompt:    f.Negative,
		NumInferenceSteps: f.Steps,
		GuidanceScale:     f.Guidance,
	}
}

// Submit sends the current request through s.
// It returns false without side effects when there is no sender, a request is
// already in flight, or the prompt is empty. If s refuses the request the
// in-flight flag is cleared, Err is set and the send error is returned.
func (f *Form) Submit(s Sender) (bool, error) {
	if s == nil || !f.CanSubmit() {
		return false, nil
	}

	f.InFlight = true
	if err := s.Send(f.Request()); err != nil {
		f.InFlight = false
		f.Err = sendErrorText(err)
		return false, err
	}
	return true, nil
}

// sendErrorText is the banner shown for a refused send
func sendErrorText(err error) string {
	if wsclient.IsNotReadyError(err) {
		return NotConnectedError
	}
	return "Failed to send request: " + err.Error()
}

// Receive applies a backend response. A failure keeps the previous image.
func (f *Form) Receive(resp transform.Response) {
	f.InFlight = false
	if resp.Succeeded() {
		f.Image = resp.ImageURL
		f.Err = ""
		return
	}
	f.Err = resp.FailureText()
}
