package form

import (
	"errors"
	"testing"

	"github.com/muurk/stylegen/internal/transform"
	"github.com/muurk/stylegen/internal/wsclient"
)

// fakeSender records requests and optionally refuses them
type fakeSender struct {
	sent []transform.Request
	err  error
}

func (s *fakeSender) Send(req transform.Request) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, req)
	return nil
}

func TestNew(t *testing.T) {
	themes := transform.DefaultThemes()
	f := New(themes)

	if f.Theme.ID != "1" {
		t.Errorf("Theme.ID = %s, want 1", f.Theme.ID)
	}
	if f.Steps != 20 {
		t.Errorf("Steps = %d, want 20", f.Steps)
	}
	if f.Guidance != 3.0 {
		t.Errorf("Guidance = %v, want 3.0", f.Guidance)
	}
	if f.Prompt != "" || f.Image != "" || f.Err != "" || f.InFlight {
		t.Errorf("New() = %+v, want empty prompt, image, error and not in flight", f)
	}
	if len(f.Themes) != 3 {
		t.Errorf("len(Themes) = %d, want 3", len(f.Themes))
	}
}

func TestNew_NoThemes(t *testing.T) {
	f := New(nil)
	if f.Theme != (transform.Theme{}) {
		t.Errorf("Theme = %+v, want zero value", f.Theme)
	}
}

func TestSubmit_SendsComposedRequest(t *testing.T) {
	themes := transform.DefaultThemes()

	tests := []struct {
		name       string
		theme      transform.Theme
		prompt     string
		wantPrompt string
	}{
		{"artistic", themes[0], "a cat", "Artistic style transformation: a cat"},
		{"realistic", themes[1], "a dog", "Photorealistic transformation: a dog"},
		{"abstract", themes[2], "the sea", "Abstract art transformation: the sea"},
		{"whitespace kept", themes[0], " ", "Artistic style transformation:  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(themes)
			f.SelectTheme(tt.theme)
			f.EditPrompt(tt.prompt)

			s := &fakeSender{}
			sent, err := f.Submit(s)
			if err != nil || !sent {
				t.Fatalf("Submit() = %v, %v, want true, nil", sent, err)
			}
			if len(s.sent) != 1 {
				t.Fatalf("sender got %d requests, want 1", len(s.sent))
			}
			got := s.sent[0]
			if got.Prompt != tt.wantPrompt {
				t.Errorf("Prompt = %q, want %q", got.Prompt, tt.wantPrompt)
			}
			if got.NumInferenceSteps != 20 || got.GuidanceScale != 3.0 {
				t.Errorf("parameters = %d, %v, want 20, 3.0", got.NumInferenceSteps, got.GuidanceScale)
			}
			if !f.InFlight {
				t.Error("InFlight = false after Submit, want true")
			}
		})
	}
}

func TestSubmit_StepsExact(t *testing.T) {
	for steps := transform.MinSteps; steps <= transform.MaxSteps; steps++ {
		f := New(transform.DefaultThemes())
		f.EditPrompt("p")
		f.EditSteps(steps)

		s := &fakeSender{}
		if _, err := f.Submit(s); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if got := s.sent[0].NumInferenceSteps; got != steps {
			t.Errorf("NumInferenceSteps = %d, want %d", got, steps)
		}
	}
}

func TestSubmit_GuidanceExact(t *testing.T) {
	for tenths := 10; tenths <= 100; tenths++ {
		guidance := float64(tenths) / 10

		f := New(transform.DefaultThemes())
		f.EditPrompt("p")
		f.EditGuidance(guidance)

		s := &fakeSender{}
		if _, err := f.Submit(s); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if got := s.sent[0].GuidanceScale; got != guidance {
			t.Errorf("GuidanceScale = %v, want %v", got, guidance)
		}
	}
}

func TestSubmit_Gating(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		inFlight bool
		sender   Sender
	}{
		{"empty prompt", "", false, &fakeSender{}},
		{"in flight", "p", true, &fakeSender{}},
		{"no sender", "p", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(transform.DefaultThemes())
			f.EditPrompt(tt.prompt)
			f.InFlight = tt.inFlight
			before := *f

			sent, err := f.Submit(tt.sender)
			if sent || err != nil {
				t.Errorf("Submit() = %v, %v, want false, nil", sent, err)
			}
			if fs, ok := tt.sender.(*fakeSender); ok && len(fs.sent) != 0 {
				t.Errorf("sender got %d requests, want 0", len(fs.sent))
			}
			if f.InFlight != before.InFlight || f.Err != before.Err {
				t.Errorf("state changed: %+v, want %+v", f, before)
			}
		})
	}
}

func TestSubmit_SecondSubmitWhileInFlight(t *testing.T) {
	f := New(transform.DefaultThemes())
	f.EditPrompt("p")

	s := &fakeSender{}
	if sent, _ := f.Submit(s); !sent {
		t.Fatal("first Submit() = false, want true")
	}
	if sent, _ := f.Submit(s); sent {
		t.Error("second Submit() = true, want false while in flight")
	}
	if len(s.sent) != 1 {
		t.Errorf("sender got %d requests, want 1", len(s.sent))
	}
}

func TestSubmit_NegativePrompt(t *testing.T) {
	f := New(transform.DefaultThemes())
	f.EditPrompt("a cat")
	f.EditNegative("blurry")

	s := &fakeSender{}
	if _, err := f.Submit(s); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got := s.sent[0].NegativePrompt; got != "blurry" {
		t.Errorf("NegativePrompt = %q, want %q", got, "blurry")
	}

	data, err := transform.EncodeRequest(f.Request())
	if err != nil {
		t.Fatalf("EncodeRequest() error = %v", err)
	}
	want := `{"prompt":"Artistic style transformation: a cat","negative_prompt":"blurry","num_inference_steps":20,"guidance_scale":3}`
	if string(data) != want {
		t.Errorf("EncodeRequest() = %s, want %s", data, want)
	}
}

func TestSubmit_SenderRefuses(t *testing.T) {
	writeErr := errors.New("broken pipe")

	tests := []struct {
		name    string
		cause   error
		wantErr string
	}{
		{
			name:    "not ready",
			cause:   &wsclient.ClientError{Type: wsclient.ErrTypeNotReady, Message: "connection is Connecting"},
			wantErr: NotConnectedError,
		},
		{
			name:    "transport failure",
			cause:   &wsclient.ClientError{Type: wsclient.ErrTypeTransport, Message: "failed to write request", Err: writeErr},
			wantErr: "Failed to send request: Transport Error: failed to write request (caused by: broken pipe)",
		},
		{
			name:    "encode failure",
			cause:   &wsclient.ClientError{Type: wsclient.ErrTypeEncode, Message: "failed to encode request"},
			wantErr: "Failed to send request: Encode Error: failed to encode request",
		},
		{
			name:    "untyped error",
			cause:   errors.New("closed"),
			wantErr: "Failed to send request: closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(transform.DefaultThemes())
			f.EditPrompt("p")

			sent, err := f.Submit(&fakeSender{err: tt.cause})
			if sent {
				t.Error("Submit() sent = true, want false")
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("Submit() error = %v, want %v", err, tt.cause)
			}
			if f.InFlight {
				t.Error("InFlight = true after refused send, want false")
			}
			if f.Err != tt.wantErr {
				t.Errorf("Err = %q, want %q", f.Err, tt.wantErr)
			}
			if !f.CanSubmit() {
				t.Error("CanSubmit() = false after refused send, want true")
			}
		})
	}
}

func TestReceive(t *testing.T) {
	tests := []struct {
		name      string
		prevImage string
		prevErr   string
		resp      transform.Response
		wantImage string
		wantErr   string
	}{
		{
			name:      "success stores image and clears error",
			prevErr:   "old",
			resp:      transform.Response{Status: "success", ImageURL: "http://x/y.png"},
			wantImage: "http://x/y.png",
		},
		{
			name:      "success replaces previous image",
			prevImage: "http://x/old.png",
			resp:      transform.Response{Status: "success", ImageURL: "data:image/png;base64,AAAA"},
			wantImage: "data:image/png;base64,AAAA",
		},
		{
			name:      "error keeps previous image",
			prevImage: "http://x/old.png",
			resp:      transform.Response{Status: "error", Error: "boom"},
			wantImage: "http://x/old.png",
			wantErr:   "boom",
		},
		{
			name:    "error without text uses fallback",
			resp:    transform.Response{Status: "error"},
			wantErr: "Unknown error occurred",
		},
		{
			name:    "success without image is a failure",
			resp:    transform.Response{Status: "success"},
			wantErr: "Unknown error occurred",
		},
		{
			name:    "unknown status is a failure",
			resp:    transform.Response{Status: "pending", ImageURL: "u"},
			wantErr: "Unknown error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(transform.DefaultThemes())
			f.Image = tt.prevImage
			f.Err = tt.prevErr
			f.InFlight = true

			f.Receive(tt.resp)

			if f.InFlight {
				t.Error("InFlight = true after Receive, want false")
			}
			if f.Image != tt.wantImage {
				t.Errorf("Image = %q, want %q", f.Image, tt.wantImage)
			}
			if f.Err != tt.wantErr {
				t.Errorf("Err = %q, want %q", f.Err, tt.wantErr)
			}
		})
	}
}

func TestReceive_WithoutSubmit(t *testing.T) {
	f := New(transform.DefaultThemes())
	f.Receive(transform.Response{Status: "success", ImageURL: "u"})

	if f.Image != "u" || f.InFlight {
		t.Errorf("Receive() without Submit: Image = %q, InFlight = %v", f.Image, f.InFlight)
	}
}

func TestCanSubmit(t *testing.T) {
	f := New(transform.DefaultThemes())
	if f.CanSubmit() {
		t.Error("CanSubmit() = true with empty prompt")
	}
	f.EditPrompt("x")
	if !f.CanSubmit() {
		t.Error("CanSubmit() = false with prompt set")
	}
	f.InFlight = true
	if f.CanSubmit() {
		t.Error("CanSubmit() = true while in flight")
	}
}
