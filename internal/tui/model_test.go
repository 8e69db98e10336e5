package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/stylegen/internal/config"
	"github.com/muurk/stylegen/internal/form"
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

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyLeft     = tea.KeyMsg{Type: tea.KeyLeft}
	keyRight    = tea.KeyMsg{Type: tea.KeyRight}
	keyCtrlS    = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(sender form.Sender) Model {
	return NewModel(form.New(transform.DefaultThemes()), sender, nil)
}

// press feeds messages through Update and returns the resulting model and last command
func press(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		if !ok {
			t.Fatalf("Update() returned %T, want Model", next)
		}
	}
	return m, cmd
}

func focusField(t *testing.T, m Model, f field) Model {
	t.Helper()
	for i := 0; m.focus != f && i < int(fieldCount); i++ {
		m, _ = press(t, m, keyTab)
	}
	if m.focus != f {
		t.Fatalf("could not focus field %d", f)
	}
	return m
}

func TestNewModel(t *testing.T) {
	m := newTestModel(nil)

	if m.focus != fieldPrompt {
		t.Errorf("initial focus = %d, want prompt", m.focus)
	}
	if !m.Prompt.Focused() {
		t.Error("prompt input should be focused initially")
	}
	if m.ConnState != wsclient.StateConnecting {
		t.Errorf("ConnState = %v, want connecting", m.ConnState)
	}
}

func TestModel_TypingEditsPrompt(t *testing.T) {
	m, _ := press(t, newTestModel(nil), runes("a cat"))

	if m.Form.Prompt != "a cat" {
		t.Errorf("Form.Prompt = %q, want %q", m.Form.Prompt, "a cat")
	}
}

func TestModel_GenerateSendsRequest(t *testing.T) {
	sender := &fakeSender{}
	m, cmd := press(t, newTestModel(sender), runes("a cat"), keyEnter)

	if len(sender.sent) != 1 {
		t.Fatalf("sender got %d requests, want 1", len(sender.sent))
	}
	want := transform.Request{
		Prompt:            "Artistic style transformation: a cat",
		NumInferenceSteps: 20,
		GuidanceScale:     3.0,
	}
	if sender.sent[0] != want {
		t.Errorf("request = %+v, want %+v", sender.sent[0], want)
	}
	if !m.Form.InFlight {
		t.Error("Form.InFlight = false after generate")
	}
	if cmd == nil {
		t.Error("generate should start the spinner")
	}
	if !strings.Contains(m.View(), "Generating...") {
		t.Error("View() should show Generating... while in flight")
	}
}

func TestModel_GenerateGating(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		sender *fakeSender
		twice  bool
		want   int
	}{
		{"empty prompt", "", &fakeSender{}, false, 0},
		{"second press while in flight", "x", &fakeSender{}, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := []tea.Msg{}
			if tt.prompt != "" {
				msgs = append(msgs, runes(tt.prompt))
			}
			msgs = append(msgs, keyEnter)
			if tt.twice {
				msgs = append(msgs, keyEnter)
			}

			press(t, newTestModel(tt.sender), msgs...)

			if len(tt.sender.sent) != tt.want {
				t.Errorf("sender got %d requests, want %d", len(tt.sender.sent), tt.want)
			}
		})
	}
}

func TestModel_GenerateWithoutSender(t *testing.T) {
	m, _ := press(t, newTestModel(nil), runes("x"), keyEnter)

	if m.Form.InFlight {
		t.Error("Form.InFlight = true without a sender")
	}
}

func TestModel_GenerateNotConnected(t *testing.T) {
	sender := &fakeSender{err: &wsclient.ClientError{Type: wsclient.ErrTypeNotReady, Message: "connection is Closed"}}
	m, _ := press(t, newTestModel(sender), runes("x"), keyEnter)

	if m.Form.InFlight {
		t.Error("Form.InFlight = true after a refused send")
	}
	if m.Form.Err != form.NotConnectedError {
		t.Errorf("Form.Err = %q, want %q", m.Form.Err, form.NotConnectedError)
	}
	if !strings.Contains(m.View(), form.NotConnectedError) {
		t.Error("View() should show the not-connected banner")
	}
}

func TestModel_Responses(t *testing.T) {
	sender := &fakeSender{}
	m, _ := press(t, newTestModel(sender), runes("x"), keyEnter)

	m, _ = press(t, m, responseMsg{resp: transform.Response{Status: "success", ImageURL: "http://x/1.png"}})
	if m.Form.InFlight || m.Form.Image != "http://x/1.png" || m.Form.Err != "" {
		t.Fatalf("after success: %+v", m.Form)
	}
	if !strings.Contains(m.View(), "http://x/1.png") {
		t.Error("View() should show the image location")
	}

	m, _ = press(t, m, keyEnter, responseMsg{resp: transform.Response{Status: "error"}})
	if m.Form.Image != "http://x/1.png" {
		t.Errorf("Form.Image = %q, want previous image kept", m.Form.Image)
	}
	if m.Form.Err != transform.FallbackError {
		t.Errorf("Form.Err = %q, want %q", m.Form.Err, transform.FallbackError)
	}
	if !strings.Contains(m.View(), transform.FallbackError) {
		t.Error("View() should show the error banner")
	}
}

func TestModel_ConnState(t *testing.T) {
	tests := []struct {
		state wsclient.State
		want  string
	}{
		{wsclient.StateOpen, "Connected"},
		{wsclient.StateConnecting, "Connecting"},
		{wsclient.StateClosed, "Disconnected"},
	}

	for _, tt := range tests {
		m, _ := press(t, newTestModel(nil), connStateMsg{state: tt.state})
		if m.ConnState != tt.state {
			t.Errorf("ConnState = %v, want %v", m.ConnState, tt.state)
		}
		if !strings.Contains(m.renderConnState(), tt.want) {
			t.Errorf("renderConnState() for %v missing %q", tt.state, tt.want)
		}
	}
}

func TestModel_FocusCycles(t *testing.T) {
	m := newTestModel(nil)

	m, _ = press(t, m, keyTab)
	if m.focus != fieldSteps {
		t.Errorf("focus after tab = %d, want steps", m.focus)
	}
	if m.Prompt.Focused() {
		t.Error("prompt should blur when focus leaves it")
	}

	m, _ = press(t, m, keyShiftTab, keyShiftTab)
	if m.focus != fieldTheme {
		t.Errorf("focus after two shift+tab = %d, want theme", m.focus)
	}

	m, _ = press(t, m, keyShiftTab)
	if m.focus != fieldGenerate {
		t.Errorf("focus should wrap to generate, got %d", m.focus)
	}
}

func TestModel_ThemeSelector(t *testing.T) {
	m := focusField(t, newTestModel(nil), fieldTheme)

	m, _ = press(t, m, keyRight)
	if m.Form.Theme.ID != "2" {
		t.Errorf("theme after right = %s, want 2", m.Form.Theme.ID)
	}

	m, _ = press(t, m, keyRight, keyRight)
	if m.Form.Theme.ID != "1" {
		t.Errorf("theme should wrap to 1, got %s", m.Form.Theme.ID)
	}

	m, _ = press(t, m, keyLeft)
	if m.Form.Theme.ID != "3" {
		t.Errorf("theme after left = %s, want 3", m.Form.Theme.ID)
	}
}

func TestModel_StepsSliderClamps(t *testing.T) {
	m := focusField(t, newTestModel(nil), fieldSteps)

	m, _ = press(t, m, keyRight)
	if m.Form.Steps != 21 {
		t.Errorf("Steps = %d, want 21", m.Form.Steps)
	}

	for i := 0; i < 100; i++ {
		m, _ = press(t, m, keyRight)
	}
	if m.Form.Steps != transform.MaxSteps {
		t.Errorf("Steps = %d, want clamp at %d", m.Form.Steps, transform.MaxSteps)
	}

	for i := 0; i < 100; i++ {
		m, _ = press(t, m, keyLeft)
	}
	if m.Form.Steps != transform.MinSteps {
		t.Errorf("Steps = %d, want clamp at %d", m.Form.Steps, transform.MinSteps)
	}
}

func TestModel_GuidanceSliderClamps(t *testing.T) {
	m := focusField(t, newTestModel(nil), fieldGuidance)

	m, _ = press(t, m, keyRight)
	if m.Form.Guidance != 3.1 {
		t.Errorf("Guidance = %v, want 3.1", m.Form.Guidance)
	}

	m, _ = press(t, m, keyLeft, keyLeft)
	if m.Form.Guidance != 2.9 {
		t.Errorf("Guidance = %v, want 2.9", m.Form.Guidance)
	}

	for i := 0; i < 200; i++ {
		m, _ = press(t, m, keyRight)
	}
	if m.Form.Guidance != transform.MaxGuidance {
		t.Errorf("Guidance = %v, want clamp at %v", m.Form.Guidance, transform.MaxGuidance)
	}

	for i := 0; i < 200; i++ {
		m, _ = press(t, m, keyLeft)
	}
	if m.Form.Guidance != transform.MinGuidance {
		t.Errorf("Guidance = %v, want clamp at %v", m.Form.Guidance, transform.MinGuidance)
	}
}

func TestModel_SliderValuesReachRequest(t *testing.T) {
	sender := &fakeSender{}
	m, _ := press(t, newTestModel(sender), runes("x"))
	m = focusField(t, m, fieldGuidance)
	m, _ = press(t, m, keyRight, keyRight, keyRight, keyRight, keyRight)
	m = focusField(t, m, fieldSteps)
	m, _ = press(t, m, keyLeft)
	press(t, m, keyEnter)

	if len(sender.sent) != 1 {
		t.Fatalf("sender got %d requests, want 1", len(sender.sent))
	}
	got := sender.sent[0]
	if got.NumInferenceSteps != 19 || got.GuidanceScale != 3.5 {
		t.Errorf("request parameters = %d, %v, want 19, 3.5", got.NumInferenceSteps, got.GuidanceScale)
	}
}

func TestModel_Quit(t *testing.T) {
	_, cmd := press(t, newTestModel(nil), keyEsc)
	if cmd == nil {
		t.Fatal("esc should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should quit")
	}
}

func TestModel_SaveImage(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(nil)
	m.OutputDir = dir

	// Nothing to save yet
	if _, cmd := press(t, m, keyCtrlS); cmd != nil {
		t.Error("ctrl+s without an image should do nothing")
	}

	m, _ = press(t, m, responseMsg{resp: transform.Response{Status: "success", ImageURL: "data:image/png;base64,aGVsbG8="}})
	_, cmd := press(t, m, keyCtrlS)
	if cmd == nil {
		t.Fatal("ctrl+s with an image should return a save command")
	}

	msg, ok := cmd().(imageSavedMsg)
	if !ok {
		t.Fatalf("save command returned %T, want imageSavedMsg", msg)
	}
	if msg.err != nil {
		t.Fatalf("save error = %v", msg.err)
	}
	if filepath.Dir(msg.path) != dir {
		t.Errorf("saved to %s, want file in %s", msg.path, dir)
	}
	if data, _ := os.ReadFile(msg.path); string(data) != "hello" {
		t.Errorf("saved data = %q, want hello", data)
	}

	m, _ = press(t, m, msg)
	if !strings.Contains(m.Notice, msg.path) {
		t.Errorf("Notice = %q, want saved path", m.Notice)
	}
}

func TestModel_SaveFailureKeepsBackendError(t *testing.T) {
	m := newTestModel(&fakeSender{})

	m, _ = press(t, m, responseMsg{resp: transform.Response{Status: "error", Error: "Generation failed"}})
	m, _ = press(t, m, imageSavedMsg{err: errors.New("disk full")})

	if m.Form.Err != "Generation failed" {
		t.Errorf("Form.Err = %q, want backend error kept", m.Form.Err)
	}
	if !strings.Contains(m.SaveErr, "disk full") {
		t.Errorf("SaveErr = %q, want save failure", m.SaveErr)
	}
	view := m.View()
	if !strings.Contains(view, "Generation failed") || !strings.Contains(view, "disk full") {
		t.Errorf("View() should show both the backend error and the save failure")
	}

	m, _ = press(t, m, imageSavedMsg{path: "/tmp/out.png"})
	if m.SaveErr != "" {
		t.Errorf("SaveErr after successful save = %q, want empty", m.SaveErr)
	}
}

func TestEventBridge(t *testing.T) {
	b := newEventBridge()

	b.onState(wsclient.StateOpen)
	b.onMessage(transform.Response{Status: "success", ImageURL: "u"})

	cmd := waitForEvent(b.ch)
	if msg, ok := cmd().(connStateMsg); !ok || msg.state != wsclient.StateOpen {
		t.Errorf("first event = %#v, want open state", msg)
	}
	if msg, ok := cmd().(responseMsg); !ok || msg.resp.ImageURL != "u" {
		t.Errorf("second event = %#v, want response", msg)
	}

	// A full channel must not block once shut down
	for i := 0; i < cap(b.ch); i++ {
		b.ch <- connStateMsg{}
	}
	b.shutdown()

	done := make(chan struct{})
	go func() {
		b.onState(wsclient.StateClosed)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forward blocked after shutdown")
	}

	close(b.ch)
	for range b.ch {
	}
	if msg := waitForEvent(b.ch)(); msg != nil {
		t.Errorf("waitForEvent on closed channel = %#v, want nil", msg)
	}
}

func TestAbbreviateLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     string
	}{
		{"short url", "http://x/y.png", "http://x/y.png"},
		{"long url", "http://example.com/" + strings.Repeat("a", 100), "http://example.com/" + strings.Repeat("a", 41) + "..."},
		{"data url", "data:image/png;base64," + strings.Repeat("A", 4096), "data:image/png;base64,… (3.0 KB)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AbbreviateLocation(tt.location, 60); got != tt.want {
				t.Errorf("AbbreviateLocation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewForm(t *testing.T) {
	settings := config.NewSettings()
	settings.Defaults.Theme = "3"
	settings.Defaults.Steps = 42
	settings.Defaults.Guidance = 6.5

	f := NewForm(settings)
	if f.Theme.ID != "3" || f.Steps != 42 || f.Guidance != 6.5 {
		t.Errorf("NewForm() = theme %s, steps %d, guidance %v", f.Theme.ID, f.Steps, f.Guidance)
	}
	if len(f.Themes) != 3 {
		t.Errorf("len(Themes) = %d, want 3", len(f.Themes))
	}
}

func TestView_FitsContainer(t *testing.T) {
	m, _ := press(t, newTestModel(nil), tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()

	for _, want := range []string{AppName, "Theme", "Prompt", "Steps", "Guidance", "Generate", "Artistic"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
