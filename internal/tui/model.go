package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/muurk/stylegen/internal/artifact"
	"github.com/muurk/stylegen/internal/form"
	"github.com/muurk/stylegen/internal/logging"
	"github.com/muurk/stylegen/internal/transform"
	"github.com/muurk/stylegen/internal/ui"
	"github.com/muurk/stylegen/internal/wsclient"
)

// field identifies a focusable control
type field int

const (
	fieldTheme field = iota
	fieldPrompt
	fieldSteps
	fieldGuidance
	fieldGenerate
	fieldCount
)

// guidanceStep is the slider increment for the guidance scale
const guidanceStep = 0.1

// Model is the form screen
type Model struct {
	// Form state
	Form   *form.Form
	sender form.Sender
	events <-chan tea.Msg

	// Connection state
	Endpoint  string
	ConnState wsclient.State

	// Where ctrl+s writes images
	OutputDir string

	// Last save result or other transient message
	Notice string

	// Last ctrl+s failure, kept apart from Form.Err which mirrors the backend
	SaveErr string

	// UI state
	focus   field
	Prompt  textinput.Model
	Spinner spinner.Model
	bar     progress.Model
	Width   int
	Height  int
	Help    help.Model
	Keys    formKeyMap
}

// NewModel creates the form screen.
// sender may be nil, in which case Generate does nothing.
// events may be nil when no client is attached.
func NewModel(f *form.Form, sender form.Sender, events <-chan tea.Msg) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	prompt := textinput.New()
	prompt.Placeholder = "Describe the image you want..."
	prompt.Width = 50
	prompt.SetValue(f.Prompt)
	prompt.Focus()

	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(sliderWidth),
		progress.WithoutPercentage(),
	)

	return Model{
		Form:      f,
		sender:    sender,
		events:    events,
		ConnState: wsclient.StateConnecting,
		focus:     fieldPrompt,
		Prompt:    prompt,
		Spinner:   s,
		bar:       bar,
		Help:      help.New(),
		Keys:      newFormKeyMap(),
	}
}

// Init initializes the form screen
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.events != nil {
		cmds = append(cmds, waitForEvent(m.events))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case responseMsg:
		m.Form.Receive(msg.resp)
		m.Notice, m.SaveErr = "", ""
		return m, m.waitForEvent()

	case connStateMsg:
		m.ConnState = msg.state
		return m, m.waitForEvent()

	case imageSavedMsg:
		if msg.err != nil {
			m.Notice = ""
			m.SaveErr = "Failed to save image: " + msg.err.Error()
		} else {
			m.Notice, m.SaveErr = "Saved to "+msg.path, ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.Form.InFlight {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if m.focus == fieldPrompt {
		var cmd tea.Cmd
		m.Prompt, cmd = m.Prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateKeys handles keyboard input
func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Generate):
		return m.submit()

	case key.Matches(msg, m.Keys.Save):
		return m.save()

	case key.Matches(msg, m.Keys.Next):
		return m.setFocus((m.focus + 1) % fieldCount)

	case key.Matches(msg, m.Keys.Prev):
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	}

	if m.focus == fieldPrompt {
		var cmd tea.Cmd
		m.Prompt, cmd = m.Prompt.Update(msg)
		m.Form.EditPrompt(m.Prompt.Value())
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Left):
		m.adjust(-1)
	case key.Matches(msg, m.Keys.Right):
		m.adjust(1)
	}
	return m, nil
}

func (m Model) setFocus(f field) (tea.Model, tea.Cmd) {
	m.focus = f
	if f == fieldPrompt {
		return m, m.Prompt.Focus()
	}
	m.Prompt.Blur()
	return m, nil
}

// adjust moves the focused selector or slider by delta steps.
// Sliders clamp at their bounds; the theme selector wraps.
func (m *Model) adjust(delta int) {
	switch m.focus {
	case fieldTheme:
		themes := m.Form.Themes
		if len(themes) == 0 {
			return
		}
		_, idx, _ := lo.FindIndexOf(themes, func(t transform.Theme) bool {
			return t.ID == m.Form.Theme.ID
		})
		if idx < 0 {
			idx = 0
		}
		idx = (idx + delta + len(themes)) % len(themes)
		m.Form.SelectTheme(themes[idx])

	case fieldSteps:
		m.Form.EditSteps(lo.Clamp(m.Form.Steps+delta, transform.MinSteps, transform.MaxSteps))

	case fieldGuidance:
		g := m.Form.Guidance + float64(delta)*guidanceStep
		g = math.Round(g*10) / 10
		m.Form.EditGuidance(lo.Clamp(g, transform.MinGuidance, transform.MaxGuidance))
	}
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	sent, err := m.Form.Submit(m.sender)
	if err != nil {
		logging.Warn("Generate request not sent", zap.Error(err))
		return m, nil
	}
	if !sent {
		return m, nil
	}
	m.Notice, m.SaveErr = "", ""
	return m, m.Spinner.Tick
}

func (m Model) save() (tea.Model, tea.Cmd) {
	location := m.Form.Image
	if location == "" {
		return m, nil
	}
	dir := m.OutputDir
	return m, func() tea.Msg {
		path, err := artifact.Save(context.Background(), location, dir)
		return imageSavedMsg{path: path, err: err}
	}
}

func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return waitForEvent(m.events)
}

// View renders the form screen
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTheme())
	b.WriteString("\n\n")
	b.WriteString(m.renderRow(fieldPrompt, "Prompt", m.Prompt.View()))
	b.WriteString("\n\n")
	b.WriteString(m.renderRow(fieldSteps, "Steps",
		m.bar.ViewAs(fraction(float64(m.Form.Steps), transform.MinSteps, transform.MaxSteps))+
			ValueStyle.Render(fmt.Sprintf("  %d", m.Form.Steps))))
	b.WriteString("\n\n")
	b.WriteString(m.renderRow(fieldGuidance, "Guidance",
		m.bar.ViewAs(fraction(m.Form.Guidance, transform.MinGuidance, transform.MaxGuidance))+
			ValueStyle.Render(fmt.Sprintf("  %.1f", m.Form.Guidance))))
	b.WriteString("\n\n")
	b.WriteString(m.renderGenerate())
	b.WriteString("\n\n")
	b.WriteString(m.renderResult())

	content := SectionStyle.Render(b.String())
	return RenderApplicationContainer(content, m.Help.View(m.Keys), m.Width, m.Height)
}

func (m Model) renderRow(f field, label, value string) string {
	labelStyle := LabelStyle
	if m.focus == f {
		labelStyle = FocusedLabelStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

func (m Model) renderTheme() string {
	value := fmt.Sprintf("◀ %s ▶", m.Form.Theme.Name)
	if m.focus == fieldTheme {
		value = FocusedLabelStyle.UnsetWidth().Render(value)
	} else {
		value = ValueStyle.Render(value)
	}
	return m.renderRow(fieldTheme, "Theme", value+"  "+DescriptionStyle.Render(m.Form.Theme.Description))
}

func (m Model) renderGenerate() string {
	var button string
	switch {
	case m.Form.InFlight:
		button = DisabledButtonStyle.Render(m.Spinner.View() + " Generating...")
	case !m.Form.CanSubmit():
		button = DisabledButtonStyle.Render("Generate")
	case m.focus == fieldGenerate:
		button = FocusedButtonStyle.Render("Generate")
	default:
		button = ButtonStyle.Render("Generate")
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, LabelStyle.Render(""), button, "   ", m.renderConnState())
}

func (m Model) renderConnState() string {
	var color lipgloss.TerminalColor
	var label string
	switch m.ConnState {
	case wsclient.StateOpen:
		color, label = ui.SuccessColor, "Connected"
	case wsclient.StateConnecting:
		color, label = ui.WarningColor, "Connecting"
	default:
		color, label = ui.ErrorColor, "Disconnected"
	}
	dot := lipgloss.NewStyle().Foreground(color).Render("●")
	text := DescriptionStyle.Render(label)
	if m.Endpoint != "" {
		text = DescriptionStyle.Render(label + " · " + m.Endpoint)
	}
	return dot + " " + text
}

func (m Model) renderResult() string {
	var lines []string

	if m.Form.Image != "" {
		lines = append(lines, m.renderRow(-1, "Image", ValueStyle.Render(AbbreviateLocation(m.Form.Image, 60))))
	}
	if m.Notice != "" {
		lines = append(lines, NoticeStyle.Render(m.Notice))
	}
	if m.SaveErr != "" {
		lines = append(lines, SaveErrorStyle.Render(m.SaveErr))
	}
	if m.Form.Err != "" {
		lines = append(lines, ErrorBannerStyle.Render("✗ "+m.Form.Err))
	}
	return strings.Join(lines, "\n")
}

// fraction maps v in [low, high] to [0, 1]
func fraction(v, low, high float64) float64 {
	if high <= low {
		return 0
	}
	return lo.Clamp((v-low)/(high-low), 0, 1)
}

// AbbreviateLocation shortens an image location for display.
// Data URLs are reduced to their media type and payload size.
func AbbreviateLocation(location string, maxLen int) string {
	if meta, payload, ok := strings.Cut(location, ","); ok && strings.HasPrefix(meta, "data:") {
		size := len(payload) * 3 / 4
		return fmt.Sprintf("%s,… (%s)", meta, formatBytes(size))
	}
	return logging.Truncate(location, maxLen)
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
