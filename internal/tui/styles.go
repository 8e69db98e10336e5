package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/stylegen/internal/ui"
	"github.com/muurk/stylegen/internal/version"
)

// Application branding constants
const (
	AppName = "STYLEGEN"
	RepoURL = "github.com/muurk/stylegen"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants for responsive terminal width
const (
	DefaultWidth  = 80
	DefaultHeight = 24
	labelWidth    = 11
	sliderWidth   = 30
)

// Common styles
var (
	LabelStyle = lipgloss.NewStyle().Foreground(ui.MutedColor).Width(labelWidth)

	FocusedLabelStyle = lipgloss.NewStyle().Foreground(ui.PrimaryColor).Bold(true).Width(labelWidth)

	ValueStyle = lipgloss.NewStyle().Foreground(ui.TextColor)

	DescriptionStyle = lipgloss.NewStyle().Foreground(ui.MutedColor).Italic(true)

	ButtonStyle = lipgloss.NewStyle().Foreground(ui.TextColor).Padding(0, 2).Border(lipgloss.RoundedBorder()).BorderForeground(ui.MutedColor)

	FocusedButtonStyle = ButtonStyle.BorderForeground(ui.PrimaryColor).Bold(true)

	DisabledButtonStyle = ButtonStyle.Foreground(ui.MutedColor)

	SpinnerStyle = lipgloss.NewStyle().Foreground(ui.PrimaryColor)

	ErrorBannerStyle = lipgloss.NewStyle().Foreground(ui.ErrorColor).Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(ui.ErrorColor)

	NoticeStyle = lipgloss.NewStyle().Foreground(ui.SuccessColor)

	SaveErrorStyle = lipgloss.NewStyle().Foreground(ui.ErrorColor)

	SectionStyle = lipgloss.NewStyle().Padding(1, 2)
)

// BuildHeaderContent creates header content with app name and repository URL
func BuildHeaderContent() string {
	left := lipgloss.NewStyle().
		Foreground(ui.TextColor).
		Bold(true).
		Render(AppName + " " + AppVersion())

	right := lipgloss.NewStyle().
		Foreground(ui.MutedColor).
		Render(RepoURL)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// BuildFooterContent creates footer content with help text
func BuildFooterContent(helpText string) string {
	return lipgloss.NewStyle().
		Foreground(ui.MutedColor).
		Render(helpText)
}

// RenderApplicationContainer wraps a screen with the application header,
// a bordered content area and a help footer sized to the terminal.
func RenderApplicationContainer(content string, footerText string, terminalWidth int, terminalHeight int) string {
	if terminalWidth <= 0 {
		terminalWidth = DefaultWidth
	}
	if terminalHeight <= 0 {
		terminalHeight = DefaultHeight
	}

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(ui.PrimaryColor).
		Width(terminalWidth-4). // Leave room for outer border
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(ui.PrimaryColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	contentStyle := lipgloss.NewStyle().
		Width(terminalWidth - 4)

	innerContent := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(BuildHeaderContent()),
		contentStyle.Render(content),
		footerStyle.Render(BuildFooterContent(footerText)),
	)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(ui.PrimaryColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top).
		Render(innerContent)

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}
