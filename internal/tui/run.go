package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/stylegen/internal/config"
	"github.com/muurk/stylegen/internal/form"
	"github.com/muurk/stylegen/internal/logging"
	"github.com/muurk/stylegen/internal/transform"
	"github.com/muurk/stylegen/internal/wsclient"
)

// NewForm builds a form populated from the configured defaults
func NewForm(settings *config.Settings) *form.Form {
	f := form.New(transform.DefaultThemes())
	f.SelectTheme(settings.Theme())
	if d := settings.Defaults; d != nil {
		f.EditSteps(d.Steps)
		f.EditGuidance(d.Guidance)
	}
	return f
}

// Run shows the form until the user quits or ctx is cancelled.
// The client is created here and always disconnected before Run returns.
func Run(ctx context.Context, settings *config.Settings) error {
	bridge := newEventBridge()

	client := wsclient.New(wsclient.Options{
		URL:              settings.Endpoint,
		ReconnectDelay:   settings.ReconnectDelay,
		HandshakeTimeout: settings.HandshakeTimeout,
		OnState:          bridge.onState,
	}, bridge.onMessage)

	defer func() {
		bridge.shutdown()
		client.Disconnect()
		// No handler can run once Disconnect has returned
		close(bridge.ch)
		logging.Info("Form closed", zap.String("endpoint", settings.Endpoint))
	}()

	model := NewModel(NewForm(settings), client, bridge.ch)
	model.Endpoint = client.URL()
	model.OutputDir = settings.OutputDir

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("form exited: %w", err)
	}
	return nil
}
