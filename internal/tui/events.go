package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/stylegen/internal/transform"
	"github.com/muurk/stylegen/internal/wsclient"
)

// Messages delivered from the client goroutine
type responseMsg struct {
	resp transform.Response
}

type connStateMsg struct {
	state wsclient.State
}

// Messages for async operations
type imageSavedMsg struct {
	path string
	err  error
}

// eventBridge forwards client callbacks into the Bubble Tea loop
type eventBridge struct {
	ch   chan tea.Msg
	stop chan struct{}
}

func newEventBridge() *eventBridge {
	return &eventBridge{
		ch:   make(chan tea.Msg, 16),
		stop: make(chan struct{}),
	}
}

// onMessage is the client's MessageHandler
func (b *eventBridge) onMessage(resp transform.Response) {
	b.forward(responseMsg{resp: resp})
}

// onState is the client's StateHandler
func (b *eventBridge) onState(state wsclient.State) {
	b.forward(connStateMsg{state: state})
}

// forward never blocks past shutdown, so Disconnect cannot deadlock on a
// handler waiting for a program that has already exited
func (b *eventBridge) forward(msg tea.Msg) {
	select {
	case b.ch <- msg:
	case <-b.stop:
	}
}

// shutdown releases any handler blocked in forward
func (b *eventBridge) shutdown() {
	close(b.stop)
}

// waitForEvent returns a command that delivers the next client event.
// It yields nil once the channel is closed.
func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
