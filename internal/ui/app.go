package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tnslabs/waconsole/internal/api"
	"github.com/tnslabs/waconsole/internal/mediacache"
	"github.com/tnslabs/waconsole/internal/models"
	"github.com/tnslabs/waconsole/internal/session"
)

// App bundles the services every screen needs. Screens receive it by
// pointer and thread it through transitions.
type App struct {
	Client  *api.Client
	Session *session.Store
	Media   *mediacache.Cache
	Events  <-chan models.MessageEvent

	pumpMu    sync.Mutex
	pumpArmed bool
}

// Role resolves the active role, preferring what the session recorded
// at login. Unknown or missing roles act as agent, the less privileged
// shell.
func (a *App) Role() string {
	if user := a.Session.User(); user != nil && user.Role == models.RoleAdmin {
		return models.RoleAdmin
	}
	return models.RoleAgent
}

func (a *App) Theme() Theme {
	return ThemeForRole(a.Role())
}

// realtimeMsg carries one decoded push event into the bubbletea loop.
type realtimeMsg struct {
	event models.MessageEvent
}

// realtimeClosedMsg signals that the subscriber shut down and no more
// events will arrive.
type realtimeClosedMsg struct{}

// waitForRealtimeCmd blocks on the shared event stream. Screens call it
// from Init and again after each realtimeMsg; the latch makes both safe
// so screen transitions never leave two readers on the channel.
func (a *App) waitForRealtimeCmd() tea.Cmd {
	if a.Events == nil {
		return nil
	}
	a.pumpMu.Lock()
	if a.pumpArmed {
		a.pumpMu.Unlock()
		return nil
	}
	a.pumpArmed = true
	a.pumpMu.Unlock()

	return func() tea.Msg {
		event, ok := <-a.Events
		a.pumpMu.Lock()
		a.pumpArmed = false
		a.pumpMu.Unlock()
		if !ok {
			return realtimeClosedMsg{}
		}
		return realtimeMsg{event: event}
	}
}

// NewProgram returns the screen the console opens on. A session that
// still has a user skips the login form and goes straight to loading.
func NewProgram(app *App) tea.Model {
	if app.Session.Authenticated() {
		return NewLoaderModel(app)
	}
	return NewLoginModel(app)
}
