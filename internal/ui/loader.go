package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tnslabs/waconsole/internal/models"
)

type workspaceLoadedMsg struct {
	user     models.User
	contacts []models.Contact
	err      error
}

// LoaderModel refreshes the profile and contact list before the shell
// opens. The banner tells agents and admins apart so a shared terminal
// shows which console is warming up.
type LoaderModel struct {
	app     *App
	spinner spinner.Model
	err     error
}

func NewLoaderModel(app *App) LoaderModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = app.Theme().Status
	return LoaderModel{app: app, spinner: s}
}

func (m LoaderModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadWorkspaceCmd())
}

// loadWorkspaceCmd re-fetches the profile so a role change on the
// backend takes effect on the next start, then pulls the contact list.
func (m LoaderModel) loadWorkspaceCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := m.app.Client.CurrentUser(ctx)
		if err != nil {
			return workspaceLoadedMsg{err: err}
		}
		contacts, err := m.app.Client.Contacts(ctx)
		if err != nil {
			return workspaceLoadedMsg{err: err}
		}
		return workspaceLoadedMsg{user: user, contacts: contacts}
	}
}

func (m LoaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workspaceLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if err := m.app.Session.SetUser(msg.user); err != nil {
			m.err = err
			return m, nil
		}
		dashboard := NewDashboardModel(m.app, msg.contacts)
		return dashboard, dashboard.Init()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			if m.err != nil {
				m.err = nil
				return m, tea.Batch(m.spinner.Tick, m.loadWorkspaceCmd())
			}
		case "l":
			if m.err != nil {
				_ = m.app.Session.Clear()
				login := NewLoginModel(m.app)
				return login, login.Init()
			}
		}
	}
	return m, nil
}

func (m LoaderModel) View() string {
	theme := m.app.Theme()

	banner := "Loading agent console..."
	if m.app.Role() == models.RoleAdmin {
		banner = "Loading admin console..."
	}

	if m.err != nil {
		s := theme.Error.Render("Failed to load workspace: "+m.err.Error()) + "\n\n"
		s += theme.Help.Render("r: retry • l: sign in again • q: quit")
		return s
	}
	return "\n  " + m.spinner.View() + " " + theme.Status.Render(banner) + "\n"
}
