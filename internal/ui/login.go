package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tnslabs/waconsole/internal/models"
)

type loginResultMsg struct {
	user models.User
	err  error
}

type LoginModel struct {
	app           *App
	emailInput    textinput.Model
	passwordInput textinput.Model
	focusIndex    int
	submitting    bool
	spinner       spinner.Model
	err           error
}

func NewLoginModel(app *App) LoginModel {
	email := textinput.New()
	email.Placeholder = "Email"
	email.Focus()
	email.CharLimit = 120
	email.Width = 40

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 120
	password.Width = 40

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = app.Theme().Status

	return LoginModel{
		app:           app,
		emailInput:    email,
		passwordInput: password,
		spinner:       s,
	}
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		user, err := m.app.Client.Login(ctx, email, password)
		return loginResultMsg{user: user, err: err}
	}
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			m.passwordInput.Reset()
			return m, nil
		}
		if err := m.app.Session.SetUser(msg.user); err != nil {
			m.err = err
			return m, nil
		}
		loader := NewLoaderModel(m.app)
		return loader, loader.Init()

	case spinner.TickMsg:
		if m.submitting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.submitting {
			return m, nil
		}

		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.focusIndex = (m.focusIndex + 1) % 2
			if m.focusIndex == 0 {
				m.emailInput.Focus()
				m.passwordInput.Blur()
			} else {
				m.emailInput.Blur()
				m.passwordInput.Focus()
			}
			return m, textinput.Blink

		case "enter":
			email := strings.TrimSpace(m.emailInput.Value())
			password := m.passwordInput.Value()
			if email == "" || password == "" {
				return m, nil
			}
			m.submitting = true
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.loginCmd(email, password))
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.emailInput, cmd = m.emailInput.Update(msg)
	cmds = append(cmds, cmd)
	m.passwordInput, cmd = m.passwordInput.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m LoginModel) View() string {
	theme := m.app.Theme()

	s := theme.Title.Render("WA Console - Sign In") + "\n\n"
	s += m.emailInput.View() + "\n"
	s += m.passwordInput.View() + "\n\n"

	if m.submitting {
		s += m.spinner.View() + " Signing in...\n"
	}
	if m.err != nil {
		s += theme.Error.Render("Login failed: "+m.err.Error()) + "\n"
	}

	s += "\n" + theme.Help.Render("tab: switch field • enter: sign in • ctrl+c: quit")
	return s
}
