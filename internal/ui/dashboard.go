package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tnslabs/waconsole/internal/models"
)

type menuItem struct {
	title string
	desc  string
	key   string
}

func (i menuItem) FilterValue() string { return i.title }
func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }

const (
	menuChats     = "chats"
	menuContacts  = "contacts"
	menuTemplates = "templates"
	menuCRM       = "crm"
)

// DashboardModel is the shell each role lands on. Agents see their
// conversations; admins additionally get contact management. The CRM
// entry is a placeholder for the board that has not moved off the web
// client yet.
type DashboardModel struct {
	app          *App
	list         list.Model
	contacts     []models.Contact
	notice       string
	windowWidth  int
	windowHeight int
}

func NewDashboardModel(app *App, contacts []models.Contact) DashboardModel {
	items := []list.Item{
		menuItem{title: "💬 Chats", desc: "Open conversations", key: menuChats},
	}
	if app.Role() == models.RoleAdmin {
		items = append(items,
			menuItem{title: "👥 Contacts", desc: "Manage contacts and assignments", key: menuContacts})
	}
	items = append(items,
		menuItem{title: "📋 Templates", desc: "Reusable message snippets", key: menuTemplates},
		menuItem{title: "📊 CRM", desc: "Pipeline board (web client only for now)", key: menuCRM},
	)

	theme := app.Theme()
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = theme.Selected
	delegate.Styles.SelectedDesc = theme.Help

	l := list.New(items, delegate, 80, 14)
	user := app.Session.User()
	title := "WA Console"
	if user != nil {
		title = fmt.Sprintf("WA Console - %s (%s)", user.Name, app.Role())
	}
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return DashboardModel{
		app:          app,
		list:         l,
		contacts:     contacts,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m DashboardModel) Init() tea.Cmd {
	return m.app.waitForRealtimeCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case realtimeMsg:
		// Nothing on this screen renders messages; the chat screen
		// refetches when it opens.
		return m, m.app.waitForRealtimeCmd()

	case realtimeClosedMsg:
		m.notice = "Realtime connection closed; messages refresh manually."
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "L":
			_ = m.app.Session.Clear()
			login := NewLoginModel(m.app)
			return login, login.Init()

		case "enter":
			item, ok := m.list.SelectedItem().(menuItem)
			if !ok {
				return m, nil
			}
			switch item.key {
			case menuChats:
				chat := NewChatModel(m.app, m.contacts)
				return m.resized(chat)
			case menuContacts:
				contactsScreen := NewContactsModel(m.app, m.contacts)
				return m.resized(contactsScreen)
			case menuTemplates:
				templates := NewTemplatesModel(m.app, nil)
				return m.resized(templates)
			case menuCRM:
				m.notice = "The CRM board lives in the web client for now."
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// resized forwards the current window size into a freshly built screen
// so it does not flash at the default 80x30.
func (m DashboardModel) resized(next tea.Model) (tea.Model, tea.Cmd) {
	if m.windowWidth > 0 {
		sized, cmd := next.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
		return sized, tea.Batch(sized.Init(), cmd)
	}
	return next, next.Init()
}

func (m DashboardModel) View() string {
	theme := m.app.Theme()
	s := m.list.View() + "\n"
	if m.notice != "" {
		s += theme.Status.Render(m.notice) + "\n"
	}
	s += theme.Help.Render("↑↓/jk: navigate • enter: select • L: log out • q: quit")
	return s
}
