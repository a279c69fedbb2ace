package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tnslabs/waconsole/internal/api"
	"github.com/tnslabs/waconsole/internal/apperrors"
	"github.com/tnslabs/waconsole/internal/models"
	"github.com/tnslabs/waconsole/internal/timefmt"
)

var errInvalidPhone = errors.New("phone numbers must be +91 followed by 10 digits")

type agentsFetchedMsg struct {
	agents []models.Agent
	err    error
}

type assignmentChangedMsg struct {
	err error
}

type contactCreatedMsg struct {
	contact   models.Contact
	duplicate *apperrors.DuplicateContactError
	err       error
}

type contactsMode int

const (
	contactsList contactsMode = iota
	contactsSearch
	contactsAssign
	contactsConfirmUnassign
	contactsForm
	contactsDuplicate
)

// ContactsModel is the admin's contact management screen: who talks to
// which agent, plus adding new contacts by phone number.
type ContactsModel struct {
	app *App

	contacts []models.Contact
	filtered []int
	cursor   int
	mode     contactsMode

	searchInput textinput.Model

	agents      []models.Agent
	agentCursor int

	nameInput  textinput.Model
	phoneInput textinput.Model
	formFocus  int
	duplicate  models.Contact

	spinner      spinner.Model
	loading      bool
	err          error
	status       string
	windowWidth  int
	windowHeight int
}

func NewContactsModel(app *App, contacts []models.Contact) ContactsModel {
	theme := app.Theme()

	search := textinput.New()
	search.Placeholder = "Search contacts"
	search.CharLimit = 60
	search.Width = 40

	name := textinput.New()
	name.Placeholder = "Name (optional)"
	name.CharLimit = 100
	name.Width = 40

	phone := textinput.New()
	phone.Placeholder = "+91 followed by 10 digits"
	phone.CharLimit = 13
	phone.Width = 40

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.Status

	m := ContactsModel{
		app:          app,
		contacts:     contacts,
		searchInput:  search,
		nameInput:    name,
		phoneInput:   phone,
		spinner:      s,
		windowWidth:  80,
		windowHeight: 30,
	}
	m.applyFilter()
	return m
}

// applyFilter rebuilds the visible subset from the search needle,
// matching name, phone number and the last message preview.
func (m *ContactsModel) applyFilter() {
	needle := strings.ToLower(strings.TrimSpace(m.searchInput.Value()))
	m.filtered = m.filtered[:0]
	for i, contact := range m.contacts {
		if needle == "" ||
			strings.Contains(strings.ToLower(contact.DisplayName()), needle) ||
			strings.Contains(contact.PhoneNumber, needle) ||
			strings.Contains(strings.ToLower(contact.LastMessage), needle) {
			m.filtered = append(m.filtered, i)
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = 0
	}
}

func (m ContactsModel) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.app.waitForRealtimeCmd())
}

func (m ContactsModel) refreshCmd() tea.Cmd {
	prev := m.contacts
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		contacts, err := m.app.Client.Contacts(ctx)
		if err != nil {
			return contactsRefreshedMsg{err: err}
		}
		return contactsRefreshedMsg{contacts: api.MergeKnownTimes(prev, contacts)}
	}
}

// fetchAgentsCmd pulls the agent roster fresh each time the picker
// opens, so a newly added agent is assignable without restarting.
func (m ContactsModel) fetchAgentsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		agents, err := m.app.Client.Agents(ctx)
		return agentsFetchedMsg{agents: agents, err: err}
	}
}

func (m ContactsModel) assignCmd(customerID, agentID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return assignmentChangedMsg{err: m.app.Client.AssignAgent(ctx, customerID, agentID)}
	}
}

func (m ContactsModel) unassignCmd(customerID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return assignmentChangedMsg{err: m.app.Client.DeleteAssignment(ctx, customerID)}
	}
}

func (m ContactsModel) createContactCmd(name, phone string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		contact, err := m.app.Client.CreateContact(ctx, name, phone)
		if err != nil {
			if dup, ok := apperrors.AsDuplicateContact(err); ok {
				return contactCreatedMsg{duplicate: dup}
			}
			return contactCreatedMsg{err: err}
		}
		return contactCreatedMsg{contact: contact}
	}
}

func (m *ContactsModel) selected() (models.Contact, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return models.Contact{}, false
	}
	return m.contacts[m.filtered[m.cursor]], true
}

func (m ContactsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case contactsRefreshedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.contacts = msg.contacts
		m.applyFilter()
		return m, nil

	case agentsFetchedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.mode = contactsList
			return m, nil
		}
		m.agents = msg.agents
		m.agentCursor = 0
		return m, nil

	case assignmentChangedMsg:
		m.mode = contactsList
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = "Assignment updated."
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.refreshCmd())

	case contactCreatedMsg:
		m.loading = false
		if msg.duplicate != nil {
			m.duplicate = msg.duplicate.Existing
			m.mode = contactsDuplicate
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = contactsList
		m.nameInput.Reset()
		m.phoneInput.Reset()
		m.err = nil
		m.status = "Contact " + msg.contact.DisplayName() + " created."
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.refreshCmd())

	case realtimeMsg:
		return m, m.app.waitForRealtimeCmd()

	case realtimeClosedMsg:
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m ContactsModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case contactsSearch:
		switch msg.String() {
		case "esc", "enter":
			m.mode = contactsList
			m.searchInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			m.applyFilter()
			return m, cmd
		}

	case contactsAssign:
		switch msg.String() {
		case "esc":
			m.mode = contactsList
			return m, nil
		case "up", "k":
			if m.agentCursor > 0 {
				m.agentCursor--
			}
			return m, nil
		case "down", "j":
			if m.agentCursor < len(m.agents)-1 {
				m.agentCursor++
			}
			return m, nil
		case "enter":
			contact, ok := m.selected()
			if !ok || m.agentCursor >= len(m.agents) {
				m.mode = contactsList
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.assignCmd(contact.ID, m.agents[m.agentCursor].ID))
		}
		return m, nil

	case contactsConfirmUnassign:
		switch msg.String() {
		case "y":
			if contact, ok := m.selected(); ok {
				m.loading = true
				return m, tea.Batch(m.spinner.Tick, m.unassignCmd(contact.ID))
			}
			m.mode = contactsList
			return m, nil
		case "n", "esc":
			m.mode = contactsList
			return m, nil
		}
		return m, nil

	case contactsForm:
		switch msg.String() {
		case "esc":
			m.mode = contactsList
			m.nameInput.Blur()
			m.phoneInput.Blur()
			m.err = nil
			return m, nil
		case "tab", "shift+tab", "up", "down":
			m.formFocus = (m.formFocus + 1) % 2
			if m.formFocus == 0 {
				m.nameInput.Focus()
				m.phoneInput.Blur()
			} else {
				m.nameInput.Blur()
				m.phoneInput.Focus()
			}
			return m, textinput.Blink
		case "enter":
			phone := strings.TrimSpace(m.phoneInput.Value())
			if !api.ValidatePhoneNumber(phone) {
				m.err = errInvalidPhone
				return m, nil
			}
			m.err = nil
			m.loading = true
			return m, tea.Batch(m.spinner.Tick,
				m.createContactCmd(strings.TrimSpace(m.nameInput.Value()), phone))
		}
		var cmd tea.Cmd
		if m.formFocus == 0 {
			m.nameInput, cmd = m.nameInput.Update(msg)
		} else {
			m.phoneInput, cmd = m.phoneInput.Update(msg)
		}
		return m, cmd

	case contactsDuplicate:
		switch msg.String() {
		case "enter":
			// Jump straight into the existing conversation instead of
			// leaving the admin at a dead end.
			chat := NewChatModel(m.app, m.contacts)
			chat.activeContact = m.duplicate
			for i, contact := range m.contacts {
				if contact.ID == m.duplicate.ID {
					chat.cursor = i
					break
				}
			}
			if m.windowWidth > 0 {
				sized, cmd := chat.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
				chatSized := sized.(ChatModel)
				openCmd := chatSized.openDuplicate(m.duplicate)
				return chatSized, tea.Batch(chatSized.Init(), cmd, openCmd)
			}
			openCmd := chat.openDuplicate(m.duplicate)
			return chat, tea.Batch(chat.Init(), openCmd)
		case "esc", "n":
			m.mode = contactsForm
			m.phoneInput.Focus()
			return m, textinput.Blink
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc":
		dashboard := NewDashboardModel(m.app, m.contacts)
		if m.windowWidth > 0 {
			sized, cmd := dashboard.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
			return sized, tea.Batch(sized.Init(), cmd)
		}
		return dashboard, dashboard.Init()

	case "/":
		m.mode = contactsSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
		return m, nil

	case "a":
		if _, ok := m.selected(); ok {
			m.mode = contactsAssign
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.fetchAgentsCmd())
		}
		return m, nil

	case "u":
		if contact, ok := m.selected(); ok && contact.AssignedAgent != "" {
			m.mode = contactsConfirmUnassign
		}
		return m, nil

	case "n":
		m.mode = contactsForm
		m.formFocus = 1
		m.phoneInput.Focus()
		m.err = nil
		return m, textinput.Blink

	case "r":
		m.loading = true
		m.status = ""
		return m, tea.Batch(m.spinner.Tick, m.refreshCmd())
	}
	return m, nil
}

func (m ContactsModel) View() string {
	theme := m.app.Theme()

	s := theme.Title.Render("👥 Contacts") + "\n"

	switch m.mode {
	case contactsAssign:
		contact, _ := m.selected()
		s += theme.Input.Render("Assign "+contact.DisplayName()+" to:") + "\n\n"
		if m.loading {
			s += "  " + m.spinner.View() + " Loading agents...\n"
			return s
		}
		if len(m.agents) == 0 {
			s += theme.Help.Render("No agents available.") + "\n"
		}
		for i, agent := range m.agents {
			line := agent.Name
			if agent.Email != "" {
				line += " " + theme.Help.Render(agent.Email)
			}
			if i == m.agentCursor {
				s += theme.Selected.Render("> "+line) + "\n"
			} else {
				s += "  " + theme.Normal.Render(line) + "\n"
			}
		}
		s += "\n" + theme.Help.Render("↑↓/jk: navigate • enter: assign • esc: cancel")
		return s

	case contactsConfirmUnassign:
		contact, _ := m.selected()
		s += theme.Error.Render("Unassign "+contact.AssignedAgent+" from "+contact.DisplayName()+"?") + "\n\n"
		s += theme.Help.Render("y: unassign • n: keep")
		return s

	case contactsForm:
		s += theme.Input.Render("New contact") + "\n\n"
		s += m.nameInput.View() + "\n"
		s += m.phoneInput.View() + "\n\n"
		if m.loading {
			s += "  " + m.spinner.View() + " Creating...\n"
		}
		if m.err != nil {
			s += theme.Error.Render(m.err.Error()) + "\n"
		}
		s += theme.Help.Render("tab: switch field • enter: create • esc: cancel")
		return s

	case contactsDuplicate:
		s += theme.Error.Render("This number already belongs to a contact.") + "\n\n"
		s += theme.Normal.Render(m.duplicate.DisplayName()) + "\n"
		s += theme.Help.Render(m.duplicate.PhoneNumber) + "\n"
		if m.duplicate.AssignedAgent != "" {
			s += theme.Badge.Render(m.duplicate.AssignedAgent) + "\n"
		}
		s += "\n" + theme.Help.Render("enter: open conversation • esc: back to form")
		return s
	}

	if m.loading && len(m.contacts) == 0 {
		return "\n  " + m.spinner.View() + " Loading contacts...\n"
	}

	s += m.searchInput.View() + "\n\n"

	rows := m.windowHeight - 10
	if rows < 1 {
		rows = 1
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}

	for i := start; i < len(m.filtered) && i < start+rows; i++ {
		contact := m.contacts[m.filtered[i]]
		line := contact.DisplayName()
		if contact.PhoneNumber != "" {
			line += " " + theme.Help.Render(contact.PhoneNumber)
		}
		if contact.AssignedAgent != "" {
			line += " " + theme.Badge.Render(contact.AssignedAgent)
		} else {
			line += " " + theme.Badge.Render("Unassigned")
		}
		if when := timefmt.Label(contact.LastMessageTime); when != "" {
			line += " " + theme.Header.Render(when)
		}
		if i == m.cursor {
			s += theme.Selected.Render("> "+line) + "\n"
		} else {
			s += "  " + theme.Normal.Render(line) + "\n"
		}
	}

	if len(m.filtered) == 0 {
		s += theme.Help.Render("No contacts match.") + "\n"
	}

	if m.err != nil {
		s += "\n" + theme.Error.Render(m.err.Error())
	} else if m.status != "" {
		s += "\n" + theme.Status.Render(m.status)
	}

	s += "\n\n" + theme.Help.Render("↑↓/jk: navigate • /: search • a: assign agent • u: unassign • n: new contact • r: refresh • esc: menu • q: quit")
	return s
}
