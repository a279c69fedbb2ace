package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tnslabs/waconsole/internal/models"
)

var errEmptyTemplate = errors.New("title and content are both required")

type templatesFetchedMsg struct {
	templates []models.Template
	err       error
}

type templateSavedMsg struct {
	err error
}

type templateDeletedMsg struct {
	id  string
	err error
}

type templatesTab int

const (
	tabShared templatesTab = iota
	tabOwn
)

type templatesMode int

const (
	modePick templatesMode = iota
	modeSearch
	modeCreate
	modeConfirmDelete
)

// TemplatesModel is the snippet picker. Opened from the composer it
// inserts the chosen template into the draft; opened from the menu it
// manages the library. The list is fetched fresh on every open so edits
// from other sessions show up.
type TemplatesModel struct {
	app      *App
	returnTo *ChatModel

	templates []models.Template
	filtered  []int
	cursor    int
	tab       templatesTab
	mode      templatesMode

	searchInput  textinput.Model
	titleInput   textinput.Model
	contentInput textarea.Model
	createShared bool
	createFocus  int

	spinner      spinner.Model
	loading      bool
	err          error
	status       string
	windowWidth  int
	windowHeight int
}

func NewTemplatesModel(app *App, returnTo *ChatModel) TemplatesModel {
	theme := app.Theme()

	search := textinput.New()
	search.Placeholder = "Search templates"
	search.CharLimit = 60
	search.Width = 40

	title := textinput.New()
	title.Placeholder = "Template title"
	title.CharLimit = 100
	title.Width = 50

	content := textarea.New()
	content.Placeholder = "Template content"
	content.CharLimit = 4096
	content.SetHeight(5)
	content.ShowLineNumbers = false

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.Status

	return TemplatesModel{
		app:          app,
		returnTo:     returnTo,
		searchInput:  search,
		titleInput:   title,
		contentInput: content,
		loading:      true,
		spinner:      s,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m TemplatesModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchTemplatesCmd(), m.app.waitForRealtimeCmd())
}

func (m TemplatesModel) fetchTemplatesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		templates, err := m.app.Client.Templates(ctx)
		return templatesFetchedMsg{templates: templates, err: err}
	}
}

func (m TemplatesModel) createTemplateCmd(title, content string, shared bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := m.app.Client.CreateTemplate(ctx, title, content, shared)
		return templateSavedMsg{err: err}
	}
}

func (m TemplatesModel) deleteTemplateCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := m.app.Client.DeleteTemplate(ctx, id)
		return templateDeletedMsg{id: id, err: err}
	}
}

// applyFilter rebuilds the visible subset from the active tab plus the
// search needle.
func (m *TemplatesModel) applyFilter() {
	needle := strings.ToLower(strings.TrimSpace(m.searchInput.Value()))
	m.filtered = m.filtered[:0]
	for i, tmpl := range m.templates {
		if m.tab == tabOwn && !tmpl.IsOwn {
			continue
		}
		if m.tab == tabShared && tmpl.IsOwn {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(tmpl.Title), needle) &&
			!strings.Contains(strings.ToLower(tmpl.Content), needle) {
			continue
		}
		m.filtered = append(m.filtered, i)
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = 0
	}
}

func (m *TemplatesModel) selected() (models.Template, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return models.Template{}, false
	}
	return m.templates[m.filtered[m.cursor]], true
}

func (m TemplatesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case templatesFetchedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.templates = msg.templates
		m.applyFilter()
		return m, nil

	case templateSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = modePick
		m.titleInput.Reset()
		m.contentInput.Reset()
		m.createShared = false
		m.loading = true
		m.status = "Template saved."
		return m, tea.Batch(m.spinner.Tick, m.fetchTemplatesCmd())

	case templateDeletedMsg:
		m.mode = modePick
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.loading = true
		m.status = "Template deleted."
		return m, tea.Batch(m.spinner.Tick, m.fetchTemplatesCmd())

	case realtimeMsg:
		// The picker overlays a conversation that is still live; feed
		// the event through so nothing is lost while it is open.
		if m.returnTo != nil {
			m.returnTo.touchContact(msg.event)
			if m.returnTo.thread != nil {
				m.returnTo.thread.ApplyEvent(msg.event)
			}
		}
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

func (m TemplatesModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeSearch:
		switch msg.String() {
		case "esc", "enter":
			m.mode = modePick
			m.searchInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			m.applyFilter()
			return m, cmd
		}

	case modeCreate:
		switch msg.String() {
		case "esc":
			m.mode = modePick
			m.titleInput.Blur()
			m.contentInput.Blur()
			return m, nil
		case "tab":
			m.createFocus = (m.createFocus + 1) % 3
			m.titleInput.Blur()
			m.contentInput.Blur()
			switch m.createFocus {
			case 0:
				m.titleInput.Focus()
			case 1:
				m.contentInput.Focus()
			}
			return m, textinput.Blink
		case " ", "space":
			if m.createFocus == 2 {
				m.createShared = !m.createShared
				return m, nil
			}
		case "ctrl+s":
			title := strings.TrimSpace(m.titleInput.Value())
			content := strings.TrimSpace(m.contentInput.Value())
			if title == "" || content == "" {
				m.err = errEmptyTemplate
				return m, nil
			}
			m.err = nil
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.createTemplateCmd(title, content, m.createShared))
		}
		var cmd tea.Cmd
		if m.createFocus == 0 {
			m.titleInput, cmd = m.titleInput.Update(msg)
		} else if m.createFocus == 1 {
			m.contentInput, cmd = m.contentInput.Update(msg)
		}
		return m, cmd

	case modeConfirmDelete:
		switch msg.String() {
		case "y":
			if tmpl, ok := m.selected(); ok {
				m.loading = true
				return m, tea.Batch(m.spinner.Tick, m.deleteTemplateCmd(tmpl.ID))
			}
			m.mode = modePick
			return m, nil
		case "n", "esc":
			m.mode = modePick
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		return m.back()

	case "q":
		if m.returnTo == nil {
			return m, tea.Quit
		}
		return m.back()

	case "/":
		m.mode = modeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case "tab":
		if m.tab == tabShared {
			m.tab = tabOwn
		} else {
			m.tab = tabShared
		}
		m.applyFilter()
		return m, nil

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

	case "n":
		m.mode = modeCreate
		m.createFocus = 0
		m.titleInput.Focus()
		return m, textinput.Blink

	case "d":
		if tmpl, ok := m.selected(); ok && tmpl.IsOwn {
			m.mode = modeConfirmDelete
		}
		return m, nil

	case "r":
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.fetchTemplatesCmd())

	case "enter":
		tmpl, ok := m.selected()
		if !ok {
			return m, nil
		}
		if m.returnTo != nil {
			chat := *m.returnTo
			chat.insertTemplate(tmpl.Content)
			chat.renderThread()
			if m.windowWidth > 0 {
				sized, cmd := chat.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
				return sized, cmd
			}
			return chat, nil
		}
		m.status = "Open a conversation to use a template."
		return m, nil
	}
	return m, nil
}

// back returns to wherever the picker was opened from.
func (m TemplatesModel) back() (tea.Model, tea.Cmd) {
	if m.returnTo != nil {
		chat := *m.returnTo
		chat.renderThread()
		if m.windowWidth > 0 {
			sized, cmd := chat.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
			return sized, cmd
		}
		return chat, nil
	}
	dashboard := NewDashboardModel(m.app, nil)
	if m.windowWidth > 0 {
		sized, cmd := dashboard.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
		return sized, tea.Batch(sized.Init(), cmd)
	}
	return dashboard, dashboard.Init()
}

func (m TemplatesModel) View() string {
	theme := m.app.Theme()

	if m.loading && len(m.templates) == 0 {
		return "\n  " + m.spinner.View() + " Loading templates...\n"
	}

	s := theme.Title.Render("📋 Templates") + "\n"

	sharedTab := "Ready-made"
	ownTab := "My templates"
	if m.tab == tabShared {
		s += theme.Selected.Render("["+sharedTab+"]") + "  " + theme.Help.Render(ownTab) + "\n\n"
	} else {
		s += theme.Help.Render(sharedTab) + "  " + theme.Selected.Render("["+ownTab+"]") + "\n\n"
	}

	switch m.mode {
	case modeCreate:
		s += theme.Input.Render("Title:") + "\n" + m.titleInput.View() + "\n\n"
		s += theme.Input.Render("Content:") + "\n" + m.contentInput.View() + "\n\n"
		shared := "[ ] share with the workspace"
		if m.createShared {
			shared = "[x] share with the workspace"
		}
		if m.createFocus == 2 {
			shared = theme.Selected.Render(shared)
		} else {
			shared = theme.Normal.Render(shared)
		}
		s += shared + "\n\n"
		if m.err != nil {
			s += theme.Error.Render(m.err.Error()) + "\n"
		}
		s += theme.Help.Render("tab: next field • space: toggle share • ctrl+s: save • esc: cancel")
		return s

	case modeConfirmDelete:
		if tmpl, ok := m.selected(); ok {
			s += theme.Error.Render("Delete \""+tmpl.Title+"\"?") + "\n\n"
			s += theme.Help.Render("y: delete • n: keep")
		}
		return s
	}

	if m.mode == modeSearch {
		s += m.searchInput.View() + "\n\n"
	}

	if len(m.filtered) == 0 {
		s += theme.Help.Render("No templates here yet. Press n to create one.") + "\n"
	}
	for i, idx := range m.filtered {
		tmpl := m.templates[idx]
		line := tmpl.Title
		if tmpl.IsOwn && tmpl.IsShared {
			line += " " + theme.Badge.Render("shared")
		}
		if i == m.cursor {
			s += theme.Selected.Render("> "+line) + "\n"
			preview := tmpl.Content
			if len(preview) > 120 {
				preview = preview[:120] + "…"
			}
			s += "  " + theme.Help.Render(preview) + "\n"
		} else {
			s += "  " + theme.Normal.Render(line) + "\n"
		}
	}

	if m.err != nil {
		s += "\n" + theme.Error.Render(m.err.Error())
	} else if m.status != "" {
		s += "\n" + theme.Status.Render(m.status)
	}

	help := "↑↓/jk: navigate • tab: switch tab • /: search • n: new • d: delete • r: refresh • esc: back"
	if m.returnTo != nil {
		help = "enter: insert into draft • " + help
	}
	s += "\n\n" + theme.Help.Render(help)
	return s
}
