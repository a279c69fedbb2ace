package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/tnslabs/waconsole/internal/api"
	"github.com/tnslabs/waconsole/internal/conversation"
	"github.com/tnslabs/waconsole/internal/mediacache"
	"github.com/tnslabs/waconsole/internal/models"
	"github.com/tnslabs/waconsole/internal/timefmt"
)

type contactsRefreshedMsg struct {
	contacts []models.Contact
	err      error
}

type threadFetchedMsg struct {
	contactID string
	messages  []models.Message
	err       error
}

type sendResultMsg struct {
	contactID string
	tempID    string
	err       error
}

type uploadResultMsg struct {
	contactID string
	tempID    string
	result    api.UploadResult
	err       error
}

type mediaOpenedMsg struct {
	entry mediacache.Entry
	err   error
}

// chatFocus tracks which pane owns the keyboard.
type chatFocus int

const (
	focusSidebar chatFocus = iota
	focusSearch
	focusCompose
	focusAttach
)

// narrowWidth is the point below which the sidebar and thread stop
// fitting side by side.
const narrowWidth = 70

type ChatModel struct {
	app *App

	contacts []models.Contact
	filtered []int
	cursor   int

	searchInput textinput.Model
	textarea    textarea.Model
	attachInput textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model

	thread        *conversation.Thread
	activeContact models.Contact

	focus         chatFocus
	loadingThread bool
	sending       int
	status        string
	err           error

	windowWidth  int
	windowHeight int
}

func NewChatModel(app *App, contacts []models.Contact) ChatModel {
	theme := app.Theme()

	search := textinput.New()
	search.Placeholder = "Search contacts"
	search.CharLimit = 60
	search.Width = 24

	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.CharLimit = 4096
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	attach := textinput.New()
	attach.Placeholder = "Path to file"
	attach.CharLimit = 512
	attach.Width = 50

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.Status

	vp := viewport.New(80, 20)

	m := ChatModel{
		app:          app,
		contacts:     contacts,
		searchInput:  search,
		textarea:     ta,
		attachInput:  attach,
		viewport:     vp,
		spinner:      s,
		windowWidth:  80,
		windowHeight: 30,
	}
	m.applyFilter("")
	return m
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(m.refreshContactsCmd(), m.app.waitForRealtimeCmd())
}

func (m ChatModel) refreshContactsCmd() tea.Cmd {
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

func (m ChatModel) fetchThreadCmd(contactID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		messages, err := m.app.Client.Messages(ctx, contactID)
		return threadFetchedMsg{contactID: contactID, messages: messages, err: err}
	}
}

func (m ChatModel) sendTextCmd(contactID, tempID, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := m.app.Client.SendText(ctx, contactID, text)
		return sendResultMsg{contactID: contactID, tempID: tempID, err: err}
	}
}

func (m ChatModel) uploadMediaCmd(contactID, tempID, path, caption string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		result, err := m.app.Client.UploadMedia(ctx, contactID, path, caption)
		return uploadResultMsg{contactID: contactID, tempID: tempID, result: result, err: err}
	}
}

func (m ChatModel) openMediaCmd(messageID, fileName string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		entry, err := m.app.Media.Fetch(ctx, messageID, fileName)
		return mediaOpenedMsg{entry: entry, err: err}
	}
}

// applyFilter rebuilds the sidebar's visible subset from a search
// needle, matching name, phone number and the last message preview.
func (m *ChatModel) applyFilter(needle string) {
	needle = strings.ToLower(strings.TrimSpace(needle))
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

func (m *ChatModel) selectedContact() (models.Contact, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return models.Contact{}, false
	}
	return m.contacts[m.filtered[m.cursor]], true
}

// touchContact updates a sidebar row after a realtime event so the
// preview and time track the conversation without a full refresh.
func (m *ChatModel) touchContact(event models.MessageEvent) {
	for i := range m.contacts {
		if m.contacts[i].ID == event.ContactID {
			if event.Text != "" {
				m.contacts[i].LastMessage = event.Text
			} else if event.Media != nil {
				m.contacts[i].LastMessage = "[" + event.Media.Type + "]"
			}
			if event.Timestamp != "" {
				m.contacts[i].LastMessageTime = event.Timestamp
			}
			return
		}
	}
}

func (m *ChatModel) layout() {
	sidebarWidth := 30
	threadWidth := m.windowWidth - sidebarWidth - 4
	if m.windowWidth < narrowWidth {
		threadWidth = m.windowWidth - 4
	}
	if threadWidth < 20 {
		threadWidth = 20
	}

	headerHeight := 4
	composeHeight := 5
	helpHeight := 2
	m.viewport.Width = threadWidth
	m.viewport.Height = m.windowHeight - headerHeight - composeHeight - helpHeight
	if m.viewport.Height < 5 {
		m.viewport.Height = 5
	}
	m.textarea.SetWidth(threadWidth)
	m.renderThread()
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.layout()
		return m, nil

	case contactsRefreshedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.contacts = msg.contacts
		m.applyFilter(m.searchInput.Value())
		return m, nil

	case threadFetchedMsg:
		if m.thread == nil || msg.contactID != m.thread.ContactID() {
			return m, nil
		}
		m.loadingThread = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.thread.Load(msg.messages)
		m.renderThread()
		m.viewport.GotoBottom()
		return m, nil

	case sendResultMsg:
		m.sending--
		if m.thread == nil || msg.contactID != m.thread.ContactID() {
			return m, nil
		}
		if msg.err != nil {
			m.thread.MarkFailed(msg.tempID)
			m.err = msg.err
		}
		m.renderThread()
		return m, nil

	case uploadResultMsg:
		m.sending--
		if m.thread == nil || msg.contactID != m.thread.ContactID() {
			return m, nil
		}
		if msg.err != nil {
			// The file may be gone or oversized; keeping the bubble
			// around would promise a retry that cannot be assumed to
			// work. Drop it and surface the error instead.
			m.thread.Remove(msg.tempID)
			m.err = msg.err
		} else {
			m.thread.ConfirmMedia(msg.tempID, msg.result.MessageID, msg.result.Media)
		}
		m.renderThread()
		return m, nil

	case mediaOpenedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.status = "Saved to " + msg.entry.FilePath
		return m, nil

	case realtimeMsg:
		m.touchContact(msg.event)
		if m.thread != nil && m.thread.ApplyEvent(msg.event) {
			atBottom := m.viewport.AtBottom()
			m.renderThread()
			if atBottom {
				m.viewport.GotoBottom()
			}
		}
		return m, m.app.waitForRealtimeCmd()

	case realtimeClosedMsg:
		m.status = "Realtime connection closed; press r to refresh."
		return m, nil

	case spinner.TickMsg:
		if m.loadingThread || m.sending > 0 {
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

func (m ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.focus {
	case focusSearch:
		switch msg.String() {
		case "esc":
			m.focus = focusSidebar
			m.searchInput.Blur()
			return m, nil
		case "enter":
			m.focus = focusSidebar
			m.searchInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			m.applyFilter(m.searchInput.Value())
			return m, cmd
		}

	case focusAttach:
		switch msg.String() {
		case "esc":
			m.focus = focusCompose
			m.attachInput.Reset()
			m.attachInput.Blur()
			m.textarea.Focus()
			return m, textarea.Blink
		case "enter":
			path := strings.TrimSpace(m.attachInput.Value())
			if path == "" {
				return m, nil
			}
			caption := strings.TrimSpace(m.textarea.Value())
			m.attachInput.Reset()
			m.attachInput.Blur()
			m.textarea.Reset()
			m.focus = focusCompose
			m.textarea.Focus()

			media := models.Media{
				Type:     api.ClassifyMedia(path),
				FileName: path,
			}
			placeholder := m.thread.AppendPendingMedia(media, caption, nowTimestamp())
			m.sending++
			m.err = nil
			m.renderThread()
			m.viewport.GotoBottom()
			return m, tea.Batch(
				m.spinner.Tick,
				textarea.Blink,
				m.uploadMediaCmd(m.activeContact.ID, placeholder.ID, path, caption),
			)
		default:
			var cmd tea.Cmd
			m.attachInput, cmd = m.attachInput.Update(msg)
			return m, cmd
		}

	case focusCompose:
		switch msg.String() {
		case "esc":
			m.focus = focusSidebar
			m.textarea.Blur()
			return m, nil
		case "ctrl+s":
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" {
				return m, nil
			}
			m.textarea.Reset()
			placeholder := m.thread.AppendPendingText(text, nowTimestamp())
			m.sending++
			m.err = nil
			m.renderThread()
			m.viewport.GotoBottom()
			return m, tea.Batch(
				m.spinner.Tick,
				m.sendTextCmd(m.activeContact.ID, placeholder.ID, text),
			)
		case "ctrl+a":
			m.focus = focusAttach
			m.textarea.Blur()
			m.attachInput.Focus()
			return m, textinput.Blink
		case "ctrl+t":
			templates := NewTemplatesModel(m.app, &m)
			return m.handoff(templates)
		default:
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}
	}

	// Sidebar focus.
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc":
		dashboard := NewDashboardModel(m.app, m.contacts)
		return m.handoff(dashboard)

	case "/":
		m.focus = focusSearch
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

	case "enter":
		contact, ok := m.selectedContact()
		if !ok {
			return m, nil
		}
		m.activeContact = contact
		m.thread = conversation.NewThread(contact.ID)
		m.loadingThread = true
		m.err = nil
		m.status = ""
		m.focus = focusCompose
		m.textarea.Focus()
		return m, tea.Batch(
			m.spinner.Tick,
			textarea.Blink,
			m.fetchThreadCmd(contact.ID),
		)

	case "r":
		cmds := []tea.Cmd{m.refreshContactsCmd()}
		if m.thread != nil {
			m.loadingThread = true
			cmds = append(cmds, m.spinner.Tick, m.fetchThreadCmd(m.thread.ContactID()))
		}
		return m, tea.Batch(cmds...)

	case "R":
		if m.thread == nil {
			return m, nil
		}
		if tempID, ok := m.lastFailed(); ok {
			if msg, retryOK := m.thread.Retry(tempID); retryOK {
				m.sending++
				m.renderThread()
				return m, tea.Batch(
					m.spinner.Tick,
					m.sendTextCmd(m.activeContact.ID, tempID, msg.Text),
				)
			}
		}
		return m, nil

	case "o":
		if m.thread == nil {
			return m, nil
		}
		if target, ok := m.lastMedia(); ok {
			m.status = "Fetching " + target.Media.FileName + "..."
			return m, m.openMediaCmd(target.ID, target.Media.FileName)
		}
		return m, nil

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
}

// handoff transfers the pump and window size to the next screen.
func (m ChatModel) handoff(next tea.Model) (tea.Model, tea.Cmd) {
	if m.windowWidth > 0 {
		sized, cmd := next.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
		return sized, tea.Batch(sized.Init(), cmd)
	}
	return next, next.Init()
}

// lastFailed finds the most recent failed message in the open thread.
// Only text sends stay around as failed; media placeholders are removed
// when their upload errors.
func (m *ChatModel) lastFailed() (string, bool) {
	messages := m.thread.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Failed {
			return messages[i].ID, true
		}
	}
	return "", false
}

// lastMedia finds the most recent backend-confirmed media message.
func (m *ChatModel) lastMedia() (models.Message, bool) {
	messages := m.thread.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Media != nil && !msg.Pending && !msg.Failed &&
			!strings.HasPrefix(msg.ID, models.TempIDPrefix) {
			return msg, true
		}
	}
	return models.Message{}, false
}

// openDuplicate jumps straight into a conversation, used when contact
// creation collides with an existing record.
func (m *ChatModel) openDuplicate(contact models.Contact) tea.Cmd {
	m.activeContact = contact
	m.thread = conversation.NewThread(contact.ID)
	m.loadingThread = true
	m.focus = focusCompose
	m.textarea.Focus()
	return tea.Batch(m.spinner.Tick, textarea.Blink, m.fetchThreadCmd(contact.ID))
}

// insertTemplate drops picked template content into the composer.
func (m *ChatModel) insertTemplate(content string) {
	existing := m.textarea.Value()
	if existing != "" && !strings.HasSuffix(existing, " ") {
		existing += " "
	}
	m.textarea.SetValue(existing + content)
	m.focus = focusCompose
	m.textarea.Focus()
}

func nowTimestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (m *ChatModel) renderThread() {
	if m.thread == nil {
		m.viewport.SetContent("")
		return
	}
	theme := m.app.Theme()

	var content strings.Builder
	wrapWidth := m.viewport.Width
	if wrapWidth <= 0 {
		wrapWidth = 80
	}

	for i, message := range m.thread.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}

		stamp := message.Timestamp
		if label := timefmt.Label(message.Timestamp); label != "" {
			stamp = label
		}

		if message.FromCompany() {
			header := fmt.Sprintf("You • %s", stamp)
			if message.Pending {
				header = "You • sending " + m.spinner.View()
			} else if message.Failed {
				header = "You • failed, R to retry"
			}
			headerStyle := theme.Header
			if message.Failed {
				headerStyle = theme.Failed
			}
			content.WriteString(lipgloss.NewStyle().Align(lipgloss.Right).Width(wrapWidth).
				Render(headerStyle.Render(header)) + "\n")

			if message.Text != "" {
				wrapped := wordwrap.String(message.Text, wrapWidth-10)
				style := theme.FromMe
				if message.Pending || message.Failed {
					style = theme.Pending
				}
				content.WriteString(lipgloss.NewStyle().Align(lipgloss.Right).Width(wrapWidth).
					Render(style.Render(wrapped)) + "\n")
			}
			if message.Media != nil {
				label := fmt.Sprintf("📎 [%s: %s]", message.Media.Type, message.Media.FileName)
				content.WriteString(lipgloss.NewStyle().Align(lipgloss.Right).Width(wrapWidth).
					Render(theme.Header.Render(label)) + "\n")
			}
		} else {
			header := fmt.Sprintf("%s • %s", m.activeContact.DisplayName(), stamp)
			content.WriteString(theme.Header.Render(header) + "\n")

			if message.Text != "" {
				wrapped := wordwrap.String(message.Text, wrapWidth-10)
				content.WriteString(theme.FromOther.Render(wrapped) + "\n")
			}
			if message.Media != nil {
				label := fmt.Sprintf("📎 [%s: %s] o to open", message.Media.Type, message.Media.FileName)
				content.WriteString(theme.Header.Render(label) + "\n")
			}
		}
	}

	m.viewport.SetContent(content.String())
}

func (m ChatModel) sidebarView(height int) string {
	theme := m.app.Theme()
	isAdmin := m.app.Role() == models.RoleAdmin

	var b strings.Builder
	b.WriteString(m.searchInput.View() + "\n\n")

	rows := height - 3
	if rows < 1 {
		rows = 1
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}

	for i := start; i < len(m.filtered) && i < start+rows; i++ {
		contact := m.contacts[m.filtered[i]]

		label := contact.DisplayName()
		if when := timefmt.Label(contact.LastMessageTime); when != "" {
			label += " " + theme.Header.Render(when)
		}
		if isAdmin && contact.AssignedAgent != "" {
			label += " " + theme.Badge.Render(contact.AssignedAgent)
		}

		line := theme.SidebarItem.Render(label)
		if i == m.cursor {
			line = theme.SidebarSel.Render("> " + label)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")

		if contact.LastMessage != "" {
			preview := contact.LastMessage
			if len(preview) > 26 {
				preview = preview[:26] + "…"
			}
			b.WriteString("  " + theme.Help.Render(preview) + "\n")
		}
	}

	if len(m.filtered) == 0 {
		b.WriteString(theme.Help.Render("No contacts match."))
	}
	return b.String()
}

func (m ChatModel) threadView() string {
	theme := m.app.Theme()

	if m.thread == nil {
		return theme.Help.Render("Select a contact to open the conversation.")
	}

	title := m.activeContact.DisplayName()
	if m.activeContact.PhoneNumber != "" {
		title += "  " + theme.Header.Render(m.activeContact.PhoneNumber)
	}
	s := theme.Title.Render(title) + "\n"

	if m.loadingThread && m.thread.Len() == 0 {
		s += fmt.Sprintf("\n  %s Loading messages...\n", m.spinner.View())
	} else {
		s += m.viewport.View() + "\n"
	}

	if m.focus == focusAttach {
		s += "\n" + theme.Input.Render("Attach file:") + "\n"
		s += m.attachInput.View() + "\n"
		s += theme.Help.Render("enter: upload • esc: cancel")
		return s
	}

	s += "\n" + m.textarea.View()
	return s
}

func (m ChatModel) View() string {
	theme := m.app.Theme()

	var body string
	if m.windowWidth < narrowWidth {
		if m.thread != nil && m.focus != focusSidebar && m.focus != focusSearch {
			body = m.threadView()
		} else {
			body = m.sidebarView(m.windowHeight - 6)
		}
	} else {
		sidebar := lipgloss.NewStyle().Width(30).Render(m.sidebarView(m.windowHeight - 6))
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, "  ", m.threadView())
	}

	s := body + "\n"
	if m.err != nil {
		s += theme.Error.Render(m.err.Error()) + "\n"
	} else if m.status != "" {
		s += theme.Status.Render(m.status) + "\n"
	}

	switch m.focus {
	case focusCompose:
		s += theme.Help.Render("ctrl+s: send • ctrl+a: attach • ctrl+t: templates • esc: contacts")
	case focusSearch:
		s += theme.Help.Render("type to filter • enter/esc: done")
	case focusAttach:
		s += theme.Help.Render("enter: upload • esc: cancel")
	default:
		s += theme.Help.Render("↑↓/jk: contacts • enter: open • /: search • r: refresh • R: retry • o: open media • esc: menu • q: quit")
	}
	return s
}
