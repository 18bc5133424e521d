// Package tui is the terminal dashboard.
package tui

import (
	"context"
	"fmt"
	"strings"

	"taskify/backend/internal/components"
	"taskify/backend/internal/dashboard"
	"taskify/backend/internal/models"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type mode int

const (
	modeList mode = iota
	modeForm
)

const (
	focusTitle = iota
	focusDescription
	focusPriority
	focusCount
)

type (
	loadedMsg    struct{ err error }
	opDoneMsg    struct{ err error }
	createdMsg   struct{ err error }
	signedOutMsg struct{ err error }
)

type Model struct {
	ctx   context.Context
	dash  *dashboard.Dashboard
	queue *dashboard.NotificationQueue
	items *components.ItemSet
	form  *components.TaskForm
	draft models.TaskInput

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	title   textinput.Model
	desc    textarea.Model

	mode      mode
	focus     int
	tab       dashboard.Tab
	cursor    int
	inFlight  int
	creating  bool
	status    []dashboard.Notification
	width     int
	quitting  bool
	signedOut bool
}

// New builds the model. Notifications reach the status line through queue,
// which must be the notifier dash was built with.
func New(ctx context.Context, dash *dashboard.Dashboard, queue *dashboard.NotificationQueue) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	title := textinput.New()
	title.Placeholder = "Enter task title"
	title.CharLimit = 200
	title.Width = 50

	desc := textarea.New()
	desc.Placeholder = "Enter task description (optional)"
	desc.CharLimit = 1000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	m := &Model{
		ctx:     ctx,
		dash:    dash,
		queue:   queue,
		items:   components.NewItemSet(dash.Toggle, dash.Delete),
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: s,
		title:   title,
		desc:    desc,
		tab:     dashboard.TabAll,
	}
	m.form = components.NewTaskForm(m.capture)
	return m
}

// Run starts the program and blocks until the user quits. It reports whether
// the user signed out.
func Run(ctx context.Context, dash *dashboard.Dashboard, queue *dashboard.NotificationQueue) (bool, error) {
	final, err := tea.NewProgram(New(ctx, dash, queue), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if m, ok := final.(*Model); ok {
		return m.SignedOut(), err
	}
	return false, err
}

// SignedOut reports whether the program ended through sign-out.
func (m *Model) SignedOut() bool {
	return m.signedOut
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m *Model) capture(_ context.Context, in models.TaskInput) error {
	m.draft = in
	return nil
}

func (m *Model) load() tea.Cmd {
	m.inFlight++
	return func() tea.Msg {
		return loadedMsg{err: m.dash.Load(m.ctx)}
	}
}

// run performs a dashboard operation off the update loop.
func (m *Model) run(op func(ctx context.Context) error) tea.Cmd {
	m.inFlight++
	return func() tea.Msg {
		return opDoneMsg{err: op(m.ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case createdMsg:
		m.creating = false
		m.inFlight--
		m.collectNotifications()
		m.clampCursor()
		return m, nil

	case loadedMsg, opDoneMsg:
		m.inFlight--
		m.collectNotifications()
		m.clampCursor()
		return m, nil

	case signedOutMsg:
		m.inFlight--
		m.collectNotifications()
		if msg.err != nil {
			return m, nil
		}
		m.signedOut = true
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		if m.mode == modeForm {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Operations still in flight may have shrunk the list since the last
	// message was handled.
	m.clampCursor()
	visible := m.dash.Filtered(m.tab)

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.NextTab):
		m.setTab(m.tab.Next())
	case key.Matches(msg, m.keys.TabAll):
		m.setTab(dashboard.TabAll)
	case key.Matches(msg, m.keys.TabPend):
		m.setTab(dashboard.TabPending)
	case key.Matches(msg, m.keys.TabDone):
		m.setTab(dashboard.TabCompleted)

	case key.Matches(msg, m.keys.Add):
		m.openForm()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Toggle):
		if len(visible) == 0 {
			return m, nil
		}
		item := m.items.Item(visible[m.cursor])
		completed := !item.Task().Completed
		return m, m.run(func(ctx context.Context) error { return item.Toggle(ctx, completed) })

	case key.Matches(msg, m.keys.Delete):
		if len(visible) == 0 {
			return m, nil
		}
		item := m.items.Item(visible[m.cursor])
		if item.Deleting() {
			return m, nil
		}
		return m, m.run(item.Delete)

	case key.Matches(msg, m.keys.Reload):
		return m, m.load()

	case key.Matches(msg, m.keys.SignOut):
		m.inFlight++
		return m, func() tea.Msg {
			return signedOutMsg{err: m.dash.SignOut(m.ctx)}
		}
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.form.Cancel()
		m.closeForm()
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		if msg.String() == "shift+tab" {
			m.setFocus((m.focus + focusCount - 1) % focusCount)
		} else {
			m.setFocus((m.focus + 1) % focusCount)
		}
		return m, nil

	case key.Matches(msg, m.keys.Priority):
		m.form.SetPriority(m.form.Priority().Next())
		return m, nil

	case key.Matches(msg, m.keys.Submit) && m.focus != focusDescription:
		return m, m.submit()
	}

	if m.focus == focusPriority {
		switch msg.String() {
		case " ", "right", "l":
			m.form.SetPriority(m.form.Priority().Next())
		case "left", "h":
			m.form.SetPriority(m.form.Priority().Next().Next())
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.desc, cmd = m.desc.Update(msg)
	}
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	m.form.SetTitle(m.title.Value())
	m.form.SetDescription(m.desc.Value())

	if !m.form.CanSubmit(m.creating) {
		return nil
	}
	submitted, _ := m.form.Submit(m.ctx)
	if !submitted {
		return nil
	}
	m.closeForm()

	input := m.draft
	m.creating = true
	m.inFlight++
	return func() tea.Msg {
		_, err := m.dash.Create(m.ctx, input)
		return createdMsg{err: err}
	}
}

func (m *Model) openForm() {
	m.form.Open()
	m.mode = modeForm
	m.title.SetValue(m.form.Title())
	m.desc.SetValue(m.form.Description())
	m.setFocus(focusTitle)
}

func (m *Model) closeForm() {
	m.mode = modeList
	m.title.Reset()
	m.desc.Reset()
	m.title.Blur()
	m.desc.Blur()
}

func (m *Model) setFocus(f int) {
	m.focus = f
	m.title.Blur()
	m.desc.Blur()
	switch f {
	case focusTitle:
		m.title.Focus()
	case focusDescription:
		m.desc.Focus()
	}
}

func (m *Model) setTab(t dashboard.Tab) {
	m.tab = t
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.dash.Filtered(m.tab))
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) collectNotifications() {
	if notes := m.queue.Drain(); len(notes) > 0 {
		m.status = notes
	}
}

func (m *Model) busy() bool {
	return m.inFlight > 0 || m.dash.Phase() == dashboard.PhaseLoading
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("My Tasks"))
	if m.busy() {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Welcome back, "+m.dash.User().Email) + "\n\n")

	if m.dash.Phase() == dashboard.PhaseLoading {
		b.WriteString(mutedStyle.Render("Loading your tasks...") + "\n")
		return b.String()
	}

	counts := m.dash.Counts()
	fmt.Fprintf(&b, "Total %d  %s  %s\n\n",
		counts.Total,
		completedStyle.Render(fmt.Sprintf("Completed %d", counts.Completed)),
		pendingStyle.Render(fmt.Sprintf("Pending %d", counts.Pending)),
	)

	if m.mode == modeForm {
		b.WriteString(m.viewForm() + "\n")
	}

	tabs := make([]string, 0, len(dashboard.Tabs))
	for _, t := range dashboard.Tabs {
		if t == m.tab {
			tabs = append(tabs, activeTabStyle.Render(t.Label(counts)))
		} else {
			tabs = append(tabs, tabStyle.Render(t.Label(counts)))
		}
	}
	b.WriteString(strings.Join(tabs, " ") + "\n\n")

	visible := m.dash.Filtered(m.tab)
	if len(visible) == 0 {
		b.WriteString(mutedStyle.Render("No tasks found. "+dashboard.EmptyStateMessage(m.tab)) + "\n")
	}
	for i, item := range m.items.Items(visible) {
		b.WriteString(m.viewItem(item, i == m.cursor) + "\n")
	}

	b.WriteString("\n")
	for _, n := range m.status {
		b.WriteString(renderNotification(n) + "\n")
	}

	if m.mode == modeForm {
		b.WriteString(m.help.ShortHelpView(m.keys.formHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.listHelp()))
	}
	return b.String()
}

func (m *Model) viewItem(item *components.TaskItem, selected bool) string {
	task := item.Task()

	cursor := "  "
	if selected {
		cursor = cursorStyle.Render("> ")
	}
	check := "[ ]"
	title := task.Title
	if task.Completed {
		check = "[x]"
		title = doneStyle.Render(title)
	}

	line := fmt.Sprintf("%s%s %s  %s  %s", cursor, check, title, renderBadge(item.Badge()),
		mutedStyle.Render(task.CreatedAt.Local().Format("Jan 2, 2006")))
	if item.Deleting() {
		line += mutedStyle.Render("  deleting…")
	}
	if task.Description != "" {
		line += "\n      " + mutedStyle.Render(task.Description)
	}
	return line
}

func (m *Model) viewForm() string {
	priority := renderBadge(components.BadgeFor(m.form.Priority()))
	if m.focus == focusPriority {
		priority = cursorStyle.Render("> ") + priority + mutedStyle.Render("  (space to change)")
	}

	body := strings.Join([]string{
		titleStyle.Render("Add New Task"),
		"Title *",
		m.title.View(),
		"Description",
		m.desc.View(),
		"Priority: " + priority,
	}, "\n")
	if m.creating {
		body += "\n" + mutedStyle.Render("Adding previous task…")
	}
	return panelStyle.Render(body)
}
