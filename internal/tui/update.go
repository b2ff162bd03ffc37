package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"tman/internal/auth"
	"tman/internal/editor"
	"tman/internal/gateway"
	"tman/internal/service"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case firstPage:
		if m.screen != taskScreen {
			return m, nil
		}
		cmd := m.start(m.fetch(func(ctx context.Context) error {
			return m.list.FetchPage(ctx, 0)
		}))
		return m, cmd
	case authMsg:
		return m.onAuth(msg)
	case pageMsg:
		return m.onPage(msg)
	case mutationMsg:
		return m.onMutation(msg)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.screen == authScreen {
			return m.updateAuth(msg)
		}
		switch m.mode {
		case createMode, editMode:
			return m.updateForm(msg)
		case confirmMode:
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)
	}
	return m.updateFocused(msg)
}

// start counts a request in flight and starts the spinner with the first one.
func (m *Model) start(cmd tea.Cmd) tea.Cmd {
	m.pending++
	if m.pending == 1 {
		return tea.Batch(cmd, m.spinner.Tick)
	}
	return cmd
}

// done counts a request as resolved.
func (m *Model) done() {
	if m.pending > 0 {
		m.pending--
	}
}

func (m Model) fetch(fn func(ctx context.Context) error) tea.Cmd {
	gen, ctx := m.gen, m.ctx
	return func() tea.Msg {
		return pageMsg{gen: gen, err: fn(ctx)}
	}
}

// switchScreen tears down the current screen. Requests still in flight
// resolve into the old generation and are ignored.
func (m *Model) switchScreen(s screen) {
	m.gen++
	m.pending = 0
	m.screen = s
	m.mode = browseMode
	m.cursor = 0
	m.editing = nil
	m.create = editor.CreateForm{}
	m.notice, m.failure, m.formErr, m.authErr = "", "", "", ""
	m.list.Reset()
}

// Sign-in screen

func (m Model) authFields() []int {
	if m.flow.State().Mode == auth.RegisterMode {
		return []int{nameInput, emailInput, passwordInput}
	}
	return []int{emailInput, passwordInput}
}

func (m *Model) setAuthFocus(idx int) tea.Cmd {
	m.authFocus = idx
	var cmd tea.Cmd
	for i := range m.authInputs {
		if i == idx {
			cmd = m.authInputs[i].Focus()
		} else {
			m.authInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) moveAuthFocus(delta int) tea.Cmd {
	fields := m.authFields()
	pos := 0
	for i, f := range fields {
		if f == m.authFocus {
			pos = i
		}
	}
	return m.setAuthFocus(fields[wrapIndex(pos+delta, len(fields))])
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.formKeys.Cancel):
		return m, tea.Quit
	case key.Matches(msg, m.formKeys.Switch):
		if m.authBusy {
			return m, nil
		}
		m.flow.Toggle()
		m.authErr = ""
		cmd := m.setAuthFocus(m.authFields()[0])
		return m, cmd
	case key.Matches(msg, m.formKeys.Next):
		cmd := m.moveAuthFocus(1)
		return m, cmd
	case key.Matches(msg, m.formKeys.Prev):
		cmd := m.moveAuthFocus(-1)
		return m, cmd
	case key.Matches(msg, m.formKeys.Submit):
		return m.submitAuth()
	}
	var cmd tea.Cmd
	m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	return m, cmd
}

func (m Model) submitAuth() (tea.Model, tea.Cmd) {
	if m.authBusy {
		return m, nil
	}
	mode := m.flow.State().Mode
	form := auth.Form{
		Name:     strings.TrimSpace(m.authInputs[nameInput].Value()),
		Email:    strings.TrimSpace(m.authInputs[emailInput].Value()),
		Password: m.authInputs[passwordInput].Value(),
	}
	if form.Email == "" || form.Password == "" || (mode == auth.RegisterMode && form.Name == "") {
		m.authErr = "All fields are required"
		return m, nil
	}

	m.authBusy = true
	m.authErr = ""
	gen, ctx, flow := m.gen, m.ctx, m.flow
	cmd := m.start(func() tea.Msg {
		p, err := flow.Submit(ctx, form)
		return authMsg{gen: gen, profile: p, err: err}
	})
	return m, cmd
}

func (m Model) onAuth(msg authMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		return m, nil
	}
	m.done()
	m.authBusy = false
	if errors.Is(msg.err, auth.ErrBusy) {
		return m, nil
	}
	if msg.err != nil {
		m.logger.Debug("sign in failed", "err", msg.err)
		return m, nil
	}

	m.logger.Debug("signed in", "email", msg.profile.Email)
	m.authInputs[passwordInput].SetValue("")
	m.switchScreen(taskScreen)
	cmd := m.start(m.fetch(func(ctx context.Context) error {
		return m.list.FetchPage(ctx, 0)
	}))
	return m, cmd
}

// Task screen

func (m Model) selected() (service.Task, bool) {
	content := m.list.State().Page.Content
	if m.cursor < 0 || m.cursor >= len(content) {
		return service.Task{}, false
	}
	return content[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.list.State().Page.Content)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, m.keys.PrevPage):
		m.notice, m.failure = "", ""
		cmd := m.start(m.fetch(m.list.Prev))
		return m, cmd
	case key.Matches(msg, m.keys.NextPage):
		m.notice, m.failure = "", ""
		cmd := m.start(m.fetch(m.list.Next))
		return m, cmd
	case key.Matches(msg, m.keys.Refresh):
		m.notice, m.failure = "", ""
		cmd := m.start(m.fetch(m.list.Refresh))
		return m, cmd
	case key.Matches(msg, m.keys.Add):
		m.create.Toggle()
		m.createSeq++
		m.mode = createMode
		cmd := m.openForm(m.create.Draft)
		return m, cmd
	case key.Matches(msg, m.keys.Edit):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editing = &editor.Item{Task: task}
		m.editing.StartEdit()
		m.mode = editMode
		cmd := m.openForm(m.editing.Draft)
		return m, cmd
	case key.Matches(msg, m.keys.Delete):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.deleting = task.ID
		m.mode = confirmMode
	case key.Matches(msg, m.keys.Logout):
		if err := m.flow.Logout(); err != nil {
			m.logger.Warn("logout: session storage", "err", err)
		}
		m.switchScreen(authScreen)
		cmd := m.setAuthFocus(emailInput)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = browseMode
		id, gen, ctx, ed := m.deleting, m.gen, m.ctx, m.editor
		yes := editor.ConfirmFunc(func(string) bool { return true })
		cmd := m.start(func() tea.Msg {
			return mutationMsg{gen: gen, op: "delete", err: ed.Delete(ctx, id, yes)}
		})
		return m, cmd
	case "n", "N", "esc":
		m.mode = browseMode
		m.deleting = 0
	}
	return m, nil
}

// Task form

func (m *Model) openForm(d editor.Draft) tea.Cmd {
	m.formErr = ""
	m.fields[titleField].SetValue(d.Title)
	m.fields[titleField].CursorEnd()
	m.fields[descriptionField].SetValue(d.Description)
	m.formStatus = d.Status
	return m.setFieldFocus(titleField)
}

func (m *Model) closeForm() {
	m.mode = browseMode
	m.formErr = ""
	for i := range m.fields {
		m.fields[i].Blur()
	}
}

func (m *Model) setFieldFocus(idx int) tea.Cmd {
	m.fieldFocus = wrapIndex(idx, fieldCount)
	var cmd tea.Cmd
	for i := range m.fields {
		if i == m.fieldFocus {
			cmd = m.fields[i].Focus()
		} else {
			m.fields[i].Blur()
		}
	}
	return cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.formKeys.Cancel):
		if m.mode == createMode {
			m.create.Toggle()
		} else if m.editing != nil {
			m.editing.Cancel()
			m.editing = nil
		}
		m.closeForm()
		return m, nil
	case key.Matches(msg, m.formKeys.Submit):
		return m.submitForm()
	case msg.String() == "tab":
		cmd := m.setFieldFocus(m.fieldFocus + 1)
		return m, cmd
	case msg.String() == "shift+tab":
		cmd := m.setFieldFocus(m.fieldFocus - 1)
		return m, cmd
	}

	if m.fieldFocus == statusField {
		switch msg.String() {
		case "left", "h":
			m.formStatus = cycleStatus(m.formStatus, -1)
		case "right", "l", " ":
			m.formStatus = cycleStatus(m.formStatus, 1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	draft := editor.Draft{
		Title:       strings.TrimSpace(m.fields[titleField].Value()),
		Description: m.fields[descriptionField].Value(),
		Status:      m.formStatus,
	}
	if draft.Title == "" {
		m.formErr = "Title cannot be empty"
		return m, nil
	}
	m.formErr = ""

	gen, ctx, ed := m.gen, m.ctx, m.editor
	if m.mode == createMode {
		form := m.create
		form.Draft = draft
		seq := m.createSeq
		cmd := m.start(func() tea.Msg {
			_, err := ed.Create(ctx, &form)
			return mutationMsg{gen: gen, op: "create", err: err, create: &form, form: seq}
		})
		return m, cmd
	}

	if m.editing == nil {
		return m, nil
	}
	item := *m.editing
	item.Draft = draft
	cmd := m.start(func() tea.Msg {
		_, err := ed.Save(ctx, &item)
		return mutationMsg{gen: gen, op: "update", err: err, item: &item}
	})
	return m, cmd
}

func (m Model) onPage(msg pageMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		return m, nil
	}
	m.done()
	m.clampCursor()
	return m, nil
}

func (m Model) onMutation(msg mutationMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		return m, nil
	}
	m.done()
	if errors.Is(msg.err, editor.ErrBusy) {
		return m, nil
	}

	sameForm := msg.op == "create" && m.mode == createMode && msg.form == m.createSeq
	if msg.err != nil {
		text := gateway.Message(msg.err)
		switch {
		case sameForm,
			msg.op == "update" && m.mode == editMode && m.editing != nil && m.editing.Task.ID == msg.item.Task.ID:
			m.formErr = text
		default:
			m.failure = text
		}
		return m, nil
	}

	switch msg.op {
	case "create":
		m.notice = "Task created"
		if sameForm {
			m.create = *msg.create
			m.closeForm()
		}
	case "update":
		m.notice = "Task updated"
		if m.mode == editMode && m.editing != nil && m.editing.Task.ID == msg.item.Task.ID {
			m.editing = nil
			m.closeForm()
		}
	case "delete":
		m.notice = "Task deleted"
	}
	m.failure = ""
	m.clampCursor()
	return m, nil
}

// updateFocused forwards non-key messages, such as cursor blinks, to the
// focused input.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.screen == authScreen:
		m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	case (m.mode == createMode || m.mode == editMode) && m.fieldFocus < statusField:
		m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	}
	return m, cmd
}

func cycleStatus(s service.Status, delta int) service.Status {
	pos := 0
	for i, st := range service.Statuses {
		if st == s {
			pos = i
		}
	}
	return service.Statuses[wrapIndex(pos+delta, len(service.Statuses))]
}

func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}
