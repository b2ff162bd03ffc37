package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"tman/internal/auth"
	"tman/internal/editor"
	"tman/internal/service"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.screen == authScreen {
		return m.authView()
	}
	return m.taskView()
}

func (m Model) authView() string {
	var b strings.Builder
	st := m.flow.State()

	title, other := "Sign in", "register"
	if st.Mode == auth.RegisterMode {
		title, other = "Create account", "sign in"
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	labels := map[int]string{nameInput: "Name", emailInput: "Email", passwordInput: "Password"}
	for _, f := range m.authFields() {
		fmt.Fprintf(&b, "%-9s %s\n", labels[f], m.authInputs[f].View())
	}
	b.WriteString("\n")

	switch {
	case m.authBusy:
		b.WriteString(m.spinner.View() + " " + mutedStyle.Render("Submitting...") + "\n")
	case m.authErr != "":
		b.WriteString(errorStyle.Render(m.authErr) + "\n")
	case st.Phase == auth.Failed:
		b.WriteString(errorStyle.Render(st.Message) + "\n")
	default:
		b.WriteString("\n")
	}

	switchKey := key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", other))
	quit := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "quit"))
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.formKeys.Next, m.formKeys.Submit, switchKey, quit}))
	return panelStyle.Render(b.String())
}

func (m Model) taskView() string {
	var b strings.Builder
	st := m.list.State()

	header := titleStyle.Render("Tasks")
	if p, ok := m.store.Profile(); ok {
		who := p.Email
		if p.Name != "" {
			who = fmt.Sprintf("%s (%s)", p.Name, p.Email)
		}
		header += "  " + mutedStyle.Render(who)
	}
	b.WriteString(header + "\n\n")

	if len(st.Page.Content) == 0 {
		if st.Loading {
			b.WriteString(mutedStyle.Render("Loading tasks...") + "\n")
		} else {
			b.WriteString(mutedStyle.Render("No tasks yet. Press a to add one.") + "\n")
		}
	}
	for i, t := range st.Page.Content {
		b.WriteString(m.taskRow(i, t) + "\n")
	}

	b.WriteString("\n" + m.pageLine(st.Page))
	if m.pending > 0 {
		b.WriteString("  " + m.spinner.View())
	}
	b.WriteString("\n")

	switch {
	case st.Err != "":
		b.WriteString(errorStyle.Render(st.Err) + "\n")
	case m.failure != "":
		b.WriteString(errorStyle.Render(m.failure) + "\n")
	case m.notice != "":
		b.WriteString(accentStyle.Render(m.notice) + "\n")
	}

	switch m.mode {
	case createMode, editMode:
		b.WriteString(m.formView())
	case confirmMode:
		b.WriteString(panelStyle.Render(editor.DeletePrompt+" "+mutedStyle.Render("(y/n)")) + "\n")
	default:
		b.WriteString("\n" + m.help.View(m.keys))
	}
	return b.String()
}

func (m Model) taskRow(i int, t service.Task) string {
	prefix := "  "
	if i == m.cursor && m.mode == browseMode {
		prefix = selectedStyle.Render(">") + " "
	}
	title := t.Title
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	if t.Status == service.StatusDone {
		title = doneStyle.Render(title)
	}
	created := "          "
	if !t.CreatedAt.IsZero() {
		created = t.CreatedAt.Format("2006-01-02")
	}
	return fmt.Sprintf("%s%s %s  %s", prefix, statusBadge(t.Status), mutedStyle.Render(created), title)
}

func (m Model) pageLine(p service.Page) string {
	if p.TotalPages == 0 {
		return mutedStyle.Render("Page 0 of 0")
	}
	prev, next := "◀", "▶"
	if p.Index == 0 {
		prev = mutedStyle.Render(prev)
	}
	if p.Index >= p.TotalPages-1 {
		next = mutedStyle.Render(next)
	}
	return fmt.Sprintf("%s Page %d of %d %s", prev, p.Index+1, p.TotalPages, next)
}

func (m Model) formView() string {
	var b strings.Builder
	title := "New task"
	if m.mode == editMode {
		title = "Edit task"
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(m.fields[titleField].View() + "\n")
	b.WriteString(m.fields[descriptionField].View() + "\n")

	var opts []string
	for _, s := range service.Statuses {
		label := s.Label()
		if s == m.formStatus {
			label = statusStyles[s].Render("[" + label + "]")
		} else {
			label = mutedStyle.Render(" " + label + " ")
		}
		opts = append(opts, label)
	}
	cursor := "  "
	if m.fieldFocus == statusField {
		cursor = "> "
	}
	b.WriteString(cursor + strings.Join(opts, " ") + "\n")

	if m.formErr != "" {
		b.WriteString(errorStyle.Render(m.formErr) + "\n")
	}
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.formKeys.Next, m.formKeys.Submit, m.formKeys.Cancel}))
	return panelStyle.Render(b.String()) + "\n"
}
