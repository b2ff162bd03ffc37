// Package tui is the interactive terminal interface: a sign-in screen and a
// paged task screen over the same session, list and editor components the
// CLI commands use.
package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tman/internal/auth"
	"tman/internal/editor"
	"tman/internal/service"
	"tman/internal/session"
	"tman/internal/tasklist"
)

// Deps are the components the UI drives.
type Deps struct {
	Service service.Service
	Session *session.Store
	Logger  *slog.Logger
	In      io.Reader
	Out     io.Writer
}

type screen int

const (
	authScreen screen = iota
	taskScreen
)

type mode int

const (
	browseMode mode = iota
	createMode
	editMode
	confirmMode
)

// Sign-in inputs.
const (
	nameInput = iota
	emailInput
	passwordInput
)

// Task form fields. The status field is a selector, not a text input.
const (
	titleField = iota
	descriptionField
	statusField
	fieldCount
)

// Results of background requests. gen is the screen generation the
// request was issued for; results for an older generation are dropped.
type (
	authMsg struct {
		gen     int
		profile service.Profile
		err     error
	}

	pageMsg struct {
		gen int
		err error
	}

	mutationMsg struct {
		gen    int
		op     string
		err    error
		create *editor.CreateForm
		form   int // createSeq of the form a create was submitted from
		item   *editor.Item
	}
)

// Model is the bubbletea model for the whole program.
type Model struct {
	ctx    context.Context
	store  *session.Store
	logger *slog.Logger
	flow   *auth.Flow
	list   *tasklist.Controller
	editor *editor.Editor

	screen  screen
	gen     int
	pending int

	authInputs []textinput.Model
	authFocus  int
	authBusy   bool
	authErr    string

	mode       mode
	cursor     int
	create     editor.CreateForm
	createSeq  int // bumped each time the create form opens
	editing    *editor.Item
	deleting   int64
	fields     []textinput.Model
	fieldFocus int
	formStatus service.Status
	formErr    string
	notice     string
	failure    string

	keys     keyMap
	formKeys formKeys
	help     help.Model
	spinner  spinner.Model
}

// New creates the model. A restored session opens the task screen,
// otherwise the sign-in screen.
func New(ctx context.Context, d Deps) Model {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	list := tasklist.New(d.Service)

	m := Model{
		ctx:      ctx,
		store:    d.Session,
		logger:   logger,
		flow:     auth.NewFlow(d.Service, d.Session),
		list:     list,
		editor:   editor.New(d.Service, list),
		keys:     defaultKeys(),
		formKeys: defaultFormKeys(),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle)),
	}

	m.authInputs = make([]textinput.Model, 3)
	for i, placeholder := range []string{"Your name", "you@example.com", "Password"} {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 256
		ti.Width = 40
		m.authInputs[i] = ti
	}
	m.authInputs[passwordInput].EchoMode = textinput.EchoPassword
	m.authInputs[passwordInput].EchoCharacter = '•'

	m.fields = make([]textinput.Model, 2)
	for i, placeholder := range []string{"Task title", "Description (optional)"} {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 500
		ti.Width = 50
		m.fields[i] = ti
	}

	if d.Session != nil && d.Session.Authenticated() {
		m.screen = taskScreen
	} else {
		m.screen = authScreen
		m.setAuthFocus(emailInput)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.screen == taskScreen {
		return func() tea.Msg { return firstPage{} }
	}
	return textinput.Blink
}

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, d Deps) error {
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if d.In != nil {
		opts = append(opts, tea.WithInput(d.In))
	}
	if d.Out != nil {
		opts = append(opts, tea.WithOutput(d.Out))
	}

	_, err := tea.NewProgram(New(ctx, d), opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// firstPage asks a restored task screen to load page 0.
type firstPage struct{}
