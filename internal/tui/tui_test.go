package tui

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"tman/internal/gateway"
	"tman/internal/service"
	"tman/internal/session"
	"tman/internal/testutil"
)

func newModel(t *testing.T, signedIn bool) (Model, *testutil.FakeService, *session.Store) {
	t.Helper()
	svc := testutil.NewFakeService()
	svc.AddUser(1, "Ana Lima", "ana@example.com", "secret")
	store := session.NewStore(session.NewMemoryStorage(), nil)
	if signedIn {
		profile := service.Profile{ID: 1, Name: "Ana Lima", Email: "ana@example.com"}
		if err := store.Set(testutil.TokenFor(profile.Email), profile); err != nil {
			t.Fatal(err)
		}
	}

	m := New(context.Background(), Deps{Service: svc, Session: store})
	// Blinking cursors schedule timers; keep them still under test.
	for i := range m.authInputs {
		m.authInputs[i].Cursor.SetMode(cursor.CursorStatic)
	}
	for i := range m.fields {
		m.fields[i].Cursor.SetMode(cursor.CursorStatic)
	}
	return m, svc, store
}

// start runs Init and resolves the resulting requests.
func start(t *testing.T, m Model) Model {
	t.Helper()
	return drain(t, m, m.Init())
}

// drain runs cmd and feeds request results back into the model. Other
// messages (spinner ticks, cursor blinks) are dropped.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case firstPage, authMsg, pageMsg, mutationMsg:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

func keyPress(s string) tea.KeyMsg {
	types := map[string]tea.KeyType{
		"enter": tea.KeyEnter, "tab": tea.KeyTab, "shift+tab": tea.KeyShiftTab,
		"esc": tea.KeyEsc, "ctrl+r": tea.KeyCtrlR,
		"up": tea.KeyUp, "down": tea.KeyDown, "left": tea.KeyLeft, "right": tea.KeyRight,
	}
	if kt, ok := types[s]; ok {
		return tea.KeyMsg{Type: kt}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send delivers each message in turn, resolving requests as it goes.
func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, cmd := m.Update(msg)
		m = drain(t, next.(Model), cmd)
	}
	return m
}

// press is send for key names and typed text.
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = send(t, m, keyPress(k))
	}
	return m
}

func TestNew_NoSessionShowsSignIn(t *testing.T) {
	m, _, _ := newModel(t, false)

	if m.screen != authScreen {
		t.Fatalf("expected sign-in screen, got %v", m.screen)
	}
	view := m.View()
	if !strings.Contains(view, "Sign in") || strings.Contains(view, "Name") {
		t.Errorf("unexpected sign-in view:\n%s", view)
	}
}

func TestSignIn_Success(t *testing.T) {
	m, svc, store := newModel(t, false)
	svc.AddTask("Buy milk", "", service.StatusPending)

	m = press(t, m, "ana@example.com", "tab", "secret", "enter")

	if m.screen != taskScreen {
		t.Fatalf("expected task screen, got %v", m.screen)
	}
	if !store.Authenticated() {
		t.Error("expected session stored")
	}
	if !reflect.DeepEqual(svc.ListTasksCalls, []int{0}) {
		t.Errorf("expected first page fetched, got %v", svc.ListTasksCalls)
	}
	view := m.View()
	if !strings.Contains(view, "Buy milk") || !strings.Contains(view, "Ana Lima") {
		t.Errorf("expected tasks and profile in view:\n%s", view)
	}
	if m.authInputs[passwordInput].Value() != "" {
		t.Error("expected password input cleared")
	}
}

func TestSignIn_Failure(t *testing.T) {
	m, svc, store := newModel(t, false)

	m = press(t, m, "ana@example.com", "tab", "wrong", "enter")

	if m.screen != authScreen {
		t.Fatal("expected to stay on sign-in screen")
	}
	if store.Authenticated() {
		t.Error("expected no session")
	}
	if !strings.Contains(m.View(), testutil.MsgInvalidCredentials) {
		t.Errorf("expected error in view:\n%s", m.View())
	}
	if m.authInputs[emailInput].Value() != "ana@example.com" {
		t.Error("expected form input kept")
	}
	if len(svc.ListTasksCalls) != 0 {
		t.Error("expected no task requests")
	}
}

func TestSignIn_RequiresFields(t *testing.T) {
	m, _, store := newModel(t, false)

	m = press(t, m, "enter")

	if m.authBusy || store.Authenticated() {
		t.Error("expected no submission")
	}
	if !strings.Contains(m.View(), "All fields are required") {
		t.Errorf("expected validation message:\n%s", m.View())
	}
}

func TestRegister_ToggleAndSubmit(t *testing.T) {
	m, _, store := newModel(t, false)

	m = press(t, m, "ctrl+r")
	if view := m.View(); !strings.Contains(view, "Create account") || !strings.Contains(view, "Name") {
		t.Fatalf("expected register form:\n%s", view)
	}
	if m.authFocus != nameInput {
		t.Errorf("expected focus on name, got %d", m.authFocus)
	}

	m = press(t, m, "Bo", "tab", "bo@example.com", "tab", "pw", "enter")

	if m.screen != taskScreen {
		t.Fatal("expected task screen after register")
	}
	if p, _ := store.Profile(); p.Email != "bo@example.com" {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestRestoredSession_LoadsFirstPage(t *testing.T) {
	m, svc, _ := newModel(t, true)
	if m.screen != taskScreen {
		t.Fatal("expected task screen for restored session")
	}

	m = start(t, m)

	if !reflect.DeepEqual(svc.ListTasksCalls, []int{0}) {
		t.Errorf("expected one fetch of page 0, got %v", svc.ListTasksCalls)
	}
	if !strings.Contains(m.View(), "No tasks yet") {
		t.Errorf("expected empty state:\n%s", m.View())
	}
	if m.pending != 0 {
		t.Errorf("expected no requests in flight, got %d", m.pending)
	}
}

func TestCreateTask(t *testing.T) {
	m, svc, _ := newModel(t, true)
	m = start(t, m)

	m = press(t, m, "a", "Buy milk", "enter")

	if len(svc.CreateTaskCalls) != 1 {
		t.Fatalf("expected one create, got %d", len(svc.CreateTaskCalls))
	}
	if in := svc.CreateTaskCalls[0]; in.Title != "Buy milk" || in.Status != service.StatusPending {
		t.Errorf("unexpected create body %+v", in)
	}
	if !reflect.DeepEqual(svc.ListTasksCalls, []int{0, 0}) {
		t.Errorf("expected exactly one refetch, got %v", svc.ListTasksCalls)
	}
	if m.mode != browseMode || m.create.Visible {
		t.Error("expected form closed")
	}
	view := m.View()
	if !strings.Contains(view, "Buy milk") || !strings.Contains(view, "Task created") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestCreateTask_EmptyTitle(t *testing.T) {
	m, svc, _ := newModel(t, true)
	m = start(t, m)

	m = press(t, m, "a", "enter")

	if len(svc.CreateTaskCalls) != 0 {
		t.Error("expected no request")
	}
	if m.mode != createMode || m.formErr != "Title cannot be empty" {
		t.Errorf("expected form kept with error, got mode %v err %q", m.mode, m.formErr)
	}
}

func TestCreateTask_ServerError(t *testing.T) {
	m, svc, _ := newModel(t, true)
	m = start(t, m)
	svc.CreateTaskErr = &gateway.APIError{Status: 400, Message: "Validation failed"}

	m = press(t, m, "a", "x", "enter")

	if m.mode != createMode {
		t.Fatal("expected form to stay open")
	}
	if m.formErr != "Validation failed" {
		t.Errorf("expected server message, got %q", m.formErr)
	}
	if m.fields[titleField].Value() != "x" {
		t.Error("expected input kept")
	}
}

func TestCreateTask_LateResultKeepsReopenedForm(t *testing.T) {
	m, svc, _ := newModel(t, true)
	m = start(t, m)

	m = press(t, m, "a", "first")
	next, inFlight := m.Update(keyPress("enter"))
	m = next.(Model)
	m = press(t, m, "esc", "a", "second")

	m = drain(t, m, inFlight)

	if len(svc.CreateTaskCalls) != 1 || svc.CreateTaskCalls[0].Title != "first" {
		t.Fatalf("unexpected creates %+v", svc.CreateTaskCalls)
	}
	if m.mode != createMode || !m.create.Visible {
		t.Fatal("expected the reopened form to stay open")
	}
	if got := m.fields[titleField].Value(); got != "second" {
		t.Errorf("expected typed input kept, got %q", got)
	}
	if m.notice != "Task created" || m.pending != 0 {
		t.Errorf("expected created notice and nothing pending, got %q pending %d", m.notice, m.pending)
	}
}

func TestEditTask(t *testing.T) {
	m, svc, _ := newModel(t, true)
	svc.AddTask("Write report", "Q3", service.StatusPending)
	m = start(t, m)

	m = press(t, m, "e")
	if m.fields[titleField].Value() != "Write report" || m.fields[descriptionField].Value() != "Q3" {
		t.Fatalf("expected form prefilled, got %q %q", m.fields[titleField].Value(), m.fields[descriptionField].Value())
	}

	m = press(t, m, "tab", "tab", "right", "enter")

	if !reflect.DeepEqual(svc.UpdateTaskCalls, []int64{1}) {
		t.Fatalf("unexpected update calls %v", svc.UpdateTaskCalls)
	}
	got := svc.Tasks()[0]
	if got.Status != service.StatusInProgress || got.Title != "Write report" {
		t.Errorf("unexpected task %+v", got)
	}
	if m.mode != browseMode || m.editing != nil {
		t.Error("expected edit mode left")
	}
	if len(svc.ListTasksCalls) != 2 {
		t.Errorf("expected one refetch, got %v", svc.ListTasksCalls)
	}
}

func TestEditTask_Cancel(t *testing.T) {
	m, svc, _ := newModel(t, true)
	svc.AddTask("a", "", service.StatusPending)
	m = start(t, m)

	m = press(t, m, "e", "zzz", "esc")

	if m.mode != browseMode || m.editing != nil {
		t.Error("expected edit discarded")
	}
	if len(svc.UpdateTaskCalls) != 0 {
		t.Error("expected no request")
	}
}

func TestDelete_Declined(t *testing.T) {
	m, svc, _ := newModel(t, true)
	svc.AddTask("a", "", service.StatusPending)
	m = start(t, m)

	m = press(t, m, "d")
	if !strings.Contains(m.View(), "Are you sure you want to delete this task?") {
		t.Fatalf("expected confirmation prompt:\n%s", m.View())
	}
	m = press(t, m, "n")

	if m.mode != browseMode || len(svc.DeleteTaskCalls) != 0 {
		t.Error("expected no DELETE after declining")
	}
}

func TestDelete_Confirmed(t *testing.T) {
	m, svc, _ := newModel(t, true)
	svc.AddTask("a", "", service.StatusPending)
	m = start(t, m)

	m = press(t, m, "d", "y")

	if len(svc.Tasks()) != 0 {
		t.Error("expected task deleted")
	}
	if !strings.Contains(m.View(), "No tasks yet") {
		t.Errorf("expected refreshed empty list:\n%s", m.View())
	}
}

func TestDelete_FailureKeepsList(t *testing.T) {
	m, svc, _ := newModel(t, true)
	svc.AddTask("a", "", service.StatusPending)
	m = start(t, m)
	svc.DeleteTaskErr = &gateway.APIError{Status: 404, Message: testutil.MsgTaskNotFound}

	m = press(t, m, "d", "y")

	if len(m.list.State().Page.Content) != 1 {
		t.Error("expected list unchanged")
	}
	if m.failure != testutil.MsgTaskNotFound {
		t.Errorf("expected failure message, got %q", m.failure)
	}
}

func TestPagination(t *testing.T) {
	m, svc, _ := newModel(t, true)
	for i := 0; i < 12; i++ {
		svc.AddTask("t", "", service.StatusPending)
	}
	m = start(t, m)

	m = press(t, m, "right")
	if !strings.Contains(m.View(), "Page 2 of 2") {
		t.Errorf("expected second page:\n%s", m.View())
	}
	m = press(t, m, "right", "left")

	if want := []int{0, 1, 1, 0}; !reflect.DeepEqual(svc.ListTasksCalls, want) {
		t.Errorf("expected %v, got %v", want, svc.ListTasksCalls)
	}
}

func TestFetchErrorKeepsPage(t *testing.T) {
	m, svc, _ := newModel(t, true)
	svc.AddTask("Buy milk", "", service.StatusPending)
	m = start(t, m)
	svc.ListTasksErr = errors.New("offline")

	m = press(t, m, "r")

	view := m.View()
	if !strings.Contains(view, "Buy milk") || !strings.Contains(view, "offline") {
		t.Errorf("expected stale page with error:\n%s", view)
	}
}

func TestLogout_DropsStaleResults(t *testing.T) {
	m, svc, store := newModel(t, true)
	svc.AddTask("a", "", service.StatusPending)
	m = start(t, m)
	oldGen := m.gen

	m = press(t, m, "L")
	if m.screen != authScreen || store.Authenticated() {
		t.Fatal("expected signed out")
	}
	if len(m.list.State().Page.Content) != 0 {
		t.Error("expected task cache cleared")
	}

	m = send(t, m,
		mutationMsg{gen: oldGen, op: "delete", err: errors.New("late")},
		authMsg{gen: oldGen},
	)
	if m.failure != "" || m.screen != authScreen || m.pending != 0 {
		t.Errorf("expected stale results ignored, got failure %q screen %v pending %d", m.failure, m.screen, m.pending)
	}
}

func TestCycleStatus(t *testing.T) {
	if got := cycleStatus(service.StatusDone, 1); got != service.StatusPending {
		t.Errorf("expected wrap to pending, got %q", got)
	}
	if got := cycleStatus(service.StatusPending, -1); got != service.StatusDone {
		t.Errorf("expected wrap to done, got %q", got)
	}
}
