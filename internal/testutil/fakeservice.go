// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"tman/internal/gateway"
	"tman/internal/service"
)

// Messages returned by the fakes, matching the real API.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgEmailExists        = "Email already exists"
	MsgTaskNotFound       = "Task not found"
)

// FakeService is an in-memory implementation of service.Service for testing.
// Tasks are kept newest first, as the API orders them.
type FakeService struct {
	mu     sync.Mutex
	users  map[string]fakeUser // email -> user
	tasks  []service.Task
	nextID int64
	now    time.Time

	// Error injection for testing
	LoginErr      error
	RegisterErr   error
	ListTasksErr  error
	GetTaskErr    error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error

	// Call records
	ListTasksCalls  []int // requested page indexes
	CreateTaskCalls []service.TaskInput
	UpdateTaskCalls []int64
	DeleteTaskCalls []int64
}

type fakeUser struct {
	profile  service.Profile
	password string
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:  make(map[string]fakeUser),
		nextID: 1,
		now:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// AddUser registers an account that can log in.
func (f *FakeService) AddUser(id int64, name, email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[strings.ToLower(email)] = fakeUser{
		profile:  service.Profile{ID: id, Name: name, Email: email},
		password: password,
	}
}

// AddTask adds a task and returns it. Later tasks sort first.
func (f *FakeService) AddTask(title, description string, status service.Status) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(service.TaskInput{Title: title, Description: description, Status: status})
}

// Tasks returns a copy of all stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// ListCalls returns how many times ListTasks was called.
func (f *FakeService) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ListTasksCalls)
}

// TokenFor returns the token the fake issues for email.
func TokenFor(email string) string {
	return "token-" + strings.ToLower(email)
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, email, password string) (service.AuthResult, error) {
	if f.LoginErr != nil {
		return service.AuthResult{}, f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[strings.ToLower(email)]
	if !ok || u.password != password {
		return service.AuthResult{}, &gateway.APIError{Status: 400, Message: MsgInvalidCredentials}
	}
	return authResult(u.profile), nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, name, email, password string) (service.AuthResult, error) {
	if f.RegisterErr != nil {
		return service.AuthResult{}, f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := f.users[key]; exists {
		return service.AuthResult{}, &gateway.APIError{Status: 400, Message: MsgEmailExists}
	}
	p := service.Profile{ID: int64(len(f.users) + 1), Name: name, Email: email}
	f.users[key] = fakeUser{profile: p, password: password}
	return authResult(p), nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, page, size int) (service.Page, error) {
	f.mu.Lock()
	f.ListTasksCalls = append(f.ListTasksCalls, page)
	f.mu.Unlock()

	if f.ListTasksErr != nil {
		return service.Page{}, f.ListTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return Paginate(f.tasks, page, size), nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id int64) (service.Task, error) {
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(id)
	if i < 0 {
		return service.Task{}, &gateway.APIError{Status: 404, Message: MsgTaskNotFound}
	}
	return f.tasks[i], nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	f.mu.Lock()
	f.CreateTaskCalls = append(f.CreateTaskCalls, in)
	f.mu.Unlock()

	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(in), nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id int64, in service.TaskInput) (service.Task, error) {
	f.mu.Lock()
	f.UpdateTaskCalls = append(f.UpdateTaskCalls, id)
	f.mu.Unlock()

	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(id)
	if i < 0 {
		return service.Task{}, &gateway.APIError{Status: 404, Message: MsgTaskNotFound}
	}
	f.tasks[i].Title = in.Title
	f.tasks[i].Description = in.Description
	f.tasks[i].Status = in.Status
	return f.tasks[i], nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.DeleteTaskCalls = append(f.DeleteTaskCalls, id)
	f.mu.Unlock()

	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(id)
	if i < 0 {
		return &gateway.APIError{Status: 404, Message: MsgTaskNotFound}
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

func (f *FakeService) insertLocked(in service.TaskInput) service.Task {
	status := in.Status
	if status == "" {
		status = service.StatusPending
	}
	task := service.Task{
		ID:          f.nextID,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		CreatedAt:   service.Timestamp{Time: f.now.Add(time.Duration(f.nextID) * time.Minute)},
	}
	f.nextID++
	f.tasks = append([]service.Task{task}, f.tasks...)
	return task
}

func (f *FakeService) indexLocked(id int64) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Paginate slices tasks into the page'th page of size items.
// Out-of-range pages are empty; TotalPages is 0 for no tasks.
func Paginate(tasks []service.Task, page, size int) service.Page {
	if size <= 0 {
		size = service.PageSize
	}
	total := (len(tasks) + size - 1) / size
	content := []service.Task{}
	start := page * size
	if page >= 0 && start < len(tasks) {
		end := start + size
		if end > len(tasks) {
			end = len(tasks)
		}
		content = append(content, tasks[start:end]...)
	}
	return service.Page{Content: content, TotalPages: total, Index: page}
}

func authResult(p service.Profile) service.AuthResult {
	return service.AuthResult{Token: TokenFor(p.Email), Type: "Bearer", ID: p.ID, Name: p.Name, Email: p.Email}
}
