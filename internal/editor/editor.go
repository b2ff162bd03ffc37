package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tman/internal/service"
)

// DeletePrompt is shown before a task is deleted.
const DeletePrompt = "Are you sure you want to delete this task?"

var (
	// ErrBusy is returned when the same scope already has a request in flight.
	ErrBusy = errors.New("operation already in progress")

	// ErrNotConfirmed is returned when the user declines a delete.
	ErrNotConfirmed = errors.New("delete not confirmed")
)

// Refresher refetches the visible task page.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Editor submits task changes. The create form and each task id are
// separate scopes; a scope accepts one request at a time while different
// scopes may overlap.
type Editor struct {
	svc  service.Service
	list Refresher

	mu       sync.Mutex
	creating bool
	busy     map[int64]bool
}

// New creates an Editor that refreshes list after each successful change.
func New(svc service.Service, list Refresher) *Editor {
	return &Editor{svc: svc, list: list, busy: make(map[int64]bool)}
}

// Busy reports whether task id has a request in flight.
func (e *Editor) Busy(id int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy[id]
}

// Creating reports whether a create request is in flight.
func (e *Editor) Creating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.creating
}

// Create submits the form's draft. On success the draft is cleared, the
// form is hidden and the list is refreshed once.
func (e *Editor) Create(ctx context.Context, form *CreateForm) (service.Task, error) {
	if err := form.Draft.Validate(); err != nil {
		return service.Task{}, err
	}

	e.mu.Lock()
	if e.creating {
		e.mu.Unlock()
		return service.Task{}, ErrBusy
	}
	e.creating = true
	e.mu.Unlock()

	task, err := e.svc.CreateTask(ctx, form.Draft.Input())

	e.mu.Lock()
	e.creating = false
	e.mu.Unlock()

	if err != nil {
		return service.Task{}, fmt.Errorf("create task: %w", err)
	}
	form.Draft = NewDraft()
	form.Visible = false
	e.refresh(ctx)
	return task, nil
}

// Save submits an item's draft with PUT. On success the item leaves edit
// mode and the list is refreshed once.
func (e *Editor) Save(ctx context.Context, item *Item) (service.Task, error) {
	task, err := e.Update(ctx, item.Task.ID, item.Draft)
	if err != nil {
		return service.Task{}, err
	}
	item.Task = task
	item.Cancel()
	return task, nil
}

// Update replaces task id with the full draft and refreshes the list.
func (e *Editor) Update(ctx context.Context, id int64, d Draft) (service.Task, error) {
	if err := d.Validate(); err != nil {
		return service.Task{}, err
	}
	if !e.acquire(id) {
		return service.Task{}, ErrBusy
	}
	task, err := e.svc.UpdateTask(ctx, id, d.Input())
	e.release(id)

	if err != nil {
		return service.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	e.refresh(ctx)
	return task, nil
}

// Delete asks for confirmation, then deletes task id and refreshes the
// list. A declined confirmation issues no request.
func (e *Editor) Delete(ctx context.Context, id int64, confirm Confirmer) error {
	if confirm == nil || !confirm.Confirm(DeletePrompt) {
		return ErrNotConfirmed
	}
	if !e.acquire(id) {
		return ErrBusy
	}
	err := e.svc.DeleteTask(ctx, id)
	e.release(id)

	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	e.refresh(ctx)
	return nil
}

func (e *Editor) acquire(id int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy[id] {
		return false
	}
	e.busy[id] = true
	return true
}

func (e *Editor) release(id int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.busy, id)
}

// refresh errors land in the list's own error state.
func (e *Editor) refresh(ctx context.Context) {
	if e.list != nil {
		_ = e.list.Refresh(ctx)
	}
}
