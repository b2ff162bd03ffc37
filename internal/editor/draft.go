// Package editor implements task create, edit and delete flows. Every
// successful change asks the task list to refetch; nothing is patched
// locally.
package editor

import (
	"fmt"
	"strings"

	"tman/internal/service"
)

// Draft is unsaved form state for a task being created or edited.
type Draft struct {
	Title       string
	Description string
	Status      service.Status
}

// NewDraft returns an empty draft with status pending.
func NewDraft() Draft {
	return Draft{Status: service.StatusPending}
}

// DraftFrom initializes a draft from a task's current fields.
func DraftFrom(t service.Task) Draft {
	return Draft{Title: t.Title, Description: t.Description, Status: t.Status}
}

// Validate rejects a status outside the closed set. Title presence is left
// to the caller's UI and to the server.
func (d Draft) Validate() error {
	if !d.Status.Valid() {
		return fmt.Errorf("%w: %q", service.ErrInvalidStatus, string(d.Status))
	}
	return nil
}

// Input converts the draft into a request body.
func (d Draft) Input() service.TaskInput {
	return service.TaskInput{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Status:      d.Status,
	}
}

// CreateForm is the "new task" form.
type CreateForm struct {
	Visible bool
	Draft   Draft
}

// Toggle shows or hides the form. Hiding discards the draft.
func (f *CreateForm) Toggle() {
	f.Visible = !f.Visible
	f.Draft = NewDraft()
}

// Item is one task row with its inline edit state.
type Item struct {
	Task    service.Task
	Editing bool
	Draft   Draft
}

// StartEdit enters edit mode with a draft copied from the task.
func (i *Item) StartEdit() {
	i.Editing = true
	i.Draft = DraftFrom(i.Task)
}

// Cancel leaves edit mode and discards the draft. No request is made.
func (i *Item) Cancel() {
	i.Editing = false
	i.Draft = Draft{}
}
