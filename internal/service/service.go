package service

import "context"

// PageSize is the number of tasks requested per page.
const PageSize = 10

// Service defines the interface for task backend operations.
// All API calls go through this interface; commands and the UI never
// talk HTTP directly.
type Service interface {
	// Login exchanges an email and password for a credential.
	Login(ctx context.Context, email, password string) (AuthResult, error)

	// Register creates an account and returns a credential for it.
	Register(ctx context.Context, name, email, password string) (AuthResult, error)

	// ListTasks returns one page of the user's tasks.
	// page is 0-based; size is normally PageSize.
	ListTasks(ctx context.Context, page, size int) (Page, error)

	// GetTask returns a single task by ID.
	GetTask(ctx context.Context, id int64) (Task, error)

	// CreateTask creates a new task.
	CreateTask(ctx context.Context, in TaskInput) (Task, error)

	// UpdateTask replaces title, description and status of a task.
	UpdateTask(ctx context.Context, id int64, in TaskInput) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int64) error
}
