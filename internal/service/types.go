// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

// The closed set of task statuses accepted by the API.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusDone}

// ErrInvalidStatus is returned for a status outside the closed set.
var ErrInvalidStatus = errors.New("invalid status")

// ParseStatus parses a status case-insensitively. Spaces and dashes are
// accepted in place of the underscore ("in progress", "in-progress").
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	st := Status(norm)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q (want pending, in_progress or done)", ErrInvalidStatus, s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Label returns the human form, e.g. "IN PROGRESS".
func (s Status) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
}

// Profile identifies the authenticated user.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResult is the API response to a successful login or registration.
type AuthResult struct {
	Token string `json:"token"`
	Type  string `json:"type,omitempty"`
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile returns the identity part of the result.
func (r AuthResult) Profile() Profile {
	return Profile{ID: r.ID, Name: r.Name, Email: r.Email}
}

// Task represents a single task item.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   Timestamp `json:"createdAt"`
	UserID      int64     `json:"userId,omitempty"`
}

// TaskInput is the body of create and update requests.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// Page is one fetched slice of the task collection.
type Page struct {
	Content    []Task `json:"content"`
	TotalPages int    `json:"totalPages"`
	Index      int    `json:"number"`
}

// Timestamp accepts RFC 3339 and zone-less local date-times
// ("2006-01-02T15:04:05.999999").
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
