// Package taskapi implements the service.Service interface over the task REST API.
package taskapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tman/internal/gateway"
	"tman/internal/service"
)

// Requester is the subset of *gateway.Gateway used by the client.
type Requester interface {
	Request(ctx context.Context, endpoint, method string, body, out any) error
}

// Client implements service.Service on top of the request gateway.
type Client struct {
	gw Requester
}

// New creates a task API client.
func New(gw Requester) *Client {
	return &Client{gw: gw}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, email, password string) (service.AuthResult, error) {
	var res service.AuthResult
	err := c.gw.Request(ctx, "/auth/login", http.MethodPost, loginRequest{Email: email, Password: password}, &res)
	if err != nil {
		return service.AuthResult{}, err
	}
	if err := checkAuthResult(res); err != nil {
		return service.AuthResult{}, err
	}
	return res, nil
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, name, email, password string) (service.AuthResult, error) {
	var res service.AuthResult
	body := registerRequest{Name: name, Email: email, Password: password}
	if err := c.gw.Request(ctx, "/auth/register", http.MethodPost, body, &res); err != nil {
		return service.AuthResult{}, err
	}
	if err := checkAuthResult(res); err != nil {
		return service.AuthResult{}, err
	}
	return res, nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context, page, size int) (service.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var raw struct {
		Content    *[]service.Task `json:"content"`
		TotalPages *int            `json:"totalPages"`
	}
	if err := c.gw.Request(ctx, "/tasks?"+q.Encode(), http.MethodGet, nil, &raw); err != nil {
		return service.Page{}, err
	}
	if raw.Content == nil || raw.TotalPages == nil || *raw.TotalPages < 0 {
		return service.Page{}, malformed("page without content or totalPages")
	}
	return service.Page{
		Content:    *raw.Content,
		TotalPages: *raw.TotalPages,
		Index:      page,
	}, nil
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, id int64) (service.Task, error) {
	var task service.Task
	if err := c.gw.Request(ctx, taskPath(id), http.MethodGet, nil, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	var task service.Task
	if err := c.gw.Request(ctx, "/tasks", http.MethodPost, in, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id int64, in service.TaskInput) (service.Task, error) {
	var task service.Task
	if err := c.gw.Request(ctx, taskPath(id), http.MethodPut, in, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask implements service.Service.
// Any 2xx response counts as success; the body is ignored.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.gw.Request(ctx, taskPath(id), http.MethodDelete, nil, nil)
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

// checkAuthResult enforces the {token, id, name, email} response shape.
func checkAuthResult(res service.AuthResult) error {
	if strings.TrimSpace(res.Token) == "" || strings.TrimSpace(res.Email) == "" {
		return malformed("auth response without token or email")
	}
	return nil
}

func malformed(detail string) error {
	return &gateway.APIError{
		Status:  http.StatusOK,
		Message: gateway.FallbackMessage,
		Err:     fmt.Errorf("%w: %s", gateway.ErrMalformedResponse, detail),
	}
}
