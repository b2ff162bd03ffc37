// Package tasklist owns the cached page of the user's tasks and keeps it in
// step with the server by refetching after every change.
package tasklist

import (
	"context"
	"sync"

	"tman/internal/gateway"
	"tman/internal/service"
)

// State is a snapshot of the controller.
type State struct {
	Page    service.Page
	Loading bool
	Err     string
}

// Controller holds one page of tasks. The cache is only ever replaced by a
// full fetch, never patched locally.
type Controller struct {
	svc  service.Service
	size int

	mu      sync.Mutex
	page    service.Page
	loading bool
	err     string
	seq     uint64 // latest fetch issued
}

// New creates a Controller with an empty page.
func New(svc service.Service) *Controller {
	return &Controller{svc: svc, size: service.PageSize}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.page
	p.Content = append([]service.Task(nil), c.page.Content...)
	return State{Page: p, Loading: c.loading, Err: c.err}
}

// FetchPage loads page index. On success content, total and index are
// replaced; on failure the error is recorded and the previous page stays
// visible. If the server reports fewer pages than index needs, the last
// existing page is loaded instead, so Index always stays within
// [0, max(TotalPages-1, 0)]. A resolution that was overtaken by a newer
// fetch (or a Reset) is not applied, but its error is still returned.
func (c *Controller) FetchPage(ctx context.Context, index int) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.loading = true
	c.err = ""
	c.mu.Unlock()

	page, err := c.svc.ListTasks(ctx, index, c.size)
	for follow := 0; err == nil && index > 0 && index > page.TotalPages-1 && follow < maxFollow; follow++ {
		if page.TotalPages == 0 {
			index = 0
			break
		}
		index = page.TotalPages - 1
		page, err = c.svc.ListTasks(ctx, index, c.size)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return err
	}
	c.loading = false
	if err != nil {
		c.err = gateway.Message(err)
		return err
	}
	c.page = service.Page{
		Content:    page.Content,
		TotalPages: page.TotalPages,
		Index:      clamp(index, page.TotalPages),
	}
	return nil
}

// maxFollow bounds how often FetchPage chases a collection that keeps
// shrinking between requests.
const maxFollow = 2

// GoToPage clamps index into the known page range and fetches it.
func (c *Controller) GoToPage(ctx context.Context, index int) error {
	c.mu.Lock()
	index = clamp(index, c.page.TotalPages)
	c.mu.Unlock()
	return c.FetchPage(ctx, index)
}

// Next fetches the following page, staying on the last one.
func (c *Controller) Next(ctx context.Context) error {
	return c.GoToPage(ctx, c.State().Page.Index+1)
}

// Prev fetches the preceding page, staying on the first one.
func (c *Controller) Prev(ctx context.Context) error {
	return c.GoToPage(ctx, c.State().Page.Index-1)
}

// Refresh refetches the current page. If the collection shrank so that the
// current page no longer exists, FetchPage moves to the new last page.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.FetchPage(ctx, c.State().Page.Index)
}

// Reset empties the cache and discards any fetch still in flight.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.page = service.Page{}
	c.loading = false
	c.err = ""
}

func clamp(index, totalPages int) int {
	last := totalPages - 1
	if last < 0 {
		last = 0
	}
	if index > last {
		index = last
	}
	if index < 0 {
		index = 0
	}
	return index
}
