package testutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"tman/internal/gateway"
	"tman/internal/service"
)

// FakeAPI serves the task REST API over a FakeService.
// Task routes require "Authorization: Bearer <TokenFor(email)>" for a known user.
type FakeAPI struct {
	Service *FakeService
	Server  *httptest.Server

	mu          sync.Mutex
	authHeaders []string
}

// NewFakeAPI starts a FakeAPI under the /api prefix and stops it when the test ends.
// Use URL() as the gateway base address.
func NewFakeAPI(t *testing.T, svc *FakeService) *FakeAPI {
	t.Helper()
	if svc == nil {
		svc = NewFakeService()
	}
	api := &FakeAPI{Service: svc}

	r := mux.NewRouter()
	sub := r.PathPrefix("/api").Subrouter()
	sub.HandleFunc("/auth/login", api.login).Methods(http.MethodPost)
	sub.HandleFunc("/auth/register", api.register).Methods(http.MethodPost)

	tasks := sub.PathPrefix("/tasks").Subrouter()
	tasks.Use(api.requireAuth)
	tasks.HandleFunc("", api.listTasks).Methods(http.MethodGet)
	tasks.HandleFunc("", api.createTask).Methods(http.MethodPost)
	tasks.HandleFunc("/{id:[0-9]+}", api.getTask).Methods(http.MethodGet)
	tasks.HandleFunc("/{id:[0-9]+}", api.updateTask).Methods(http.MethodPut)
	tasks.HandleFunc("/{id:[0-9]+}", api.deleteTask).Methods(http.MethodDelete)

	api.Server = httptest.NewServer(api.record(r))
	t.Cleanup(api.Server.Close)
	return api
}

// URL returns the API base address.
func (a *FakeAPI) URL() string {
	return a.Server.URL + "/api"
}

// AuthHeaders returns the Authorization header of every request received,
// "" where none was sent.
func (a *FakeAPI) AuthHeaders() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.authHeaders))
	copy(out, a.authHeaders)
	return out
}

func (a *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.authHeaders = append(a.authHeaders, r.Header.Get("Authorization"))
		a.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (a *FakeAPI) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		a.Service.mu.Lock()
		known := false
		for email := range a.Service.users {
			if token == TokenFor(email) {
				known = true
				break
			}
		}
		a.Service.mu.Unlock()
		if !known {
			// Spring Security's default body for rejected requests.
			writeJSON(w, http.StatusForbidden, map[string]any{"status": 403, "error": "Forbidden"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := a.Service.Login(r.Context(), req.Email, req.Password)
	respond(w, http.StatusOK, res, err)
}

func (a *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Validation failed"})
		return
	}
	res, err := a.Service.Register(r.Context(), req.Name, req.Email, req.Password)
	respond(w, http.StatusOK, res, err)
}

func (a *FakeAPI) listTasks(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil {
		size = service.PageSize
	}
	p, err := a.Service.ListTasks(r.Context(), page, size)
	respond(w, http.StatusOK, map[string]any{
		"content":    p.Content,
		"totalPages": p.TotalPages,
		"number":     p.Index,
	}, err)
}

func (a *FakeAPI) createTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Title) == "" || !in.Status.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Validation failed"})
		return
	}
	task, err := a.Service.CreateTask(r.Context(), in)
	respond(w, http.StatusCreated, task, err)
}

func (a *FakeAPI) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := a.Service.GetTask(r.Context(), pathID(r))
	respond(w, http.StatusOK, task, err)
}

func (a *FakeAPI) updateTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if !decode(w, r, &in) {
		return
	}
	task, err := a.Service.UpdateTask(r.Context(), pathID(r), in)
	respond(w, http.StatusOK, task, err)
}

func (a *FakeAPI) deleteTask(w http.ResponseWriter, r *http.Request) {
	err := a.Service.DeleteTask(r.Context(), pathID(r))
	respond(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"}, err)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Validation failed"})
		return false
	}
	return true
}

func respond(w http.ResponseWriter, status int, v any, err error) {
	if err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) {
			writeJSON(w, apiErr.Status, map[string]string{"error": apiErr.Message})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, status, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
