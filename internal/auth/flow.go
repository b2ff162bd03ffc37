// Package auth drives sign-in and registration and hands the resulting
// credential to the session store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tman/internal/gateway"
	"tman/internal/service"
	"tman/internal/session"
)

// Mode selects between signing in and creating an account.
type Mode int

const (
	LoginMode Mode = iota
	RegisterMode
)

func (m Mode) String() string {
	if m == RegisterMode {
		return "register"
	}
	return "login"
}

// Phase is the submission state within a mode.
type Phase int

const (
	Idle Phase = iota
	Submitting
	Failed
)

// ErrBusy is returned when a submission is already in flight.
var ErrBusy = errors.New("submission already in progress")

// Form holds the user's input. Name is only sent in RegisterMode.
type Form struct {
	Name     string
	Email    string
	Password string
}

// State is a snapshot of the flow.
type State struct {
	Mode    Mode
	Phase   Phase
	Message string
}

// Flow is the sign-in/registration state machine.
type Flow struct {
	svc   service.Service
	store *session.Store

	mu      sync.Mutex
	mode    Mode
	phase   Phase
	message string
}

// NewFlow creates a Flow in LoginMode.
func NewFlow(svc service.Service, store *session.Store) *Flow {
	return &Flow{svc: svc, store: store}
}

// State returns the current mode, phase and error message.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{Mode: f.mode, Phase: f.phase, Message: f.message}
}

// SetMode selects a mode and clears a previous error.
// It is ignored while a submission is in flight.
func (f *Flow) SetMode(m Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == Submitting {
		return
	}
	f.mode = m
	f.phase = Idle
	f.message = ""
}

// Toggle switches between LoginMode and RegisterMode.
func (f *Flow) Toggle() {
	next := RegisterMode
	if f.State().Mode == RegisterMode {
		next = LoginMode
	}
	f.SetMode(next)
}

// Submit sends the form for the current mode. On success the session store
// holds the new credential and profile. On failure the flow enters Failed
// with a human-readable message and the store is left untouched.
func (f *Flow) Submit(ctx context.Context, form Form) (service.Profile, error) {
	f.mu.Lock()
	if f.phase == Submitting {
		f.mu.Unlock()
		return service.Profile{}, ErrBusy
	}
	mode := f.mode
	f.phase = Submitting
	f.message = ""
	f.mu.Unlock()

	var (
		res service.AuthResult
		err error
	)
	if mode == RegisterMode {
		res, err = f.svc.Register(ctx, form.Name, form.Email, form.Password)
	} else {
		res, err = f.svc.Login(ctx, form.Email, form.Password)
	}
	if err == nil {
		err = f.store.Set(res.Token, res.Profile())
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.phase = Failed
		f.message = gateway.Message(err)
		return service.Profile{}, fmt.Errorf("%s: %w", mode, err)
	}
	f.phase = Idle
	return res.Profile(), nil
}

// Logout clears the session regardless of the flow's prior state and
// returns the flow to an idle LoginMode.
func (f *Flow) Logout() error {
	f.mu.Lock()
	f.mode = LoginMode
	f.phase = Idle
	f.message = ""
	f.mu.Unlock()
	return f.store.Clear()
}
