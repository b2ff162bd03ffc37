package commands

import (
	"errors"
	"fmt"
	"net/http"

	"tman/internal/editor"
	"tman/internal/exitcode"
	"tman/internal/gateway"
	"tman/internal/service"
)

// report prints err on stderr and maps it to an exit code.
func report(env *Env, err error) int {
	var apiErr *gateway.APIError
	switch {
	case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, editor.ErrNotConfirmed):
		fmt.Fprintf(env.ErrOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden):
		fmt.Fprintf(env.ErrOut, "error: auth error: %s (run: tman login)\n", apiErr.Message)
		return exitcode.AuthError
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 && !errors.Is(err, gateway.ErrMalformedResponse):
		fmt.Fprintf(env.ErrOut, "error: %s\n", apiErr.Message)
		return exitcode.UserError
	default:
		fmt.Fprintf(env.ErrOut, "error: backend error: %s\n", gateway.Message(err))
		return exitcode.BackendError
	}
}

// reportAuth is report for login and register, where any rejection by
// the API is an auth failure.
func reportAuth(env *Env, err error) int {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && !errors.Is(err, gateway.ErrMalformedResponse) {
		fmt.Fprintf(env.ErrOut, "error: %s\n", apiErr.Message)
		return exitcode.AuthError
	}
	fmt.Fprintf(env.ErrOut, "error: backend error: %s\n", gateway.Message(err))
	return exitcode.BackendError
}
