// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, invalid status, task not found, declined prompt).
	UserError = 1

	// AuthError indicates a missing session or rejected credentials.
	AuthError = 2

	// BackendError indicates an API, network or malformed response error.
	BackendError = 3
)
