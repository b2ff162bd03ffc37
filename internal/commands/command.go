// Package commands implements the tman subcommands and the registry the
// dispatcher looks them up in.
package commands

import (
	"context"
	"flag"
)

// Command is one tman subcommand.
type Command interface {
	// Name is the primary name typed on the command line.
	Name() string

	// Aliases are alternative names, e.g. "ls" for list.
	Aliases() []string

	// Synopsis is the one-line description shown by help.
	Synopsis() string

	// Usage is the full invocation shown by help.
	Usage() string

	// NeedsAuth reports whether the dispatcher must find a stored session
	// before running the command.
	NeedsAuth() bool

	// RegisterFlags binds command flags. It is called for every run and must
	// reset any state left from a previous one.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command with the positional args left after flag
	// parsing and returns the process exit code.
	Run(ctx context.Context, env *Env, args []string) int
}
