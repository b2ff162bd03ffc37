package commands

import (
	"context"
	"flag"
	"fmt"

	"tman/internal/exitcode"
	"tman/internal/tui"
)

func init() {
	Register(&UICmd{})
}

// UICmd starts the interactive interface. It shows the sign-in screen
// when no session is stored.
type UICmd struct{}

func (c *UICmd) Name() string      { return "ui" }
func (c *UICmd) Aliases() []string { return nil }
func (c *UICmd) Synopsis() string  { return "Open the interactive UI" }
func (c *UICmd) Usage() string     { return "tman ui [common flags]" }
func (c *UICmd) NeedsAuth() bool   { return false }

func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UICmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(env.ErrOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if err := env.Config.EnsureDir(); err != nil {
		fmt.Fprintf(env.ErrOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	err := tui.Run(ctx, tui.Deps{
		Service: env.Service,
		Session: env.Session,
		Logger:  env.log(),
		In:      env.In,
		Out:     env.Out,
	})
	if err != nil {
		fmt.Fprintf(env.ErrOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
