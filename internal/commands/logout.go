package commands

import (
	"context"
	"flag"
	"fmt"

	"tman/internal/auth"
	"tman/internal/exitcode"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove the stored session" }
func (c *LogoutCmd) Usage() string     { return "tman logout [common flags]" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, env *Env, args []string) int {
	// A corrupt session is not restored but still has keys on disk.
	wasIn := env.Session.Authenticated()
	if err := auth.NewFlow(env.Service, env.Session).Logout(); err != nil {
		fmt.Fprintf(env.ErrOut, "error: failed to remove session: %v\n", err)
		return exitcode.AuthError
	}

	if wasIn {
		env.infof("ok\n")
	} else {
		env.infof("not logged in\n")
	}
	return exitcode.Success
}
