package commands

import (
	"context"
	"flag"
	"fmt"
	"time"

	"tman/internal/exitcode"
	"tman/internal/output"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd prints the signed-in user.
type WhoamiCmd struct {
	now func() time.Time
}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the signed-in user" }
func (c *WhoamiCmd) Usage() string     { return "tman whoami [common flags]" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, env *Env, args []string) int {
	profile, ok := env.Session.Profile()
	if !ok {
		fmt.Fprintln(env.ErrOut, "error: not logged in (run: tman login)")
		return exitcode.AuthError
	}
	output.FormatProfile(env.Out, profile)

	// Expiry is informational; an expired token is still sent until the
	// API rejects it.
	if exp, ok := env.Session.CredentialExpiry(); ok {
		now := time.Now
		if c.now != nil {
			now = c.now
		}
		state := "expires"
		if !exp.After(now()) {
			state = "expired"
		}
		env.infof("token %s %s\n", state, exp.Local().Format("2006-01-02 15:04"))
	}
	return exitcode.Success
}
