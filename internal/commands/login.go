package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"tman/internal/auth"
	"tman/internal/exitcode"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in with email and password" }
func (c *LoginCmd) Usage() string     { return "tman login [--email <email>] [--password <password>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(env.ErrOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	form := auth.Form{Email: c.email, Password: c.password}
	return submit(ctx, env, auth.LoginMode, form)
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	name     string
	email    string
	password string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and sign in" }
func (c *RegisterCmd) Usage() string {
	return "tman register [--name <name>] [--email <email>] [--password <password>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(env.ErrOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	form := auth.Form{Name: c.name, Email: c.email, Password: c.password}
	return submit(ctx, env, auth.RegisterMode, form)
}

// submit prompts for any missing field, then runs the auth flow once.
func submit(ctx context.Context, env *Env, mode auth.Mode, form auth.Form) int {
	var err error
	if mode == auth.RegisterMode && strings.TrimSpace(form.Name) == "" {
		if form.Name, err = env.prompt("Name: "); err != nil {
			fmt.Fprintln(env.ErrOut, "error: name required")
			return exitcode.UserError
		}
	}
	if strings.TrimSpace(form.Email) == "" {
		if form.Email, err = env.prompt("Email: "); err != nil {
			fmt.Fprintln(env.ErrOut, "error: email required")
			return exitcode.UserError
		}
	}
	if form.Password == "" {
		if form.Password, err = env.promptSecret("Password: "); err != nil {
			fmt.Fprintln(env.ErrOut, "error: password required")
			return exitcode.UserError
		}
	}
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	if form.Email == "" || form.Password == "" || (mode == auth.RegisterMode && form.Name == "") {
		fmt.Fprintln(env.ErrOut, "error: all fields are required")
		return exitcode.UserError
	}

	if err := env.Config.EnsureDir(); err != nil {
		fmt.Fprintf(env.ErrOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	flow := auth.NewFlow(env.Service, env.Session)
	flow.SetMode(mode)
	profile, err := flow.Submit(ctx, form)
	if err != nil {
		env.log().Debug("auth failed", "mode", mode.String(), "err", err)
		return reportAuth(env, err)
	}

	env.infof("logged in as %s\n", profile.Email)
	return exitcode.Success
}
