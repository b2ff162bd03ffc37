package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"tman/internal/editor"
	"tman/internal/exitcode"
	"tman/internal/output"
	"tman/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
	status      string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "tman add [--description <text>] [--status <status>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.StringVar(&c.status, "status", string(service.StatusPending), "")
	fs.StringVar(&c.status, "s", string(service.StatusPending), "")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(env.ErrOut, "error: title required")
		return exitcode.UserError
	}
	status, err := service.ParseStatus(c.status)
	if err != nil {
		return report(env, err)
	}

	form := &editor.CreateForm{
		Visible: true,
		Draft:   editor.Draft{Title: title, Description: c.description, Status: status},
	}
	task, err := editor.New(env.Service, nil).Create(ctx, form)
	if err != nil {
		return report(env, err)
	}

	if !env.quiet() {
		output.FormatTask(env.Out, task)
	}
	return exitcode.Success
}
