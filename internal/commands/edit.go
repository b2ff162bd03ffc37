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
	Register(&EditCmd{})
}

// optString is a string flag that remembers whether it was given.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// EditCmd implements the edit command. Fields not given on the command
// line keep the task's current values; the API always receives all three.
type EditCmd struct {
	title       optString
	description optString
	status      optString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "tman edit [--title <title>] [--description <text>] [--status <status>] <id>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.description, c.status = optString{}, optString{}, optString{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.status, "s", "")
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(env.ErrOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !c.title.set && !c.description.set && !c.status.set {
		fmt.Fprintln(env.ErrOut, "error: nothing to change (use --title, --description or --status)")
		return exitcode.UserError
	}
	if c.title.set && strings.TrimSpace(c.title.value) == "" {
		fmt.Fprintln(env.ErrOut, "error: title required")
		return exitcode.UserError
	}

	var status service.Status
	if c.status.set {
		if status, err = service.ParseStatus(c.status.value); err != nil {
			return report(env, err)
		}
	}

	current, err := env.Service.GetTask(ctx, id)
	if err != nil {
		return report(env, err)
	}

	item := &editor.Item{Task: current}
	item.StartEdit()
	if c.title.set {
		item.Draft.Title = c.title.value
	}
	if c.description.set {
		item.Draft.Description = c.description.value
	}
	if c.status.set {
		item.Draft.Status = status
	}

	task, err := editor.New(env.Service, nil).Save(ctx, item)
	if err != nil {
		return report(env, err)
	}
	if !env.quiet() {
		output.FormatTask(env.Out, task)
	}
	return exitcode.Success
}
