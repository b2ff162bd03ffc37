package commands

import (
	"context"
	"flag"
	"fmt"

	"tman/internal/exitcode"
	"tman/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd prints one task in full.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show a task" }
func (c *ShowCmd) Usage() string     { return "tman show <id>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, env *Env, args []string) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(env.ErrOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, err := env.Service.GetTask(ctx, id)
	if err != nil {
		return report(env, err)
	}
	output.FormatTaskDetail(env.Out, task)
	return exitcode.Success
}
