package commands

import (
	"context"
	"flag"
	"fmt"

	"tman/internal/editor"
	"tman/internal/exitcode"
	"tman/internal/service"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd marks a task done. It is edit --status done without the flag.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Mark a task done" }
func (c *DoneCmd) Usage() string     { return "tman done <id>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(env.ErrOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, err := env.Service.GetTask(ctx, id)
	if err != nil {
		return report(env, err)
	}
	if task.Status == service.StatusDone {
		env.infof("already done\n")
		return exitcode.Success
	}

	draft := editor.DraftFrom(task)
	draft.Status = service.StatusDone
	if _, err := editor.New(env.Service, nil).Update(ctx, id, draft); err != nil {
		return report(env, err)
	}

	env.infof("ok\n")
	return exitcode.Success
}
