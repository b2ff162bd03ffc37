package commands

import (
	"context"
	"flag"
	"fmt"

	"tman/internal/exitcode"
	"tman/internal/output"
	"tman/internal/tasklist"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct {
	page int
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks, newest first" }
func (c *ListCmd) Usage() string     { return "tman list [--page <n>]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.page, "page", 1, "")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(env.ErrOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.page < 1 {
		fmt.Fprintf(env.ErrOut, "error: invalid page number: %d\n", c.page)
		return exitcode.UserError
	}

	list := tasklist.New(env.Service)
	if err := list.FetchPage(ctx, c.page-1); err != nil {
		return report(env, err)
	}

	page := list.State().Page
	if page.TotalPages == 0 {
		env.infof("no tasks found\n")
		return exitcode.Success
	}
	if page.Index != c.page-1 {
		fmt.Fprintf(env.ErrOut, "error: page out of range: %d (of %d)\n", c.page, page.TotalPages)
		return exitcode.UserError
	}

	output.FormatPage(env.Out, page)
	return exitcode.Success
}
