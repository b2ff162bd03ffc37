package commands

import (
	"context"
	"flag"
	"fmt"

	"tman/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command. The command list is built from
// the registry so it never drifts from what the dispatcher accepts.
type HelpCmd struct {
	registry *Registry
}

// NewHelpCmd creates a HelpCmd that lists the commands in r.
func NewHelpCmd(r *Registry) *HelpCmd {
	return &HelpCmd{registry: r}
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "tman help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string) int {
	r := c.registry
	if r == nil {
		r = DefaultRegistry
	}

	fmt.Fprintln(env.Out, "Usage:")
	fmt.Fprintln(env.Out, "  tman                 Open the interactive UI (same as tman ui)")
	for _, cmd := range r.All() {
		fmt.Fprintf(env.Out, "  %s\n", cmd.Usage())
	}

	fmt.Fprintln(env.Out)
	fmt.Fprintln(env.Out, "Commands:")
	for _, cmd := range r.All() {
		fmt.Fprintf(env.Out, "  %-10s %s\n", cmd.Name(), cmd.Synopsis())
	}

	fmt.Fprint(env.Out, footerText)
	return exitcode.Success
}

const footerText = `
Statuses: pending, in_progress, done

Common flags:
  --config <dir>   Override config directory
  --api <url>      Override the API base URL (default from TMAN_API_URL or config.yaml)
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
