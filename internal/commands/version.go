package commands

import (
	"context"
	"flag"
	"fmt"

	"tman/internal/exitcode"
)

// Version is the application version. Set at build time.
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// VersionCmd prints the version and, with --verbose, where tman talks to
// and keeps its files.
type VersionCmd struct {
	verbose bool
}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print version" }
func (c *VersionCmd) Usage() string     { return "tman version [--verbose]" }
func (c *VersionCmd) NeedsAuth() bool   { return false }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "verbose", false, "also print the API address and config directory")
	fs.BoolVar(&c.verbose, "v", false, "also print the API address and config directory")
}

func (c *VersionCmd) Run(ctx context.Context, env *Env, args []string) int {
	fmt.Fprintf(env.Out, "tman %s\n", Version)
	if c.verbose && env.Config != nil {
		fmt.Fprintf(env.Out, "api     %s\n", env.Config.APIURL)
		fmt.Fprintf(env.Out, "config  %s\n", env.Config.Dir)
	}
	return exitcode.Success
}
