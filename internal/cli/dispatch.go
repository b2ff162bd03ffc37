// Package cli parses the command line and dispatches to commands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"tman/internal/commands"
	"tman/internal/config"
	"tman/internal/exitcode"
	"tman/internal/service"
	"tman/internal/session"
)

// defaultCommand runs when no command is given.
const defaultCommand = "ui"

// ServiceFactory creates a Service for the resolved config.
// The store is the session the service must read its credential from.
type ServiceFactory func(cfg *config.Config, store *session.Store, logger *slog.Logger) (service.Service, error)

// StorageFactory returns the durable storage for the session.
type StorageFactory func(cfg *config.Config) session.Storage

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithStorage replaces the file-backed session storage.
func WithStorage(f StorageFactory) Option {
	return func(d *Dispatcher) { d.storage = f }
}

// WithInput sets the reader used for prompts.
func WithInput(r io.Reader) Option {
	return func(d *Dispatcher) { d.in = r }
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
	storage  StorageFactory
	in       io.Reader
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		factory:  factory,
		storage: func(cfg *config.Config) session.Storage {
			return session.NewFileStorage(cfg.SessionPath())
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return d.dispatch(ctx, defaultCommand, nil, out, errOut)
	}

	cmdName := args[0]

	// Flags require a command
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Common flags
	var (
		configDir string
		apiURL    string
		quiet     bool
		debug     bool
	)
	fs.StringVar(&configDir, "config", "", "")
	fs.StringVar(&apiURL, "api", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") && positionalArgs[0] != "-" {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	if apiURL != "" {
		cfg.SetAPIURL(apiURL)
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	logger := newLogger(errOut, debug)
	logger.Debug("config resolved", "dir", cfg.Dir, "api", cfg.APIURL)

	store := session.NewStore(d.storage(cfg), logger)
	store.Restore()

	if cmd.NeedsAuth() && !store.Authenticated() {
		fmt.Fprintln(errOut, "error: not logged in (run: tman login)")
		return exitcode.AuthError
	}

	if d.factory == nil {
		fmt.Fprintln(errOut, "error: backend error: no service configured")
		return exitcode.BackendError
	}
	svc, err := d.factory(cfg, store, logger)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return exitcode.BackendError
	}

	env := &commands.Env{
		Config:  cfg,
		Service: svc,
		Session: store,
		Logger:  logger,
		In:      d.in,
		Out:     out,
		ErrOut:  errOut,
	}
	return cmd.Run(ctx, env, positionalArgs)
}

// flagError rewrites flag package errors into the CLI's wording.
func flagError(err error) string {
	errStr := err.Error()
	switch {
	case strings.HasPrefix(errStr, "flag needs an argument:"):
		name := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		return "flag needs an argument: " + name
	case strings.HasPrefix(errStr, "flag provided but not defined:"):
		name := strings.TrimSpace(strings.TrimPrefix(errStr, "flag provided but not defined:"))
		return "unknown flag: " + name
	}
	return errStr
}

// newLogger writes text logs to w: debug and up with --debug, warnings otherwise.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
