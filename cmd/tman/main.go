// Package main is the entry point for the tman CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tman/internal/backend/taskapi"
	"tman/internal/cli"
	"tman/internal/commands"
	"tman/internal/config"
	"tman/internal/gateway"
	"tman/internal/service"
	"tman/internal/session"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Every request reads the credential from the session store at send time
	factory := func(cfg *config.Config, store *session.Store, logger *slog.Logger) (service.Service, error) {
		return taskapi.New(gateway.New(cfg.APIURL, store, gateway.WithLogger(logger))), nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory, cli.WithInput(os.Stdin))

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
