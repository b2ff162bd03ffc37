package commands

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"tman/internal/config"
	"tman/internal/service"
	"tman/internal/session"
)

// Env is everything a command runs against.
type Env struct {
	Config  *config.Config
	Service service.Service
	Session *session.Store
	Logger  *slog.Logger

	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	lines *bufio.Reader
}

func (e *Env) log() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

// quiet reports whether informational output is suppressed.
func (e *Env) quiet() bool {
	return e.Config != nil && e.Config.Quiet
}

// infof prints an informational line unless --quiet is set.
func (e *Env) infof(format string, args ...any) {
	if !e.quiet() {
		fmt.Fprintf(e.Out, format, args...)
	}
}

// prompt prints label on stderr and reads one line of input.
func (e *Env) prompt(label string) (string, error) {
	fmt.Fprint(e.ErrOut, label)
	return e.readLine()
}

// promptSecret reads a line without echo when stdin is a terminal.
func (e *Env) promptSecret(label string) (string, error) {
	if f, ok := e.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(e.ErrOut, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(e.ErrOut)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return e.prompt(label)
}

// confirm asks a yes/no question; anything but y or yes is a no.
func (e *Env) confirm(question string) bool {
	answer, err := e.prompt(question + " [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

func (e *Env) readLine() (string, error) {
	if e.In == nil {
		return "", io.EOF
	}
	if e.lines == nil {
		e.lines = bufio.NewReader(e.In)
	}
	line, err := e.lines.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
