package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/oshokin/scx-installer/internal/logger"
)

// ErrCommandFailed is returned when an external tool exits with a non-zero status.
var ErrCommandFailed = errors.New("external command failed")

// Command is one external tool invocation.
type Command struct {
	// Dir is the working directory; empty means the current one.
	Dir  string
	Name string
	Args []string
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner executes external commands and returns their standard output.
type Runner interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes cmd and returns its standard output. Standard error is attached to the error.
func (ExecRunner) Run(ctx context.Context, cmd Command) ([]byte, error) {
	logger.DebugKV(ctx, "Running external command", "command", cmd.String(), "dir", cmd.Dir)

	//nolint:gosec // Command names come from the renderers, not from user input.
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer

	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("%s: %w: %w: %s",
			cmd.String(), ErrCommandFailed, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}
