// Package processtest provides a process.Runner that records commands instead of running them.
package processtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/oshokin/scx-installer/internal/process"
)

// Recorder is a process.Runner for tests.
type Recorder struct {
	mu       sync.Mutex
	commands []process.Command

	// Outputs maps a command name to the stdout returned for it.
	Outputs map[string]string
	// Fail maps a command name to the error returned for it.
	Fail map[string]error
	// Hook, when set, runs before the command is answered.
	Hook func(cmd process.Command) error
}

// Run records cmd and answers it from Outputs and Fail.
func (r *Recorder) Run(_ context.Context, cmd process.Command) ([]byte, error) {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()

	if r.Hook != nil {
		if err := r.Hook(cmd); err != nil {
			return nil, err
		}
	}

	if err, ok := r.Fail[cmd.Name]; ok {
		return nil, fmt.Errorf("%s: %w: %w", cmd.String(), process.ErrCommandFailed, err)
	}

	return []byte(r.Outputs[cmd.Name]), nil
}

// Commands returns the recorded commands in call order.
func (r *Recorder) Commands() []process.Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]process.Command(nil), r.commands...)
}

// Lines returns the recorded commands rendered as strings.
func (r *Recorder) Lines() []string {
	commands := r.Commands()
	lines := make([]string, 0, len(commands))

	for _, cmd := range commands {
		lines = append(lines, cmd.String())
	}

	return lines
}
