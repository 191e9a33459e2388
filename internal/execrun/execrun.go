// SPDX-License-Identifier: MPL-2.0

// Package execrun abstracts external process invocation so provisioning
// logic can be tested without spawning installers.
package execrun

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

type (
	// Command describes one external process invocation.
	Command struct {
		// Path is the executable to run.
		Path string
		// Args are the arguments, not including the executable itself.
		Args []string
		// Dir is the working directory. Empty means the caller's.
		Dir string
		// Env are extra KEY=value entries appended to the process
		// environment. Nil inherits the parent environment unchanged.
		Env []string
	}

	// Runner runs external commands to completion.
	Runner interface {
		// Run blocks until the command exits. A non-zero exit status is
		// returned as an error carrying the captured output.
		Run(ctx context.Context, cmd Command) error
	}

	// ExecRunner runs commands with os/exec. When Stdout/Stderr are nil the
	// output is captured and attached to the error on failure.
	ExecRunner struct {
		Stdout io.Writer
		Stderr io.Writer
	}

	// Recorder is a Runner for tests. It records every invocation and
	// returns the configured error for commands matched by Fail.
	Recorder struct {
		// Commands holds every invocation in order.
		Commands []Command
		// Fail, when non-nil, is consulted per command; a non-nil result is
		// returned as that command's error.
		Fail func(cmd Command) error
	}
)

// String renders the command for logging.
func (c Command) String() string {
	return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	ec := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	ec.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		ec.Env = append(ec.Environ(), cmd.Env...)
	}

	var captured bytes.Buffer
	if r.Stdout != nil {
		ec.Stdout = r.Stdout
	} else {
		ec.Stdout = &captured
	}
	if r.Stderr != nil {
		ec.Stderr = r.Stderr
	} else {
		ec.Stderr = &captured
	}

	if err := ec.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &ProcessError{Command: cmd, ExitCode: exitErr.ExitCode(), Output: tail(captured.String())}
		}
		return fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}
	return nil
}

// ProcessError reports a command that exited with a non-zero status.
type ProcessError struct {
	Command  Command
	ExitCode int
	// Output is the tail of the captured combined output, empty when the
	// runner streamed output to external writers.
	Output string
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

// tail returns the last few lines of captured output, enough to diagnose an
// installer failure without flooding the log.
func tail(out string) string {
	const maxLines = 10
	out = strings.TrimSpace(out)
	lines := strings.Split(out, "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}

// Run implements Runner.
func (r *Recorder) Run(_ context.Context, cmd Command) error {
	r.Commands = append(r.Commands, cmd)
	if r.Fail != nil {
		return r.Fail(cmd)
	}
	return nil
}
