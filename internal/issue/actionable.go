// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

// ActionableError is an error carrying enough context for a useful
// user-facing message: the operation that failed, the resource involved and
// suggestions on how to fix it.
type ActionableError struct {
	// Operation is a verb phrase describing what was attempted, e.g.
	// "load manifest" or "provision environment".
	Operation string

	// Resource identifies the file, environment or URL involved (optional).
	Resource string

	// Suggestions are fix hints shown under the message (optional).
	Suggestions []string

	// Cause is the underlying error (optional).
	Cause error
}

// Wrap builds an ActionableError around err. Returns nil when err is nil so
// it can wrap return values directly.
func Wrap(err error, operation, resource string, suggestions ...string) error {
	if err == nil {
		return nil
	}
	return &ActionableError{
		Operation:   operation,
		Resource:    resource,
		Suggestions: suggestions,
		Cause:       err,
	}
}

// Error implements the error interface with the concise, non-verbose form.
func (e *ActionableError) Error() string {
	var msg strings.Builder
	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)
	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// Unwrap exposes the cause to errors.Is/As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the error for display. Suggestions are listed under the
// message; verbose mode appends the full error chain.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder
	msg.WriteString(e.Error())

	for _, suggestion := range e.Suggestions {
		msg.WriteString("\n  • ")
		msg.WriteString(suggestion)
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		depth := 1
		for err := e.Cause; err != nil; err = errors.Unwrap(err) {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
			depth++
		}
	}
	return msg.String()
}
