package cmd

import (
	"errors"
	"fmt"
	"slices"
)

const (
	// MessageUnknown is sent when a command line names no known command.
	MessageUnknown = "Unknown command: %v. Please check that the command exists and that you have permission to use it."
	// MessageNoPermission is sent when a source lacks the permission of a
	// command.
	MessageNoPermission = "You do not have permission to use this command."
	// MessagePlayerOnly is sent when a non-player runs a player-only command.
	MessagePlayerOnly = "This command can only be used by players."
)

// Output holds the messages and errors produced by running a command. It is
// sent to the Source once the command finished.
type Output struct {
	messages []string
	errors   []error
}

// Print adds a message formatted like fmt.Sprint.
func (o *Output) Print(a ...any) {
	o.messages = append(o.messages, fmt.Sprint(a...))
}

// Printf adds a message formatted like fmt.Sprintf.
func (o *Output) Printf(format string, a ...any) {
	o.messages = append(o.messages, fmt.Sprintf(format, a...))
}

// Error adds an error formatted like fmt.Sprint. A single error argument is
// kept as is.
func (o *Output) Error(a ...any) {
	if len(a) == 1 {
		if err, ok := a[0].(error); ok {
			o.errors = append(o.errors, err)
			return
		}
	}
	o.errors = append(o.errors, errors.New(fmt.Sprint(a...)))
}

// Errorf adds an error formatted like fmt.Errorf.
func (o *Output) Errorf(format string, a ...any) {
	o.errors = append(o.errors, fmt.Errorf(format, a...))
}

// Messages returns the messages added to the output.
func (o *Output) Messages() []string { return slices.Clone(o.messages) }

// Errors returns the errors added to the output.
func (o *Output) Errors() []error { return slices.Clone(o.errors) }

// MessageCount returns the number of messages added.
func (o *Output) MessageCount() int { return len(o.messages) }

// ErrorCount returns the number of errors added.
func (o *Output) ErrorCount() int { return len(o.errors) }

// Empty reports if nothing was added to the output.
func (o *Output) Empty() bool { return len(o.messages) == 0 && len(o.errors) == 0 }
