package cli

import "fmt"

// Exit codes for the prose command. Scripts and CI distinguish "the file
// is invalid" from "the tool itself failed".
const (
	// ExitOK means the input checked clean.
	ExitOK = 0
	// ExitInvalid means diagnostics classified as errors were found (or
	// warnings, under warnings_as_errors).
	ExitInvalid = 1
	// ExitUsage means the command line itself was wrong.
	ExitUsage = 2
	// ExitInternal means the tool failed: unreadable file, bad config,
	// storage trouble.
	ExitInternal = 3
)

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}
