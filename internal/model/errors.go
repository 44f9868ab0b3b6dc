package model

import "fmt"

// ExitCode defines the CLI exit codes. These codes let scripts and CI
// systems distinguish failure classes programmatically; the shell wrapper
// this tool replaces only ever exited 0 or 1, so everything beyond
// ExitGeneralError is additive and backward compatible.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error, including unknown
	// verbs and flag parse failures.
	ExitGeneralError ExitCode = 1

	// ExitManifestError indicates dockhand.jsonc could not be read or
	// failed validation.
	ExitManifestError ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 3

	// ExitBuildFailed indicates an image build failed.
	ExitBuildFailed ExitCode = 4

	// ExitPortConflict indicates a required host port is already in use.
	ExitPortConflict ExitCode = 5

	// ExitContainerNotFound indicates no container exists for the
	// requested environment.
	ExitContainerNotFound ExitCode = 6

	// ExitHealthCheckFailed indicates the application's health endpoint
	// did not return a healthy response before the deadline.
	ExitHealthCheckFailed ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// The cli package translates these into process exit codes in Execute.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// message, with the underlying error appended when present.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a CLIError wrapping an underlying error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
