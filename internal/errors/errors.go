package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error, including worker failures.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorMismatch = 3   // Indicates a result failed verification.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorSpawn    = 5   // Indicates a worker process or thread could not be created.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// WorkerError reports the failure of a single unit of work. It identifies the
// runner that dispatched it and the work item, so the diagnostic printed to
// the user names exactly which unit failed.
type WorkerError struct {
	// Runner is the runner kind ("process" or "thread").
	Runner string
	// Index is the position of the item in the submitted batch.
	Index int
	// N is the work item identifier.
	N int
	// Cause is the underlying failure.
	Cause error
}

// Error returns a message naming the failed work item and its cause.
func (e *WorkerError) Error() string {
	return fmt.Sprintf("%s worker failed on item %d (n=%d): %v", e.Runner, e.Index, e.N, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *WorkerError) Unwrap() error { return e.Cause }

// SpawnError reports that a worker (process or thread) could not be created.
type SpawnError struct {
	// Slot is the pool slot that failed to start.
	Slot int
	// Cause is the error returned by the OS or runtime.
	Cause error
}

// Error returns a message naming the slot that could not be started.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("cannot start worker %d: %v", e.Slot, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *SpawnError) Unwrap() error { return e.Cause }

// ProtocolError reports a malformed exchange between the dispatcher and a
// worker process.
type ProtocolError struct {
	// Message describes what was wrong with the exchange.
	Message string
}

// Error returns the protocol error message.
func (e ProtocolError) Error() string { return "protocol error: " + e.Message }

// TimeoutError represents a run timeout. It captures the operation name and
// the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
