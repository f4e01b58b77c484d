package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the escape sequences used to highlight diagnostics.
// It keeps this package independent from the terminal theme implementation.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// NoColor is a ColorProvider that emits no escape sequences.
type NoColor struct{}

func (NoColor) Red() string    { return "" }
func (NoColor) Yellow() string { return "" }
func (NoColor) Reset() string  { return "" }

// ExitCodeFor maps an error onto the application exit code table without
// producing any output.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var (
		timeoutErr    TimeoutError
		spawnErr      *SpawnError
		configErr     ConfigError
		validationErr ValidationError
	)
	switch {
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &spawnErr):
		return ExitErrorSpawn
	case errors.As(err, &configErr), errors.As(err, &validationErr):
		return ExitErrorConfig
	default:
		return ExitErrorGeneric
	}
}

// HandleRunError prints a diagnostic for a failed run and returns the exit
// code that should be reported to the OS.
//
// Parameters:
//   - err: The error returned by the run, nil on success.
//   - elapsed: Wall-clock time spent before the failure.
//   - out: The writer receiving the diagnostic.
//   - colors: The color provider used for highlighting.
//
// Returns:
//   - int: An exit code from the Exit* table.
func HandleRunError(err error, elapsed time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	code := ExitCodeFor(err)
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "%sRun timed out after %s: %v%s\n", colors.Yellow(), elapsed.Round(time.Millisecond), err, colors.Reset())
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sRun canceled after %s.%s\n", colors.Yellow(), elapsed.Round(time.Millisecond), colors.Reset())
	default:
		fmt.Fprintf(out, "%sError: %v%s\n", colors.Red(), err, colors.Reset())
	}
	return code
}
