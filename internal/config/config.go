// Package config defines the application configuration and parses it from
// command-line flags, an optional YAML file and FANOUT_* environment
// variables.
package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/fanout/internal/errors"
)

// EnvPrefix is prepended to every environment variable read by this package.
const EnvPrefix = "FANOUT_"

// DefaultThreads is the number of threads spawned by the thread runner.
const DefaultThreads = 8

// Mode selects which runner a command executes.
type Mode string

const (
	ModeProcess Mode = "process"
	ModeThread  Mode = "thread"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Mode is the runner selected by the entry point.
	Mode Mode
	// Workers is the number of worker processes in the pool. Zero means
	// "one per available CPU" and is resolved by ResolveDefaults.
	Workers int
	// Items is the number of work items submitted to the process pool.
	// Zero means "one per worker".
	Items int
	// Threads is the number of threads spawned by the thread runner.
	Threads int
	// Iterations is the loop size of each unit of work.
	Iterations int
	// Timeout bounds a whole run. Zero disables the timeout.
	Timeout time.Duration
	// Quiet suppresses trace and progress output.
	Quiet bool
	// Verbose enables per-worker summaries and resource statistics.
	Verbose bool
	// Progress shows a progress indicator on stderr.
	Progress bool
	// Compare runs both runners and prints a comparison table.
	Compare bool
	// Verify checks every process result against the closed form.
	Verify bool
	// Pin pins each thread-runner worker to its own CPU (Linux only).
	Pin bool
	// NoColor disables colored output.
	NoColor bool
	// LogLevel is the zerolog level name for diagnostic logs.
	LogLevel string
	// MetricsFile, when set, receives Prometheus metrics in text format.
	MetricsFile string
	// TraceFile, when set, receives OpenTelemetry spans as JSON.
	TraceFile string
	// ConfigFile is an optional YAML file with default values.
	ConfigFile string
}

// ParseConfig parses command-line arguments, applies the YAML file and
// environment overrides, resolves defaults and validates the result.
// Priority: CLI flags > environment variables > config file > defaults.
//
// Parameters:
//   - programName: The name used in usage output.
//   - args: The command-line arguments, without the program name.
//   - errWriter: The writer for usage and parse errors.
//   - mode: The runner selected by the entry point.
//
// Returns:
//   - AppConfig: The resolved configuration.
//   - error: flag.ErrHelp, a parse error, or a ConfigError.
func ParseConfig(programName string, args []string, errWriter io.Writer, mode Mode) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)
	config := AppConfig{Mode: mode}

	fs.IntVar(&config.Workers, "workers", 0, "Number of worker processes (0 = available CPUs).")
	fs.IntVar(&config.Items, "items", 0, "Number of work items for the process pool (0 = one per worker).")
	fs.IntVar(&config.Threads, "threads", DefaultThreads, "Number of threads for the thread runner.")
	fs.IntVar(&config.Iterations, "iterations", 10_000_000, "Loop size of each unit of work.")
	fs.DurationVar(&config.Timeout, "timeout", 0, "Maximum run time (0 = no limit).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Suppress trace and progress output.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Print per-worker summaries and resource statistics.")
	fs.BoolVar(&config.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&config.Progress, "progress", false, "Show a progress indicator on stderr.")
	fs.BoolVar(&config.Compare, "compare", false, "Run both runners and compare them.")
	fs.BoolVar(&config.Verify, "verify", false, "Verify process results against the closed form.")
	fs.BoolVar(&config.Pin, "pin", false, "Pin each thread to its own CPU (Linux only).")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.LogLevel, "log-level", "warn", "Diagnostic log level (debug, info, warn, error).")
	fs.StringVar(&config.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run.")
	fs.StringVar(&config.TraceFile, "trace-file", "", "Write OpenTelemetry spans to this file.")
	fs.StringVar(&config.ConfigFile, "config", "", "YAML file with default settings.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %v", fs.Args())
	}

	if config.ConfigFile == "" {
		config.ConfigFile = getEnvString("CONFIG", "")
	}
	if config.ConfigFile != "" {
		fc, err := LoadFile(config.ConfigFile)
		if err != nil {
			return AppConfig{}, err
		}
		fc.apply(&config, fs)
	}

	applyEnvOverrides(&config, fs)

	config = ResolveDefaults(config)
	if err := config.Validate(); err != nil {
		return AppConfig{}, err
	}
	return config, nil
}

// Validate checks the semantic validity of the configuration.
func (c AppConfig) Validate() error {
	switch {
	case c.Mode != ModeProcess && c.Mode != ModeThread:
		return apperrors.ValidationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", c.Mode)}
	case c.Workers < 1:
		return apperrors.ValidationError{Field: "workers", Message: "must be at least 1"}
	case c.Items < 1:
		return apperrors.ValidationError{Field: "items", Message: "must be at least 1"}
	case c.Threads < 1:
		return apperrors.ValidationError{Field: "threads", Message: "must be at least 1"}
	case c.Iterations < 0:
		return apperrors.ValidationError{Field: "iterations", Message: "must not be negative"}
	case c.Timeout < 0:
		return apperrors.ValidationError{Field: "timeout", Message: "must not be negative"}
	case c.Quiet && c.Verbose:
		return apperrors.ValidationError{Field: "quiet", Message: "cannot be combined with --verbose"}
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return apperrors.ValidationError{Field: "log-level", Message: err.Error()}
	}
	return nil
}

// Level returns the zerolog level for LogLevel, defaulting to warn.
func (c AppConfig) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.WarnLevel
	}
	return lvl
}
