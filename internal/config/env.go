// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// getEnvString returns the value of the environment variable with the given key
// (prefixed with EnvPrefix), or the default value if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the FANOUT_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

// envOverrides is the declarative table of all environment variable overrides.
var envOverrides = []envOverride{
	// Numeric overrides
	{"WORKERS", []string{"workers"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Workers = parsed
		}
	}},
	{"ITEMS", []string{"items"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Items = parsed
		}
	}},
	{"THREADS", []string{"threads"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Threads = parsed
		}
	}},
	{"ITERATIONS", []string{"iterations"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Iterations = parsed
		}
	}},

	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},

	// String overrides
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) {
		c.LogLevel = v
	}},
	{"METRICS_FILE", []string{"metrics-file"}, func(c *AppConfig, v string) {
		c.MetricsFile = v
	}},
	{"TRACE_FILE", []string{"trace-file"}, func(c *AppConfig, v string) {
		c.TraceFile = v
	}},

	// Boolean overrides
	{"QUIET", []string{"quiet", "q"}, func(c *AppConfig, v string) {
		c.Quiet = parseBoolEnv(v, c.Quiet)
	}},
	{"VERBOSE", []string{"verbose", "v"}, func(c *AppConfig, v string) {
		c.Verbose = parseBoolEnv(v, c.Verbose)
	}},
	{"PROGRESS", []string{"progress"}, func(c *AppConfig, v string) {
		c.Progress = parseBoolEnv(v, c.Progress)
	}},
	{"COMPARE", []string{"compare"}, func(c *AppConfig, v string) {
		c.Compare = parseBoolEnv(v, c.Compare)
	}},
	{"VERIFY", []string{"verify"}, func(c *AppConfig, v string) {
		c.Verify = parseBoolEnv(v, c.Verify)
	}},
	{"PIN", []string{"pin"}, func(c *AppConfig, v string) {
		c.Pin = parseBoolEnv(v, c.Pin)
	}},
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) {
		c.NoColor = parseBoolEnv(v, c.NoColor)
	}},
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
//
// Supported environment variables (all prefixed with FANOUT_):
//   - WORKERS, ITEMS, THREADS, ITERATIONS, TIMEOUT, LOG_LEVEL,
//     METRICS_FILE, TRACE_FILE, QUIET, VERBOSE, PROGRESS, COMPARE,
//     VERIFY, PIN, NO_COLOR, CONFIG
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}
