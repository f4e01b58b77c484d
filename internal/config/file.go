package config

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/fanout/internal/errors"
)

// FileConfig mirrors the subset of AppConfig that may be set from a YAML
// file. Pointer fields distinguish "absent" from a zero value.
type FileConfig struct {
	Workers     *int    `yaml:"workers"`
	Items       *int    `yaml:"items"`
	Threads     *int    `yaml:"threads"`
	Iterations  *int    `yaml:"iterations"`
	Timeout     *string `yaml:"timeout"`
	LogLevel    *string `yaml:"log_level"`
	MetricsFile *string `yaml:"metrics_file"`
	TraceFile   *string `yaml:"trace_file"`
	Verify      *bool   `yaml:"verify"`
	Pin         *bool   `yaml:"pin"`
	Progress    *bool   `yaml:"progress"`
}

// LoadFile reads and strictly decodes a YAML configuration file. Unknown
// keys are rejected.
func LoadFile(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, apperrors.NewConfigError("cannot read config file %s: %v", path, err)
	}
	return ParseFile(data)
}

// ParseFile strictly decodes YAML configuration data.
func ParseFile(data []byte) (FileConfig, error) {
	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return FileConfig{}, apperrors.NewConfigError("invalid config file: %v", err)
	}
	if fc.Timeout != nil {
		if _, err := time.ParseDuration(*fc.Timeout); err != nil {
			return FileConfig{}, apperrors.ValidationError{Field: "timeout", Message: err.Error()}
		}
	}
	return fc, nil
}

// apply copies file values into cfg for every flag not set on the command line.
func (fc FileConfig) apply(cfg *AppConfig, fs *flag.FlagSet) {
	setInt := func(dst *int, v *int, name string) {
		if v != nil && !isFlagSet(fs, name) {
			*dst = *v
		}
	}
	setString := func(dst *string, v *string, name string) {
		if v != nil && !isFlagSet(fs, name) {
			*dst = *v
		}
	}
	setBool := func(dst *bool, v *bool, name string) {
		if v != nil && !isFlagSet(fs, name) {
			*dst = *v
		}
	}

	setInt(&cfg.Workers, fc.Workers, "workers")
	setInt(&cfg.Items, fc.Items, "items")
	setInt(&cfg.Threads, fc.Threads, "threads")
	setInt(&cfg.Iterations, fc.Iterations, "iterations")
	if fc.Timeout != nil && !isFlagSet(fs, "timeout") {
		if d, err := time.ParseDuration(*fc.Timeout); err == nil {
			cfg.Timeout = d
		}
	}
	setString(&cfg.LogLevel, fc.LogLevel, "log-level")
	setString(&cfg.MetricsFile, fc.MetricsFile, "metrics-file")
	setString(&cfg.TraceFile, fc.TraceFile, "trace-file")
	setBool(&cfg.Verify, fc.Verify, "verify")
	setBool(&cfg.Pin, fc.Pin, "pin")
	setBool(&cfg.Progress, fc.Progress, "progress")
}
