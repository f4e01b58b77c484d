package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/fanout/internal/errors"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig("procfan", nil, io.Discard, ModeProcess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode != ModeProcess {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeProcess)
	}
	if cfg.Workers != DefaultWorkers() {
		t.Errorf("Workers = %d, want %d", cfg.Workers, DefaultWorkers())
	}
	if cfg.Items != cfg.Workers {
		t.Errorf("Items = %d, want one per worker (%d)", cfg.Items, cfg.Workers)
	}
	if cfg.Threads != DefaultThreads {
		t.Errorf("Threads = %d, want %d", cfg.Threads, DefaultThreads)
	}
	if cfg.Iterations != 10_000_000 {
		t.Errorf("Iterations = %d, want 10000000", cfg.Iterations)
	}
	if cfg.Timeout != 0 {
		t.Errorf("Timeout = %s, want no limit", cfg.Timeout)
	}
	if cfg.Level() != zerolog.WarnLevel {
		t.Errorf("Level() = %s, want warn", cfg.Level())
	}
}

func TestParseConfig_Flags(t *testing.T) {
	args := []string{"-workers", "3", "-items", "6", "-threads", "2", "-iterations", "1000",
		"-timeout", "5s", "-v", "-verify", "-log-level", "debug"}
	cfg, err := ParseConfig("procfan", args, io.Discard, ModeProcess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Workers != 3 || cfg.Items != 6 || cfg.Threads != 2 || cfg.Iterations != 1000 {
		t.Errorf("unexpected sizing: %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want 5s", cfg.Timeout)
	}
	if !cfg.Verbose || !cfg.Verify {
		t.Error("expected Verbose and Verify to be set")
	}
	if cfg.Level() != zerolog.DebugLevel {
		t.Errorf("Level() = %s, want debug", cfg.Level())
	}
}

func TestParseConfig_ItemsFollowExplicitWorkers(t *testing.T) {
	cfg, err := ParseConfig("procfan", []string{"-workers", "4"}, io.Discard, ModeProcess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Items != 4 {
		t.Errorf("Items = %d, want 4", cfg.Items)
	}
}

func TestParseConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FANOUT_WORKERS", "2")
	t.Setenv("FANOUT_THREADS", "5")
	t.Setenv("FANOUT_QUIET", "yes")
	t.Setenv("FANOUT_TIMEOUT", "1m")

	cfg, err := ParseConfig("threadfan", []string{"-threads", "3"}, io.Discard, ModeThread)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2 from env", cfg.Workers)
	}
	if cfg.Threads != 3 {
		t.Errorf("Threads = %d, want 3 (flag beats env)", cfg.Threads)
	}
	if !cfg.Quiet {
		t.Error("Quiet should be set from env")
	}
	if cfg.Timeout != time.Minute {
		t.Errorf("Timeout = %s, want 1m", cfg.Timeout)
	}
}

func TestParseConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fanout.yaml")
	data := "workers: 6\niterations: 500\ntimeout: 2s\nverify: true\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FANOUT_ITERATIONS", "700")

	cfg, err := ParseConfig("procfan", []string{"-config", path, "-workers", "1"}, io.Discard, ModeProcess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1 (flag beats file)", cfg.Workers)
	}
	if cfg.Iterations != 700 {
		t.Errorf("Iterations = %d, want 700 (env beats file)", cfg.Iterations)
	}
	if cfg.Timeout != 2*time.Second || !cfg.Verify {
		t.Errorf("file values not applied: %+v", cfg)
	}
}

func TestParseFile_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	_, err := ParseFile([]byte("wokers: 3\n"))
	var configErr apperrors.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestParseFile_Empty(t *testing.T) {
	t.Parallel()
	fc, err := ParseFile(nil)
	if err != nil {
		t.Fatalf("empty file should be accepted: %v", err)
	}
	if fc.Workers != nil {
		t.Error("empty file should not set workers")
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{"negative workers", []string{"-workers", "-1"}, "workers"},
		{"zero threads", []string{"-threads", "0"}, "threads"},
		{"negative iterations", []string{"-iterations", "-5"}, "iterations"},
		{"negative timeout", []string{"-timeout", "-1s"}, "timeout"},
		{"quiet and verbose", []string{"-q", "-v"}, "quiet"},
		{"bad log level", []string{"-log-level", "loud"}, "log-level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig("procfan", tt.args, io.Discard, ModeProcess)
			var validationErr apperrors.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validationErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", validationErr.Field, tt.field)
			}
		})
	}
}

func TestParseConfig_HelpAndStrayArgs(t *testing.T) {
	if _, err := ParseConfig("procfan", []string{"-h"}, io.Discard, ModeProcess); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("expected flag.ErrHelp, got %v", err)
	}
	_, err := ParseConfig("procfan", []string{"extra"}, io.Discard, ModeProcess)
	var configErr apperrors.ConfigError
	if !errors.As(err, &configErr) {
		t.Errorf("expected ConfigError for stray argument, got %v", err)
	}
}

func TestDefaultWorkers(t *testing.T) {
	if DefaultWorkers() < 1 {
		t.Errorf("DefaultWorkers() = %d, want at least 1", DefaultWorkers())
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"no", true, false},
		{"0", true, false},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		if got := parseBoolEnv(tt.in, tt.def); got != tt.want {
			t.Errorf("parseBoolEnv(%q, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
		}
	}
}
