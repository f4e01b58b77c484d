// Package app wires configuration, runners and presentation into the two
// command entry points.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/fanout/internal/config"
	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/logging"
	"github.com/agbru/fanout/internal/metrics"
	"github.com/agbru/fanout/internal/procpool"
	"github.com/agbru/fanout/internal/telemetry"
	"github.com/agbru/fanout/internal/ui"
)

// Application represents one invocation of procfan or threadfan.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	Logger    logging.Logger
	Recorder  *metrics.Recorder

	mode          config.Mode
	launcher      procpool.Launcher
	threadCounter func() int
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithMode selects the runner executed by Run. The default is the process
// runner.
func WithMode(m config.Mode) AppOption {
	return func(a *Application) { a.mode = m }
}

// WithLauncher replaces the default self re-exec launcher of the process
// runner.
func WithLauncher(l procpool.Launcher) AppOption {
	return func(a *Application) { a.launcher = l }
}

// WithThreadCounter replaces the OS thread counter of the thread runner.
func WithThreadCounter(fn func() int) AppOption {
	return func(a *Application) { a.threadCounter = fn }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, mode: config.ModeProcess}
	for _, opt := range opts {
		opt(app)
	}

	programName := "fanout"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.mode)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	if app.Logger == nil {
		app.Logger = logging.NewConsoleLogger(errWriter, string(cfg.Mode))
	}
	app.Recorder = metrics.NewRecorder()
	return app, nil
}

// Run executes the configured runner, or both with --compare, and returns
// the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	zerolog.SetGlobalLevel(a.Config.Level())
	ui.InitTheme(a.Config.NoColor)

	shutdown, err := telemetry.Init("fanout-"+string(a.Config.Mode), Version, a.Config.TraceFile)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: cannot open trace file: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			a.Logger.Warn("trace export failed", logging.Err(err))
		}
	}()

	ctx, cancel := a.lifecycle(ctx)
	defer cancel()

	var code int
	if a.Config.Compare {
		code = a.runCompare(ctx, out)
	} else {
		code = a.runSingle(ctx, out)
	}

	if a.Config.MetricsFile != "" {
		if err := a.Recorder.WriteTextfile(a.Config.MetricsFile); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error writing metrics: %v\n", err)
			if code == apperrors.ExitSuccess {
				code = apperrors.ExitErrorGeneric
			}
		}
	}
	return code
}

// lifecycle applies the optional timeout and cancels on SIGINT/SIGTERM.
func (a *Application) lifecycle(ctx context.Context) (context.Context, context.CancelFunc) {
	cancelTimeout := context.CancelFunc(func() {})
	if a.Config.Timeout > 0 {
		ctx, cancelTimeout = context.WithTimeout(ctx, a.Config.Timeout)
	}
	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	return ctx, func() {
		stopSignals()
		cancelTimeout()
	}
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
