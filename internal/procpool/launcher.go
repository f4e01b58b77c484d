package procpool

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Launcher builds the command for a worker process. The returned command
// must not be started; the pool wires its pipes and starts it.
type Launcher interface {
	Command(ctx context.Context, slot int) (*exec.Cmd, error)
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context, slot int) (*exec.Cmd, error)

// Command calls f.
func (f LauncherFunc) Command(ctx context.Context, slot int) (*exec.Cmd, error) {
	return f(ctx, slot)
}

// SelfLauncher starts the running executable in worker mode. Entry points
// must call RunWorkerIfRequested (or an equivalent TestMain hook) so the
// child serves requests instead of running the application.
type SelfLauncher struct {
	// Args are extra command-line arguments for the child.
	Args []string
	// Env are extra KEY=VALUE pairs appended to the inherited environment.
	Env []string
}

// Command returns a command re-executing os.Executable in worker mode.
func (l SelfLauncher) Command(ctx context.Context, slot int) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	cmd := exec.CommandContext(ctx, exe, l.Args...)
	cmd.Env = append(os.Environ(), WorkerEnv+"=1", fmt.Sprintf("%s=%d", SlotEnv, slot))
	cmd.Env = append(cmd.Env, l.Env...)
	return cmd, nil
}
