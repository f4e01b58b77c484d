// Command procfan runs the Process Fan-Out Runner.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agbru/fanout/internal/app"
	"github.com/agbru/fanout/internal/config"
	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/procpool"
)

func main() {
	procpool.RunWorkerIfRequested()

	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		return
	}

	application, err := app.New(os.Args, os.Stderr, app.WithMode(config.ModeProcess))
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(apperrors.ExitErrorConfig)
	}

	os.Exit(application.Run(context.Background(), os.Stdout))
}
