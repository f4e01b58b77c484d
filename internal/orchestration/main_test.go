package orchestration

import (
	"os"
	"testing"

	"github.com/agbru/fanout/internal/procpool"
)

// TestMain lets the test binary serve as a procpool worker.
func TestMain(m *testing.M) {
	if procpool.IsWorkerProcess() {
		os.Exit(procpool.ServeMain(procpool.DefaultHandler))
	}
	os.Exit(m.Run())
}

func helperLauncher() procpool.Launcher {
	return procpool.SelfLauncher{Args: []string{"-test.run=^$"}}
}
