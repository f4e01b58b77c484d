package procpool

import (
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/agbru/fanout/internal/workload"
)

// behaviorEnv selects how the helper worker process misbehaves.
const behaviorEnv = "FANOUT_TEST_WORKER_BEHAVIOR"

// TestMain lets the test binary double as a worker process: the pool tests
// launch os.Executable with WorkerEnv set, which lands here.
func TestMain(m *testing.M) {
	if IsWorkerProcess() {
		os.Exit(ServeMain(helperHandler(os.Getenv(behaviorEnv))))
	}
	os.Exit(m.Run())
}

func helperHandler(behavior string) Handler {
	switch behavior {
	case "crash-on-2":
		return func(n workload.Item, iterations int, trace io.Writer) (workload.Sum, error) {
			if n == 2 {
				os.Exit(3)
			}
			return DefaultHandler(n, iterations, trace)
		}
	case "error-on-1":
		return func(n workload.Item, iterations int, trace io.Writer) (workload.Sum, error) {
			if n == 1 {
				return workload.Sum{}, errors.New("synthetic failure")
			}
			return DefaultHandler(n, iterations, trace)
		}
	case "garbage":
		return func(n workload.Item, iterations int, trace io.Writer) (workload.Sum, error) {
			_, _ = os.Stdout.WriteString("not json\n")
			return DefaultHandler(n, iterations, trace)
		}
	case "hang":
		return func(n workload.Item, iterations int, trace io.Writer) (workload.Sum, error) {
			time.Sleep(time.Minute)
			return workload.Sum{}, nil
		}
	}
	return DefaultHandler
}

// helperLauncher starts the test binary as a worker with the given behavior.
func helperLauncher(behavior string) SelfLauncher {
	return SelfLauncher{
		Args: []string{"-test.run=^$"},
		Env:  []string{behaviorEnv + "=" + behavior},
	}
}
