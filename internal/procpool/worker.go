package procpool

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/workload"
)

// workerProcess is one running child and the pipes used to talk to it.
// It is owned by a single dispatcher goroutine.
type workerProcess struct {
	slot   int
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	enc    *json.Encoder
	dec    *json.Decoder
	stderr *workload.LineWriter

	waitOnce sync.Once
	waitErr  error
}

func startWorker(ctx context.Context, l Launcher, slot int, trace *workload.TraceWriter, grace time.Duration) (*workerProcess, error) {
	cmd, err := l.Command(ctx, slot)
	if err != nil {
		return nil, err
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	lw := trace.LineWriter()
	cmd.Stderr = lw
	cmd.WaitDelay = grace

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return nil, err
	}
	return &workerProcess{
		slot:   slot,
		cmd:    cmd,
		stdin:  stdin,
		enc:    json.NewEncoder(stdin),
		dec:    json.NewDecoder(bufio.NewReader(stdout)),
		stderr: lw,
	}, nil
}

func (w *workerProcess) pid() int {
	if w.cmd.Process == nil {
		return 0
	}
	return w.cmd.Process.Pid
}

// do sends one request and blocks until its response arrives.
func (w *workerProcess) do(req Request, grace time.Duration) (workload.Sum, error) {
	if err := w.enc.Encode(req); err != nil {
		return workload.Sum{}, w.exitCause(err, grace)
	}
	var resp Response
	if err := w.dec.Decode(&resp); err != nil {
		return workload.Sum{}, w.exitCause(err, grace)
	}
	if resp.Index != req.Index {
		return workload.Sum{}, apperrors.ProtocolError{
			Message: fmt.Sprintf("response for item %d while waiting for item %d", resp.Index, req.Index),
		}
	}
	if resp.Error != "" {
		return workload.Sum{}, errors.New(resp.Error)
	}
	return workload.Sum{Hi: resp.Hi, Lo: resp.Lo}, nil
}

// exitCause maps a pipe failure to the child's exit status when the child
// went away, and to a protocol error otherwise.
func (w *workerProcess) exitCause(ioErr error, grace time.Duration) error {
	if errors.Is(ioErr, io.EOF) || errors.Is(ioErr, io.ErrUnexpectedEOF) ||
		errors.Is(ioErr, syscall.EPIPE) || errors.Is(ioErr, os.ErrClosed) {
		if err := w.waitWithin(grace); err != nil {
			return fmt.Errorf("worker process exited: %w", err)
		}
		return errors.New("worker process exited before replying")
	}
	return apperrors.ProtocolError{Message: ioErr.Error()}
}

func (w *workerProcess) kill() {
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
}

func (w *workerProcess) wait() error {
	w.waitOnce.Do(func() {
		w.waitErr = w.cmd.Wait()
	})
	return w.waitErr
}

// waitWithin waits for the child, killing it if it outlives grace.
func (w *workerProcess) waitWithin(grace time.Duration) error {
	timer := time.AfterFunc(grace, w.kill)
	defer timer.Stop()
	return w.wait()
}

// close ends the session: stdin is closed so the child sees EOF and exits,
// then the child is reaped. Any trailing stderr is flushed to the trace.
func (w *workerProcess) close(grace time.Duration) error {
	_ = w.stdin.Close()
	err := w.waitWithin(grace)
	if ferr := w.stderr.Flush(); err == nil {
		err = ferr
	}
	return err
}
