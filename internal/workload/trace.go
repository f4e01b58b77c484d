package workload

import (
	"bytes"
	"io"
	"sync"
)

// TraceWriter serialises trace output from concurrent workers so that lines
// are never interleaved. Partial writes are buffered per writer until a
// newline arrives.
type TraceWriter struct {
	mu  sync.Mutex
	dst io.Writer
}

// NewTraceWriter wraps dst. A nil dst discards all output.
func NewTraceWriter(dst io.Writer) *TraceWriter {
	if dst == nil {
		dst = io.Discard
	}
	if tw, ok := dst.(*TraceWriter); ok {
		return tw
	}
	return &TraceWriter{dst: dst}
}

// Write writes p to the destination under the lock.
func (t *TraceWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dst.Write(p)
}

// LineWriter returns a writer that forwards only complete lines to t.
// Call Flush once the producer is done to emit a trailing partial line.
func (t *TraceWriter) LineWriter() *LineWriter {
	return &LineWriter{dst: t}
}

// LineWriter buffers bytes until a full line is available. It is used for
// worker process stderr, which is copied in arbitrary chunks.
type LineWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
	dst io.Writer
}

func (l *LineWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.Write(p)
	for {
		i := bytes.IndexByte(l.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		if _, err := l.dst.Write(l.buf.Next(i + 1)); err != nil {
			return len(p), err
		}
	}
	return len(p), nil
}

// Flush emits any buffered partial line with a terminating newline.
func (l *LineWriter) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buf.Len() == 0 {
		return nil
	}
	line := append(l.buf.Bytes(), '\n')
	l.buf.Reset()
	_, err := l.dst.Write(line)
	return err
}
