package procpool

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/workload"
)

func encodeRequests(t *testing.T, reqs ...Request) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}
	return &buf
}

func decodeResponses(t *testing.T, r io.Reader) []Response {
	t.Helper()
	var out []Response
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		var resp Response
		require.NoError(t, json.Unmarshal(sc.Bytes(), &resp))
		out = append(out, resp)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestServe_AnswersEveryRequestInOrder(t *testing.T) {
	t.Parallel()
	in := encodeRequests(t,
		Request{Index: 0, N: 7, Iterations: 100},
		Request{Index: 1, N: 8, Iterations: 100},
		Request{Index: 2, N: 9, Iterations: 0},
	)
	var out, trace bytes.Buffer

	require.NoError(t, Serve(context.Background(), in, &out, &trace, DefaultHandler))

	resps := decodeResponses(t, &out)
	require.Len(t, resps, 3)
	want := workload.Compute(0, 100, nil)
	for i, resp := range resps {
		assert.Equal(t, i, resp.Index)
		assert.Empty(t, resp.Error)
		if i < 2 {
			assert.Equal(t, want, workload.Sum{Hi: resp.Hi, Lo: resp.Lo})
		} else {
			assert.True(t, workload.Sum{Hi: resp.Hi, Lo: resp.Lo}.IsZero())
		}
	}
	assert.Equal(t, "processing 7\nprocessing 8\nprocessing 9\n", trace.String())
}

func TestServe_HandlerErrorBecomesErrorResponse(t *testing.T) {
	t.Parallel()
	in := encodeRequests(t, Request{Index: 4, N: 4, Iterations: 10})
	var out bytes.Buffer
	failing := func(workload.Item, int, io.Writer) (workload.Sum, error) {
		return workload.Sum{}, errors.New("boom")
	}

	require.NoError(t, Serve(context.Background(), in, &out, io.Discard, failing))

	resps := decodeResponses(t, &out)
	require.Len(t, resps, 1)
	assert.Equal(t, Response{Index: 4, Error: "boom"}, resps[0])
}

func TestServe_MalformedInput(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	err := Serve(context.Background(), strings.NewReader("{\"index\": nope}\n"), &out, io.Discard, DefaultHandler)

	var perr apperrors.ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Zero(t, out.Len())
}

func TestServe_EmptyInputIsCleanShutdown(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	assert.NoError(t, Serve(context.Background(), strings.NewReader(""), &out, io.Discard, DefaultHandler))
	assert.Zero(t, out.Len())
}

func TestServe_CanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := encodeRequests(t, Request{Index: 0, N: 0, Iterations: 10})
	err := Serve(ctx, in, io.Discard, io.Discard, DefaultHandler)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsWorkerProcess(t *testing.T) {
	t.Setenv(WorkerEnv, "1")
	assert.True(t, IsWorkerProcess())
	t.Setenv(WorkerEnv, "")
	assert.False(t, IsWorkerProcess())
}

func TestSelfLauncher_Command(t *testing.T) {
	t.Parallel()
	l := SelfLauncher{Args: []string{"-x"}, Env: []string{"EXTRA=1"}}
	cmd, err := l.Command(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"-x"}, cmd.Args[1:])
	assert.Contains(t, cmd.Env, WorkerEnv+"=1")
	assert.Contains(t, cmd.Env, SlotEnv+"=3")
	assert.Equal(t, "EXTRA=1", cmd.Env[len(cmd.Env)-1])
}
