package dispatch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coreframe/callwire/internal/protocol/callframe"
)

func buildRequestBuf(t *testing.T) []byte {
	t.Helper()
	body := &callframe.CallRequestBody{
		TTL:     1000,
		Service: "svc",
		Args:    [][]byte{[]byte("echo")},
	}
	buf, err := body.Encode(false)
	require.NoError(t, err)
	return buf
}

func TestPool_ProcessesAllJobs(t *testing.T) {
	var handled atomic.Int64

	handler := func(ctx context.Context, req *callframe.RequestFrame) (*callframe.CallResponseBody, error) {
		handled.Add(1)
		return &callframe.CallResponseBody{Code: callframe.ResponseOK}, nil
	}

	pool := New(4, 8, handler, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- pool.Run(ctx) }()

	const jobCount = 20
	results := make(chan Outcome, jobCount)
	for i := 0; i < jobCount; i++ {
		buf := buildRequestBuf(t)
		frame := callframe.NewRequestFrame(buf, len(buf))
		require.NoError(t, pool.Submit(ctx, Job{Frame: frame, Result: results}))
	}
	pool.Close()

	for i := 0; i < jobCount; i++ {
		select {
		case out := <-results:
			require.NoError(t, out.Err)
			require.Equal(t, callframe.ResponseOK, out.Response.Code)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for job outcome")
		}
	}

	select {
	case err := <-runDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not shut down after Close")
	}

	require.EqualValues(t, jobCount, handled.Load())
}
