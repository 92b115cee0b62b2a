package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/coreframe/callwire/internal/dispatch"
	"github.com/coreframe/callwire/internal/protocol/callframe"
	"github.com/coreframe/callwire/internal/ratelimit"
	"github.com/coreframe/callwire/pkg/logger"
)

var (
	demoWorkers     int
	demoCallCount   int
	demoMaxTokens   int64
)

var serveDemoCmd = &cobra.Command{
	Use:   "serve-demo",
	Short: "Run a short in-process demo of the dispatch pool and rate limiter",
	Long: `serve-demo builds a handful of synthetic CallRequest frames, each
tagged with a fresh trace id, pushes them through the dispatch worker
pool, and reports whether the rate limiter admitted each one. It exits
once every job has been processed -- there is no listening socket.`,
	RunE: runServeDemo,
}

func init() {
	serveDemoCmd.Flags().IntVar(&demoWorkers, "workers", 4, "number of dispatch workers")
	serveDemoCmd.Flags().IntVar(&demoCallCount, "calls", 10, "number of synthetic calls to dispatch")
	serveDemoCmd.Flags().Int64Var(&demoMaxTokens, "max-tokens", 5, "rate limiter tokens per (caller, callee) per window")
}

func runServeDemo(cmd *cobra.Command, args []string) error {
	limiter, err := ratelimit.New(ratelimit.Config{
		MaxTokensPerWindow: demoMaxTokens,
		ResetInterval:      time.Second,
	}, nil)
	if err != nil {
		return fmt.Errorf("build rate limiter: %w", err)
	}
	defer limiter.Close()

	handler := func(ctx context.Context, req *callframe.RequestFrame) (*callframe.CallResponseBody, error) {
		caller, _ := req.ReadCallerNameStr()
		service, err := req.ReadServiceStr()
		if err != nil {
			return nil, err
		}

		if !limiter.Observe(caller, service) {
			return &callframe.CallResponseBody{Code: callframe.ResponseError}, nil
		}
		return &callframe.CallResponseBody{Code: callframe.ResponseOK}, nil
	}

	pool := dispatch.New(demoWorkers, demoCallCount, handler, nil)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- pool.Run(ctx) }()

	results := make(chan dispatch.Outcome, demoCallCount)
	for i := 0; i < demoCallCount; i++ {
		buf, err := buildDemoRequest(i)
		if err != nil {
			return err
		}
		frame := callframe.NewRequestFrame(buf, len(buf))
		if err := pool.Submit(ctx, dispatch.Job{Frame: frame, Result: results}); err != nil {
			return fmt.Errorf("submit job %d: %w", i, err)
		}
	}
	pool.Close()

	for i := 0; i < demoCallCount; i++ {
		select {
		case out := <-results:
			if out.Err != nil {
				logger.Error("demo call failed", logger.Err(out.Err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "call %d: code=%d\n", i, out.Response.Code)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return <-runDone
}

func buildDemoRequest(i int) ([]byte, error) {
	traceID := uuid.New()
	body := &callframe.CallRequestBody{
		TTL: 5000,
		Tracing: callframe.Tracing{
			TraceID: traceIDToUint64(traceID),
		},
		Service: "demo-service",
		Headers: []callframe.Header{
			{Key: "cn", Value: fmt.Sprintf("caller-%d", i%3)},
		},
		Args: [][]byte{[]byte("ping")},
	}
	return body.Encode(false)
}

// traceIDToUint64 folds a uuid.UUID down to the 64-bit trace id field
// callframe.Tracing carries (§4.2); it is a demo convenience, not a
// collision-resistant derivation.
func traceIDToUint64(id uuid.UUID) uint64 {
	var v uint64
	for _, b := range id[:8] {
		v = v<<8 | uint64(b)
	}
	return v
}
