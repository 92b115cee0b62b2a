// Package dispatch runs a fixed pool of worker goroutines over inbound
// call frames. Each frame is handed to exactly one worker for its entire
// lifetime, matching the single-writer-per-frame concurrency model an
// OffsetCache relies on to skip synchronization (§5).
package dispatch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coreframe/callwire/internal/protocol/callframe"
	"github.com/coreframe/callwire/pkg/logger"
	"github.com/coreframe/callwire/pkg/metrics"
)

// Handler processes one decoded CallRequest frame and produces the
// response body to encode back to the caller.
type Handler func(ctx context.Context, req *callframe.RequestFrame) (*callframe.CallResponseBody, error)

// Job is one unit of dispatch work: a received request frame plus the
// channel its outcome is delivered on.
type Job struct {
	Frame  *callframe.RequestFrame
	Result chan<- Outcome
}

// Outcome is the result of handling one Job.
type Outcome struct {
	Response *callframe.CallResponseBody
	Err      error
}

// Pool is a fixed-size worker pool that drains a bounded queue of Jobs.
// The zero value is not usable; construct with New.
type Pool struct {
	workers int
	queue   chan Job
	handler Handler
	metrics metrics.CodecMetrics
}

// New builds a Pool with the given worker count and queue depth. handler
// is invoked once per Job, on whichever worker goroutine dequeues it.
func New(workers, queueDepth int, handler Handler, m metrics.CodecMetrics) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueDepth <= 0 {
		queueDepth = workers
	}
	return &Pool{
		workers: workers,
		queue:   make(chan Job, queueDepth),
		handler: handler,
		metrics: m,
	}
}

// Submit enqueues job, blocking until a slot is free or ctx is done.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	select {
	case p.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close signals that no further Jobs will be submitted. Workers drain
// the remaining queue and exit once it is empty.
func (p *Pool) Close() {
	close(p.queue)
}

// Run starts the worker pool and blocks until the queue is drained and
// closed, ctx is cancelled, or a worker returns an unrecoverable error.
// Per-job handler errors are delivered via the Job's Result channel, not
// returned from Run; Run itself only fails on pool-level problems.
func (p *Pool) Run(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)

	for i := 0; i < p.workers; i++ {
		workerID := i
		group.Go(func() error {
			return p.runWorker(gctx, workerID)
		})
	}

	return group.Wait()
}

func (p *Pool) runWorker(ctx context.Context, workerID int) error {
	for {
		select {
		case job, ok := <-p.queue:
			if !ok {
				return nil
			}
			p.handle(ctx, workerID, job)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Pool) handle(ctx context.Context, workerID int, job Job) {
	defer job.Frame.Release()

	job.Frame.SetMetrics(p.metrics)

	logger.DebugCtx(ctx, "dispatch worker picked up job", "worker_id", workerID)

	startedAt := time.Now()
	resp, err := p.handler(ctx, job.Frame)
	if err != nil {
		logger.ErrorCtx(ctx, "dispatch worker job failed",
			logger.Err(err))
	}
	metrics.ObserveDecode(p.metrics, "call_request", time.Since(startedAt), err == nil)

	if job.Result != nil {
		select {
		case job.Result <- Outcome{Response: resp, Err: err}:
		case <-ctx.Done():
		}
	}
}

// WorkerCount returns the number of worker goroutines the pool runs.
func (p *Pool) WorkerCount() int { return p.workers }

// String implements fmt.Stringer for diagnostic logging.
func (p *Pool) String() string {
	return fmt.Sprintf("dispatch.Pool{workers=%d, queueDepth=%d}", p.workers, cap(p.queue))
}
