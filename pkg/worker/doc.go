// Package worker provides a generic, thread-safe worker pool for concurrent
// task processing.
//
// # Overview
//
// The worker package implements a bounded worker pool with:
//   - Generic type support for type-safe work processing
//   - Bounded queues with backpressure (non-blocking submit)
//   - Context-aware cancellation and graceful shutdown
//   - Always-on statistics plus optional Prometheus metrics
//
// # Usage
//
// SemQuery's classifier fans similarity evaluations out over a pool so a
// large item×category product never serializes against the remote oracle,
// and so concurrency stays bounded:
//
//	type scoreTask struct {
//	    itemIndex     int
//	    categoryIndex int
//	}
//
//	pool := worker.NewPool(8, 256,
//	    func(ctx context.Context, task scoreTask) error {
//	        // evaluate one (item, category) similarity
//	        return nil
//	    },
//	)
//
//	if err := pool.Start(ctx); err != nil { ... }
//	defer pool.Stop(5 * time.Second)
//
//	if err := pool.Submit(scoreTask{0, 0}); err != nil {
//	    // queue full - apply backpressure
//	}
//
// Submit never blocks: when the queue is full it returns ErrQueueFull and the
// caller decides whether to wait, drop, or fail. Stop closes the queue and
// waits for in-flight work to drain, up to the given timeout.
//
// # Metrics
//
// When constructed with WithMetricsRegistry, the pool registers queue depth,
// submitted/processed/failed/dropped counters, and a processing duration
// histogram under the given prefix.
package worker
