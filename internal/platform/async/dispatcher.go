// Package async runs fire-and-forget writes in the background while keeping
// their outcome observable.
package async

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Result reports the outcome of one background task.
type Result struct {
	Op       string
	Key      string
	Err      error
	Finished time.Time
}

// Dispatcher spawns background tasks. Failures are logged and every outcome
// is published on Results; the channel never blocks a task, so results are
// dropped once the buffer is full.
type Dispatcher struct {
	logger  *slog.Logger
	results chan Result
	wg      sync.WaitGroup
}

func NewDispatcher(logger *slog.Logger, buffer int) *Dispatcher {
	if buffer < 1 {
		buffer = 64
	}
	return &Dispatcher{logger: logger, results: make(chan Result, buffer)}
}

// Go runs fn on its own goroutine. The caller's cancellation does not reach
// fn, which keeps a write alive after the triggering request returns.
func (d *Dispatcher) Go(ctx context.Context, op, key string, fn func(context.Context) error) {
	runCtx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		err := fn(runCtx)
		if err != nil && d.logger != nil {
			d.logger.Warn("background write failed", "op", op, "key", key, "error", err)
		}
		select {
		case d.results <- Result{Op: op, Key: key, Err: err, Finished: time.Now()}:
		default:
		}
	}()
}

func (d *Dispatcher) Results() <-chan Result {
	return d.results
}

// Wait blocks until every task spawned so far has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Drain waits for outstanding tasks and returns the buffered results.
func (d *Dispatcher) Drain() []Result {
	d.Wait()
	out := []Result{}
	for {
		select {
		case r := <-d.results:
			out = append(out, r)
		default:
			return out
		}
	}
}
