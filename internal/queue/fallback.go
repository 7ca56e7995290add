package queue

import (
	"context"
	"log/slog"
	"sync"
)

// Fallback runs jobs inline when the durable queue refused them. It is a
// bounded executor, not an unobserved goroutine: concurrency is capped and
// in-flight/completed/failed counts are exported as metrics.
type Fallback struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

func NewFallback(limit int) *Fallback {
	if limit <= 0 {
		limit = 2
	}
	return &Fallback{sem: make(chan struct{}, limit)}
}

// Go schedules fn detached from the calling request. The request path
// returns immediately; fn blocks only on the executor's own capacity.
func (f *Fallback) Go(name string, fn func(ctx context.Context) error) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.sem <- struct{}{}
		defer func() { <-f.sem }()

		fallbackInFlight.Inc()
		defer fallbackInFlight.Dec()

		if err := fn(context.Background()); err != nil {
			fallbackFailed.Inc()
			slog.Error("inline fallback job failed", "job", name, "error", err)
			return
		}
		fallbackCompleted.Inc()
	}()
}

// Wait blocks until all scheduled jobs have finished. Used in tests and on
// shutdown.
func (f *Fallback) Wait() {
	f.wg.Wait()
}
