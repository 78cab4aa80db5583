package parserutil

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TaskFunc runs one unit of work, usually one source.
type TaskFunc[T any] func(ctx context.Context, item T) error

// RunOptions configures how tasks are run.
type RunOptions[T any] struct {
	// Workers bounds the number of tasks in flight. Values below 1 mean one
	// worker per item.
	Workers int
	// Name labels an item in logs.
	Name func(item T) string
	// OnError is called when a task returns an error. If nil, errors are logged.
	OnError func(item T, err error)
}

// RunAll runs fn for every item on a bounded pool and blocks until all of them
// return. A failing task never stops the others.
func RunAll[T any](ctx context.Context, items []T, fn TaskFunc[T], opts RunOptions[T]) {
	if len(items) == 0 {
		return
	}

	name := opts.Name
	if name == nil {
		name = func(T) string { return "" }
	}
	onError := opts.OnError
	if onError == nil {
		onError = func(item T, err error) {
			slog.Error("Task failed", "task", name(item), "error", err)
		}
	}
	workers := opts.Workers
	if workers < 1 || workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan T)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				if err := fn(ctx, item); err != nil && ctx.Err() == nil {
					onError(item, err)
				}
			}
		}()
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)
	wg.Wait()
}

// CreateCycleContext creates a context for a cycle with optional timeout
func CreateCycleContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return ctx, func() {} // No-op cancel function
}

// RunPeriodic calls cycle every interval until ctx is done. Each cycle gets its
// own context bounded by timeout. Cycles never overlap.
func RunPeriodic(ctx context.Context, name string, interval, timeout time.Duration, cycle func(context.Context)) {
	if timeout > 0 {
		slog.Info("Periodic loop started", "loop", name, "interval", interval, "timeout", timeout)
	} else {
		slog.Info("Periodic loop started", "loop", name, "interval", interval, "timeout", "unlimited")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cycles := 0
	for {
		select {
		case <-ctx.Done():
			slog.Info("Periodic loop stopped", "loop", name, "total_cycles", cycles)
			return
		case <-ticker.C:
			cycles++
			start := time.Now()
			cycleCtx, cancel := CreateCycleContext(ctx, timeout)
			cycle(cycleCtx)
			cancel()
			slog.Info("Cycle finished", "loop", name, "cycle_id", cycles, "duration", time.Since(start))
		}
	}
}
