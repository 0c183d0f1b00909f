// Package scheduler runs the periodic expiration sweep.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner invokes sweep on a fixed interval until stopped. Sweeps are
// idempotent, so an overlap between a slow sweep and the next tick is
// harmless; the runner still serializes them to keep load predictable.
type Runner struct {
	sweep    func(ctx context.Context) error
	interval time.Duration
	logger   *slog.Logger
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewRunner(sweep func(ctx context.Context) error, interval time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Runner{
		sweep:    sweep,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start launches the loop. The first sweep runs immediately so a restart
// catches up on deadlines that passed while the service was down.
func (r *Runner) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		r.runOnce()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				r.runOnce()
			}
		}
	}()
}

func (r *Runner) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), r.interval)
	defer cancel()

	if err := r.sweep(ctx); err != nil {
		r.logger.Error("expiration sweep failed", slog.Any("error", err))
	}
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	r.wg.Wait()
}
