package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-pair-link/internal/logger"
)

type Workers struct {
	workers []Worker
}

func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Run starts every worker on its own goroutine and waits until all of them
// returned.
func (w *Workers) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, worker := range w.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(ctx)
		}()
	}
	wg.Wait()
}

// TickerWorker calls job every interval until its context ends.
type TickerWorker struct {
	name     string
	interval time.Duration
	job      func(ctx context.Context)
	logger   *logger.Logger
}

func NewTickerWorker(name string, interval time.Duration, job func(ctx context.Context), log *logger.Logger) *TickerWorker {
	return &TickerWorker{
		name:     name,
		interval: interval,
		job:      job,
		logger:   log.WithComponent("workers/" + name),
	}
}

func (t *TickerWorker) Run(ctx context.Context) {
	if t.interval <= 0 {
		t.logger.Warn().Str("func", "*TickerWorker.Run").Msg("non-positive interval, worker disabled")
		return
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.Info().Str("func", "*TickerWorker.Run").Dur("interval", t.interval).Msg("worker started")
	for {
		select {
		case <-ctx.Done():
			t.logger.Info().Str("func", "*TickerWorker.Run").Msg("worker stopped")
			return
		case <-ticker.C:
			t.job(ctx)
		}
	}
}
