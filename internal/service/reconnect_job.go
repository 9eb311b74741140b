package service

import (
	"context"
	"sync"
	"time"
)

// reconnectJob runs one delayed reconnect attempt at a time. Scheduling a new
// attempt replaces the pending one.
type reconnectJob struct {
	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	gen    uint64
}

func newReconnectJob() *reconnectJob {
	return &reconnectJob{}
}

// Schedule runs fn after interval unless Stop or another Schedule comes
// first. It never waits for a running fn, so fn may schedule the next attempt.
func (j *reconnectJob) Schedule(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	j.Stop()

	j.mu.Lock()
	defer j.mu.Unlock()

	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.gen++
	gen := j.gen
	j.timer = time.AfterFunc(interval, func() {
		j.mu.Lock()
		if j.gen != gen {
			j.mu.Unlock()
			return
		}
		j.timer = nil
		j.mu.Unlock()

		if jobCtx.Err() != nil {
			return
		}
		fn(jobCtx)
	})
}

// Pending reports whether an attempt is scheduled.
func (j *reconnectJob) Pending() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.timer != nil
}

// Stop cancels the pending attempt. Safe to call when nothing is scheduled.
func (j *reconnectJob) Stop() {
	j.mu.Lock()
	cancel, timer := j.cancel, j.timer
	j.cancel, j.timer = nil, nil
	j.gen++
	j.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if cancel != nil {
		cancel()
	}
}
