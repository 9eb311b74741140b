package transport

import (
	"sync"
	"time"
)

// heartbeatMonitor watches the interval between relay heartbeats. It checks
// at half the timeout and fires onTimeout at most once. Until the first
// heartbeat arrives the tolerated silence is doubled.
type heartbeatMonitor struct {
	timeout   time.Duration
	onTimeout func(elapsed time.Duration)
	now       func() time.Time

	mu        sync.Mutex
	startedAt time.Time
	lastBeat  time.Time

	done     chan struct{}
	stopOnce sync.Once
}

func newHeartbeatMonitor(timeout time.Duration, onTimeout func(elapsed time.Duration)) *heartbeatMonitor {
	return &heartbeatMonitor{
		timeout:   timeout,
		onTimeout: onTimeout,
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

// start records the reference time and launches the checker. A non-positive
// timeout disables the monitor.
func (m *heartbeatMonitor) start() {
	m.mu.Lock()
	m.startedAt = m.now()
	m.mu.Unlock()

	if m.timeout <= 0 {
		return
	}

	go m.run()
}

func (m *heartbeatMonitor) run() {
	ticker := time.NewTicker(m.timeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			if elapsed, expired := m.expired(); expired {
				m.stop()
				m.onTimeout(elapsed)
				return
			}
		}
	}
}

// beat records a heartbeat from the relay.
func (m *heartbeatMonitor) beat() {
	m.mu.Lock()
	m.lastBeat = m.now()
	m.mu.Unlock()
}

func (m *heartbeatMonitor) expired() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.lastBeat.IsZero() {
		elapsed := now.Sub(m.startedAt)
		return elapsed, elapsed > 2*m.timeout
	}

	elapsed := now.Sub(m.lastBeat)
	return elapsed, elapsed > m.timeout
}

func (m *heartbeatMonitor) stop() {
	m.stopOnce.Do(func() { close(m.done) })
}
