package transport

import (
	"sync"
	"time"
)

const (
	defaultDedupCapacity = 1000
	defaultDedupTTL      = 5 * time.Minute
)

type seenID struct {
	id string
	at time.Time
}

// dedupCache remembers inbound envelope ids for a TTL. It is bounded: once
// capacity is exceeded the oldest ids are forgotten first.
type dedupCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time

	entries map[string]time.Time
	// order holds ids in insertion order; it may contain stale pairs for ids
	// that were re-recorded after expiry.
	order []seenID
}

func newDedupCache(capacity int, ttl time.Duration) *dedupCache {
	if capacity <= 0 {
		capacity = defaultDedupCapacity
	}
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}

	return &dedupCache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]time.Time),
	}
}

// seen reports whether id was recorded within the TTL. A fresh id is
// recorded and false is returned.
func (d *dedupCache) seen(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if at, ok := d.entries[id]; ok && now.Sub(at) < d.ttl {
		return true
	}

	d.entries[id] = now
	d.order = append(d.order, seenID{id: id, at: now})

	for len(d.entries) > d.capacity {
		d.popOldest()
	}

	return false
}

func (d *dedupCache) popOldest() {
	oldest := d.order[0]
	d.order = d.order[1:]
	if at, ok := d.entries[oldest.id]; ok && at.Equal(oldest.at) {
		delete(d.entries, oldest.id)
	}
}

// sweep drops every expired id.
func (d *dedupCache) sweep() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for len(d.order) > 0 && now.Sub(d.order[0].at) >= d.ttl {
		d.popOldest()
	}
}

func (d *dedupCache) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *dedupCache) clear() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.entries = make(map[string]time.Time)
	d.order = nil
}

// runSweeper sweeps periodically until done is closed.
func (d *dedupCache) runSweeper(done <-chan struct{}) {
	interval := d.ttl / 5
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			d.sweep()
		}
	}
}
