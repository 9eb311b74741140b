package statesync

import (
	"sync"
	"time"

	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/models"
)

const (
	defaultRetryDelay    = 3 * time.Second
	defaultMaxRetries    = 5
	defaultQueueCapacity = 100
)

// Sender delivers one key's diff to the peer.
type Sender interface {
	SendSync(key string, changes models.Changes) error
}

// RetryItem is a diff waiting to be resent.
type RetryItem struct {
	Key        string
	Changes    models.Changes
	RetryCount int
	EnqueuedAt time.Time
}

// RetryQueueConfig bounds a [RetryQueue]. Zero values select the defaults.
type RetryQueueConfig struct {
	Delay      time.Duration
	MaxRetries int
	Capacity   int
}

// RetryQueue buffers diffs that failed to send. Items of the same key are
// merged, distinct keys keep their enqueue order, and the oldest item is
// evicted when the queue is full.
type RetryQueue struct {
	sender Sender
	logger *logger.Logger
	now    func() time.Time

	delay      time.Duration
	maxRetries int
	capacity   int

	mu         sync.Mutex
	items      []*RetryItem
	inFlight   map[string]struct{}
	scheduled  bool
	timer      *time.Timer
	generation uint64
	closed     bool
}

// NewRetryQueue constructs an empty queue resending through sender.
func NewRetryQueue(sender Sender, cfg RetryQueueConfig, log *logger.Logger) *RetryQueue {
	q := &RetryQueue{
		sender:     sender,
		logger:     log.WithComponent("statesync/retry"),
		now:        time.Now,
		delay:      cfg.Delay,
		maxRetries: cfg.MaxRetries,
		capacity:   cfg.Capacity,
	}
	if q.delay <= 0 {
		q.delay = defaultRetryDelay
	}
	if q.maxRetries <= 0 {
		q.maxRetries = defaultMaxRetries
	}
	if q.capacity <= 0 {
		q.capacity = defaultQueueCapacity
	}
	return q
}

// Enqueue adds changes for key. A pending item of the same key absorbs the
// changes (newer values win) and its retry count restarts at zero.
func (q *RetryQueue) Enqueue(key string, changes models.Changes) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	if item := q.findLocked(key); item != nil {
		item.Changes.Merge(changes.Clone())
		item.RetryCount = 0
	} else {
		q.pushLocked(&RetryItem{Key: key, Changes: changes.Clone(), EnqueuedAt: q.now()})
	}

	q.scheduleLocked()
}

// Has reports whether key has a pending item or is being resent by the
// running cycle. Diffs for such a key must be enqueued, not sent directly.
func (q *RetryQueue) Has(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.inFlight[key]; ok {
		return true
	}
	return q.findLocked(key) != nil
}

// Len returns the number of pending items.
func (q *RetryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Items returns a copy of the pending items in queue order.
func (q *RetryQueue) Items() []RetryItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]RetryItem, 0, len(q.items))
	for _, item := range q.items {
		cp := *item
		cp.Changes = item.Changes.Clone()
		out = append(out, cp)
	}
	return out
}

// Clear drops every pending item. A cycle already running does not put its
// failures back.
func (q *RetryQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.clearLocked()
}

// Close clears the queue and stops accepting items.
func (q *RetryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.clearLocked()
	q.closed = true
}

func (q *RetryQueue) clearLocked() {
	q.items = nil
	q.inFlight = nil
	q.generation++
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.scheduled = false
}

func (q *RetryQueue) findLocked(key string) *RetryItem {
	for _, item := range q.items {
		if item.Key == key {
			return item
		}
	}
	return nil
}

func (q *RetryQueue) pushLocked(item *RetryItem) {
	if len(q.items) >= q.capacity {
		evicted := q.items[0]
		q.items = q.items[1:]
		q.logger.Warn().Str("func", "*RetryQueue.pushLocked").Str("key", evicted.Key).
			Int("retry_count", evicted.RetryCount).Msg("retry queue full, oldest item evicted")
	}
	q.items = append(q.items, item)
}

func (q *RetryQueue) scheduleLocked() {
	if q.scheduled || q.closed || len(q.items) == 0 {
		return
	}
	q.scheduled = true
	generation := q.generation
	q.timer = time.AfterFunc(q.delay, func() { q.runCycle(generation) })
}

// runCycle resends a snapshot of the queue. Items that fail again are put
// back with an incremented retry count or dropped past the maximum.
func (q *RetryQueue) runCycle(generation uint64) {
	log := q.logger.With().Str("func", "*RetryQueue.runCycle").Logger()

	q.mu.Lock()
	if generation != q.generation {
		q.mu.Unlock()
		return
	}
	batch := q.items
	q.items = nil
	q.timer = nil
	q.inFlight = make(map[string]struct{}, len(batch))
	for _, item := range batch {
		q.inFlight[item.Key] = struct{}{}
	}
	q.mu.Unlock()

	failed := make([]*RetryItem, 0)
	for _, item := range batch {
		if err := q.sender.SendSync(item.Key, item.Changes); err != nil {
			item.RetryCount++
			if item.RetryCount >= q.maxRetries {
				log.Error().Err(err).Str("key", item.Key).Int("retry_count", item.RetryCount).
					Msg("sync diff dropped after max retries")
				continue
			}
			log.Debug().Err(err).Str("key", item.Key).Int("retry_count", item.RetryCount).Msg("sync resend failed")
			failed = append(failed, item)
			continue
		}
		log.Debug().Str("key", item.Key).Msg("sync diff resent")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if generation != q.generation {
		return
	}
	q.restoreLocked(failed)
	q.inFlight = nil
	q.scheduled = false
	q.scheduleLocked()
}

// restoreLocked puts the failed items of a cycle back in front of anything
// enqueued while the cycle ran, keeping their order. A diff enqueued for the
// same key meanwhile is folded into the failed one's slot: the newer diff wins
// per property and its retry count is kept. Overflow evicts from the front.
func (q *RetryQueue) restoreLocked(failed []*RetryItem) {
	if len(failed) == 0 {
		return
	}

	restored := make([]*RetryItem, 0, len(failed)+len(q.items))
	for _, item := range failed {
		newer := q.findLocked(item.Key)
		if newer == nil {
			restored = append(restored, item)
			continue
		}
		merged := item.Changes.Clone()
		if merged == nil {
			merged = make(models.Changes, len(newer.Changes))
		}
		merged.Merge(newer.Changes)
		newer.Changes = merged
		q.removeLocked(newer)
		restored = append(restored, newer)
	}
	q.items = append(restored, q.items...)

	for len(q.items) > q.capacity {
		evicted := q.items[0]
		q.items = q.items[1:]
		q.logger.Warn().Str("func", "*RetryQueue.restoreLocked").Str("key", evicted.Key).
			Int("retry_count", evicted.RetryCount).Msg("retry queue full, oldest item evicted")
	}
}

func (q *RetryQueue) removeLocked(target *RetryItem) {
	for i, item := range q.items {
		if item == target {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}
