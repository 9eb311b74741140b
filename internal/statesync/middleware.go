package statesync

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/store"
	"github.com/MKhiriev/go-pair-link/models"
)

// Middleware wraps the local mutations of a state store and propagates them
// to the peer while synchronization is active.
type Middleware struct {
	store  store.StateStore
	sender Sender
	queue  *RetryQueue
	logger *logger.Logger
	now    func() time.Time

	mu     sync.Mutex
	active bool
	cache  map[string]models.Properties
}

// NewMiddleware constructs an inactive middleware over st.
func NewMiddleware(st store.StateStore, sender Sender, queue *RetryQueue, log *logger.Logger) *Middleware {
	return &Middleware{
		store:  st,
		sender: sender,
		queue:  queue,
		logger: log.WithComponent("statesync/middleware"),
		now:    time.Now,
	}
}

// Store returns the wrapped state store.
func (m *Middleware) Store() store.StateStore {
	return m.store
}

// Active reports whether incremental synchronization runs.
func (m *Middleware) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// SetActive switches incremental synchronization. Activating snapshots every
// key; deactivating drops the snapshot and every pending retry.
func (m *Middleware) SetActive(active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == active {
		return
	}
	m.active = active

	if !active {
		m.cache = nil
		m.queue.Clear()
		m.logger.Info().Str("func", "*Middleware.SetActive").Msg("synchronization stopped")
		return
	}

	m.cache = make(map[string]models.Properties, len(m.store.Keys()))
	for _, key := range m.store.Keys() {
		props, err := m.store.Get(key)
		if err != nil {
			m.logger.Err(err).Str("func", "*Middleware.SetActive").Str("key", key).Msg("error snapshotting key")
			continue
		}
		m.cache[key] = props
	}
	m.logger.Info().Str("func", "*Middleware.SetActive").Msg("synchronization started")
}

// Mutate runs fn against the store and, while active, propagates whatever
// it changed. Sync failures never surface: they are handed to the retry queue.
func (m *Middleware) Mutate(fn func(st store.StateStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := fn(m.store); err != nil {
		return err
	}

	if m.active {
		m.propagateLocked()
	}
	return nil
}

// Set writes one property stamped with the current time in milliseconds.
func (m *Middleware) Set(key, property string, value json.RawMessage) (models.Property, error) {
	var prop models.Property
	err := m.Mutate(func(st store.StateStore) error {
		var err error
		prop, err = st.Set(key, property, value, m.now().UnixMilli())
		return err
	})
	return prop, err
}

// Delete removes one property.
func (m *Middleware) Delete(key, property string) error {
	return m.Mutate(func(st store.StateStore) error {
		return st.Delete(key, property)
	})
}

// ApplyRemote applies a diff received from the peer. The snapshot follows
// the store so the diff is not echoed back.
func (m *Middleware) ApplyRemote(key string, changes models.Changes) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.ApplyChanges(key, changes); err != nil {
		return fmt.Errorf("error applying remote changes to %q: %w", key, err)
	}

	if m.active {
		props, err := m.store.Get(key)
		if err != nil {
			return err
		}
		m.cache[key] = props
	}
	return nil
}

// SendReply sends a reconciliation reply for key. It bypasses the snapshot
// and the retry queue so the caller learns whether the peer got it.
func (m *Middleware) SendReply(key string, changes models.Changes) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sender.SendSync(key, changes)
}

func (m *Middleware) propagateLocked() {
	log := m.logger.With().Str("func", "*Middleware.propagateLocked").Logger()

	for _, key := range m.store.Keys() {
		current, err := m.store.Get(key)
		if err != nil {
			log.Err(err).Str("key", key).Msg("error reading key")
			continue
		}

		changes := Diff(m.cache[key], current)
		if len(changes) == 0 {
			continue
		}
		m.cache[key] = current

		// a pending retry for the key must go out first
		if m.queue.Has(key) {
			m.queue.Enqueue(key, changes)
			continue
		}

		if err = m.sender.SendSync(key, changes); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("sync send failed, queued for retry")
			m.queue.Enqueue(key, changes)
		}
	}
}
