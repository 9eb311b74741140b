package store

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/MKhiriev/go-pair-link/models"
)

type memoryStateStore struct {
	mu    sync.RWMutex
	keys  []string
	state map[string]models.Properties
}

// NewMemoryStateStore creates a store holding the given synchronizable keys,
// each starting empty.
func NewMemoryStateStore(keys ...string) StateStore {
	s := &memoryStateStore{state: make(map[string]models.Properties, len(keys))}
	for _, key := range keys {
		if _, ok := s.state[key]; ok {
			continue
		}
		s.keys = append(s.keys, key)
		s.state[key] = models.Properties{}
	}
	return s
}

func (s *memoryStateStore) Keys() []string {
	return slices.Clone(s.keys)
}

func (s *memoryStateStore) Get(key string) (models.Properties, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	props, ok := s.state[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStateKey, key)
	}
	return props.Clone(), nil
}

func (s *memoryStateStore) Set(key, property string, value json.RawMessage, updateAt int64) (models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	props, ok := s.state[key]
	if !ok {
		return models.Property{}, fmt.Errorf("%w: %s", ErrUnknownStateKey, key)
	}

	if current, exists := props[property]; exists && updateAt <= current.UpdateAt {
		updateAt = current.UpdateAt + 1
	}

	prop := models.Property{Value: value, UpdateAt: updateAt}.Clone()
	props[property] = prop
	return prop.Clone(), nil
}

func (s *memoryStateStore) Delete(key, property string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	props, ok := s.state[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStateKey, key)
	}

	delete(props, property)
	return nil
}

func (s *memoryStateStore) ApplyChanges(key string, changes models.Changes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	props, ok := s.state[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStateKey, key)
	}

	for name, change := range changes {
		if change == nil {
			delete(props, name)
			continue
		}

		if current, exists := props[name]; exists && change.UpdateAt <= current.UpdateAt {
			continue
		}
		props[name] = change.Clone()
	}

	return nil
}
