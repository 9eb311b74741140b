package statesync

import (
	"github.com/MKhiriev/go-pair-link/internal/store"
	"github.com/MKhiriev/go-pair-link/models"
)

// Diff returns the changes that turn cached into current. Only properties
// carrying an update timestamp take part:
//   - a property missing from cached, or newer in current, is included in full;
//   - a property of cached that is gone from current is included as nil.
//
// An empty, non-nil map means nothing changed.
func Diff(cached, current models.Properties) models.Changes {
	changes := make(models.Changes)

	for name, prop := range current {
		if !prop.Synced() {
			continue
		}
		old, ok := cached[name]
		if ok && prop.UpdateAt <= old.UpdateAt {
			continue
		}
		p := prop.Clone()
		changes[name] = &p
	}

	for name, old := range cached {
		if !old.Synced() {
			continue
		}
		if _, ok := current[name]; !ok {
			changes[name] = nil
		}
	}

	return changes
}

// Timestamps collects key -> property -> UpdateAt for every key of st,
// omitting properties without a timestamp. It is the body of a sync-at-connect
// request.
func Timestamps(st store.StateStore) (map[string]map[string]int64, error) {
	out := make(map[string]map[string]int64, len(st.Keys()))
	for _, key := range st.Keys() {
		props, err := st.Get(key)
		if err != nil {
			return nil, err
		}
		out[key] = props.Timestamps()
	}
	return out, nil
}

// ReconcileReply answers a peer's sync-at-connect snapshot for one key.
//
// For every property the peer reported, the reply carries the local value
// when it is strictly newer and nil when the property does not exist locally.
// Properties the peer never mentioned are sent in full. Ties and older local
// values are omitted.
func ReconcileReply(local models.Properties, remote map[string]int64) models.Changes {
	reply := make(models.Changes)

	for name, remoteAt := range remote {
		prop, ok := local[name]
		if !ok || !prop.Synced() {
			reply[name] = nil
			continue
		}
		if prop.UpdateAt > remoteAt {
			p := prop.Clone()
			reply[name] = &p
		}
	}

	for name, prop := range local {
		if !prop.Synced() {
			continue
		}
		if _, mentioned := remote[name]; mentioned {
			continue
		}
		p := prop.Clone()
		reply[name] = &p
	}

	return reply
}
