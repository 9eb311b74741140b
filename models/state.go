package models

import "encoding/json"

// Property is one synchronizable value inside a state key. UpdateAt is a
// monotonically increasing timestamp; zero means the property carries no
// timestamp and is never synchronized.
type Property struct {
	Value    json.RawMessage `json:"value"`
	UpdateAt int64           `json:"updateAt"`
}

// Clone returns a copy that shares no memory with p.
func (p Property) Clone() Property {
	if p.Value == nil {
		return Property{UpdateAt: p.UpdateAt}
	}
	value := make(json.RawMessage, len(p.Value))
	copy(value, p.Value)
	return Property{Value: value, UpdateAt: p.UpdateAt}
}

// Synced reports whether the property takes part in synchronization.
func (p Property) Synced() bool {
	return p.UpdateAt > 0
}

// Properties is the current value of one state key.
type Properties map[string]Property

// Clone deep-copies the map and every property value.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for name, prop := range p {
		out[name] = prop.Clone()
	}
	return out
}

// Timestamps returns property -> UpdateAt, omitting properties without a
// timestamp.
func (p Properties) Timestamps() map[string]int64 {
	out := make(map[string]int64, len(p))
	for name, prop := range p {
		if prop.Synced() {
			out[name] = prop.UpdateAt
		}
	}
	return out
}

// Changes is a Sync Diff for one state key. A nil entry means the property
// was deleted.
type Changes map[string]*Property

// Clone deep-copies the diff.
func (c Changes) Clone() Changes {
	if c == nil {
		return nil
	}
	out := make(Changes, len(c))
	for name, prop := range c {
		if prop == nil {
			out[name] = nil
			continue
		}
		cp := prop.Clone()
		out[name] = &cp
	}
	return out
}

// Merge copies every entry of newer into c; newer values win per property.
func (c Changes) Merge(newer Changes) {
	for name, prop := range newer {
		c[name] = prop
	}
}

// SyncStatePayload is the body of a SYNC_STATE envelope.
type SyncStatePayload struct {
	Key     string  `json:"key"`
	Changes Changes `json:"changes"`
}

// SyncAtConnectRequest is sent by the side that just connected. Timestamps
// maps state key -> property -> UpdateAt.
type SyncAtConnectRequest struct {
	Role       Role                        `json:"role"`
	Timestamps map[string]map[string]int64 `json:"timestamps"`
}
