package core

import (
	"encoding/binary"
	"encoding/json"
	"hash/fnv"
	"sort"
	"sync"
)

// Assigns is a thread-safe store for view state that remembers which
// keys changed since the last call to Changed.
type Assigns struct {
	data   map[string]any
	hashes map[string]uint64
	dirty  map[string]struct{}
	mu     sync.RWMutex
}

// NewAssigns creates a new assigns store.
func NewAssigns() *Assigns {
	return &Assigns{
		data:   make(map[string]any),
		hashes: make(map[string]uint64),
		dirty:  make(map[string]struct{}),
	}
}

// Get retrieves a value from the store.
func (a *Assigns) Get(key string) any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.data[key]
}

// GetString retrieves a string value.
func (a *Assigns) GetString(key string) string {
	v, _ := a.Get(key).(string)
	return v
}

// GetInt retrieves an int value.
func (a *Assigns) GetInt(key string) int {
	v, _ := a.Get(key).(int)
	return v
}

// GetBool retrieves a bool value.
func (a *Assigns) GetBool(key string) bool {
	v, _ := a.Get(key).(bool)
	return v
}

// Set stores a value and reports whether it differs from the previous one.
func (a *Assigns) Set(key string, value any) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setLocked(key, value)
}

// SetAll stores several values and reports whether any of them changed.
func (a *Assigns) SetAll(values map[string]any) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	changed := false
	for k, v := range values {
		if a.setLocked(k, v) {
			changed = true
		}
	}
	return changed
}

func (a *Assigns) setLocked(key string, value any) bool {
	h := hashValue(value)
	prev, seen := a.hashes[key]
	a.data[key] = value
	a.hashes[key] = h
	if seen && prev == h {
		return false
	}
	a.dirty[key] = struct{}{}
	return true
}

// Delete removes a value from the store.
func (a *Assigns) Delete(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.data[key]; !ok {
		return
	}
	delete(a.data, key)
	delete(a.hashes, key)
	a.dirty[key] = struct{}{}
}

// Data returns a copy of all data.
func (a *Assigns) Data() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make(map[string]any, len(a.data))
	for k, v := range a.data {
		out[k] = v
	}
	return out
}

// HasChanges returns true if any key changed since the last Changed call.
func (a *Assigns) HasChanges() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.dirty) > 0
}

// Changed returns the sorted keys modified since the previous call and
// clears the change set.
func (a *Assigns) Changed() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	keys := make([]string, 0, len(a.dirty))
	for k := range a.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	a.dirty = make(map[string]struct{})
	return keys
}

// hashValue calculates a fast hash of any value.
func hashValue(v any) uint64 {
	h := fnv.New64a()

	switch val := v.(type) {
	case nil:
		h.Write([]byte{0})
	case string:
		h.Write([]byte(val))
	case int:
		binary.Write(h, binary.LittleEndian, int64(val))
	case int64:
		binary.Write(h, binary.LittleEndian, val)
	case float64:
		binary.Write(h, binary.LittleEndian, val)
	case bool:
		if val {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{2})
		}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.Write([]byte(k))
			binary.Write(h, binary.LittleEndian, hashValue(val[k]))
		}
	default:
		data, _ := json.Marshal(val)
		h.Write(data)
	}

	return h.Sum64()
}
