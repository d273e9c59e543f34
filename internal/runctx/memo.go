package runctx

import "sync"

// Memo is a mutable scratch map scoped to a single Context. Two concurrently
// running invocations must never share one; each NewContext gets its own
// instance.
type Memo struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemo creates an empty Memo.
func NewMemo() *Memo {
	return &Memo{
		values: make(map[string]any),
	}
}

// Set stores a value.
func (m *Memo) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Get retrieves a value.
func (m *Memo) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.values[key]
	return val, ok
}

// GetString retrieves a string value, returning "" when absent or of another
// type.
func (m *Memo) GetString(key string) string {
	if val, ok := m.Get(key); ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

// Keys returns the stored keys in unspecified order.
func (m *Memo) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of stored values.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
