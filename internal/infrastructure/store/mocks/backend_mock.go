package mocks

import (
	"context"
	"sort"
	"sync"
)

// MockBackend is an in-memory store.Backend that records writes and can be told to fail
type MockBackend struct {
	mu   sync.RWMutex
	data map[string][]byte

	// For tracking calls in tests
	SetCalls    []SetCall
	DeleteCalls []string
	SetErr      error
	GetErr      error
	UsageErr    error
	SetCallback func(ctx context.Context, key string, value []byte) error
}

// SetCall records parameters passed to Set
type SetCall struct {
	Key   string
	Value []byte
}

// NewMockBackend creates a new MockBackend
func NewMockBackend() *MockBackend {
	return &MockBackend{
		data:     make(map[string][]byte),
		SetCalls: make([]SetCall, 0),
	}
}

// Get returns the stored value
func (m *MockBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Set records the call and stores the value unless SetErr is set
func (m *MockBackend) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Record the call
	m.SetCalls = append(m.SetCalls, SetCall{Key: key, Value: append([]byte(nil), value...)})

	// Use callback if provided
	if m.SetCallback != nil {
		if err := m.SetCallback(ctx, key, value); err != nil {
			return err
		}
	}

	// Return error if set
	if m.SetErr != nil {
		return m.SetErr
	}

	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes a key
func (m *MockBackend) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, key)
	delete(m.data, key)
	return nil
}

// Keys lists stored keys
func (m *MockBackend) Keys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Usage sums key and value lengths
func (m *MockBackend) Usage(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.UsageErr != nil {
		return 0, m.UsageErr
	}
	var total int64
	for key, value := range m.data {
		total += int64(len(key) + len(value))
	}
	return total, nil
}

func (m *MockBackend) Close() error { return nil }

// Put stores a raw value directly for testing, without recording a call
func (m *MockBackend) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = []byte(value)
}

// Raw returns the stored value as a string for assertions
func (m *MockBackend) Raw(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return string(value), ok
}

// SetCallsFor returns the recorded writes to key
func (m *MockBackend) SetCallsFor(key string) []SetCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var calls []SetCall
	for _, call := range m.SetCalls {
		if call.Key == key {
			calls = append(calls, call)
		}
	}
	return calls
}

// Reset clears all data and recorded calls
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	m.SetCalls = make([]SetCall, 0)
	m.DeleteCalls = nil
	m.SetErr = nil
	m.GetErr = nil
	m.UsageErr = nil
	m.SetCallback = nil
}
