package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// DefaultQuota mirrors the storage budget browsers give one origin.
const DefaultQuota int64 = 5 << 20

var (
	ErrSerialization = errors.New("value cannot be serialized")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// WriteError is returned by every failed write. It carries the key and a message
// that can be shown to the person who triggered the write.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store: write %s: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Hint returns actionable text for the end user
func (e *WriteError) Hint() string {
	switch {
	case errors.Is(e.Err, ErrQuotaExceeded):
		return "Storage is full. Try a smaller image or clear some saved data."
	case errors.Is(e.Err, ErrSerialization):
		return "This data cannot be saved. Check the submitted values and try again."
	default:
		return "Saving failed. Please try again."
	}
}

// Store is the profile-scoped key to JSON value store all repositories go through.
type Store struct {
	backend Backend
	quota   int64
	locks   sync.Map // key -> *sync.Mutex
}

// Option configures a Store
type Option func(*Store)

// WithQuota limits the total size of the profile. Zero disables the check.
func WithQuota(quota int64) Option {
	return func(s *Store) {
		s.quota = quota
	}
}

// New wraps a backend
func New(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewMemory returns a Store over a fresh MemoryBackend with no quota
func NewMemory() *Store {
	return New(NewMemoryBackend())
}

// Backend exposes the underlying backend
func (s *Store) Backend() Backend { return s.backend }

// Read decodes the JSON value at key into dst. It reports false and leaves dst
// untouched when the key is absent.
func (s *Store) Read(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := s.backend.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("store: read %s: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return true, nil
}

// ReadRaw returns the stored bytes at key
func (s *Store) ReadRaw(ctx context.Context, key string) ([]byte, bool, error) {
	raw, found, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("store: read %s: %w", key, err)
	}
	return raw, found, nil
}

// ReadString returns a raw string setting
func (s *Store) ReadString(ctx context.Context, key string) (string, bool, error) {
	raw, found, err := s.ReadRaw(ctx, key)
	if err != nil || !found {
		return "", found, err
	}
	return string(raw), true, nil
}

// Write encodes v as JSON and stores it under key
func (s *Store) Write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &WriteError{Key: key, Err: fmt.Errorf("%w: %v", ErrSerialization, err)}
	}
	return s.WriteRaw(ctx, key, data)
}

// WriteString stores a raw string setting
func (s *Store) WriteString(ctx context.Context, key, value string) error {
	return s.WriteRaw(ctx, key, []byte(value))
}

// WriteRaw stores already serialized bytes, enforcing the quota
func (s *Store) WriteRaw(ctx context.Context, key string, data []byte) error {
	if s.quota > 0 {
		if err := s.checkQuota(ctx, key, data); err != nil {
			return err
		}
	}
	if err := s.backend.Set(ctx, key, data); err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}

func (s *Store) checkQuota(ctx context.Context, key string, data []byte) error {
	usage, err := s.backend.Usage(ctx)
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}
	old, found, err := s.backend.Get(ctx, key)
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}
	if found {
		usage -= int64(len(key) + len(old))
	}
	if usage+int64(len(key)+len(data)) > s.quota {
		return &WriteError{Key: key, Err: ErrQuotaExceeded}
	}
	return nil
}

// Remove deletes key
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("store: remove %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is present
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, found, err := s.ReadRaw(ctx, key)
	return found, err
}

// Keys lists every stored key of the profile
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	return s.backend.Keys(ctx)
}

// Lock serializes read-modify-write sequences on one key within this process and
// returns the unlock function.
func (s *Store) Lock(key string) func() {
	mu, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (s *Store) Close() error {
	return s.backend.Close()
}
