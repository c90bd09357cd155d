// Package persist provides durable client-side state that survives process
// restarts: the Go analog of the browser's local storage. Writes are
// fire-and-forget from the caller's point of view; a failed write costs at
// most the in-memory state of the current run.
package persist

import "errors"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("persist: store closed")

// KV is a minimal durable key/value store.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) ([]byte, bool, error)

	// Put stores value under key, replacing any previous value.
	Put(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases the underlying resources.
	Close() error
}

// Memory is an in-process KV for tests and ephemeral sessions.
type Memory struct {
	m map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

func (s *Memory) Get(key string) ([]byte, bool, error) {
	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Memory) Put(key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	s.m[key] = v
	return nil
}

func (s *Memory) Delete(key string) error {
	delete(s.m, key)
	return nil
}

func (s *Memory) Close() error { return nil }
