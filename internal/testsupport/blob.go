package testsupport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"audioshare/internal/blob"
)

// MemoryBlob is an in-memory blob.Store used in place of object storage.
type MemoryBlob struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
	putErr  error
}

// NewMemoryBlob returns an empty in-memory blob store.
func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{objects: make(map[string][]byte)}
}

var _ blob.Store = (*MemoryBlob)(nil)

// Put stores the payload under key.
func (m *MemoryBlob) Put(_ context.Context, key string, payload []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = append([]byte(nil), payload...)
	m.puts++
	return nil
}

// SetPutError makes subsequent Put calls fail with err. Pass nil to heal.
func (m *MemoryBlob) SetPutError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putErr = err
}

// PresignGet returns a deterministic fake URL for stored objects.
func (m *MemoryBlob) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return "", fmt.Errorf("%w: %s", blob.ErrNotFound, key)
	}
	return fmt.Sprintf("https://blob.test/%s?ttl=%d", key, int(ttl.Seconds())), nil
}

// Get returns a stored payload and whether it exists.
func (m *MemoryBlob) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.objects[key]
	return payload, ok
}

// Len returns the number of stored objects.
func (m *MemoryBlob) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// PutCount returns the number of Put calls observed.
func (m *MemoryBlob) PutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
