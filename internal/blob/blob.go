package blob

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested object does not exist in the store.
var ErrNotFound = errors.New("blob not found")

// Store is the object storage boundary: opaque byte payloads keyed by name,
// plus time-limited presigned download URLs. Implementations must be safe
// for concurrent use.
type Store interface {
	// Put writes a payload under the given key, overwriting any existing object.
	Put(ctx context.Context, key string, payload []byte, contentType string) error
	// PresignGet issues a time-limited URL for direct client retrieval.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
