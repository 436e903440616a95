package shared

import (
	"context"
	"time"
)

// IdempotencyRecord is what a store knows about one request key.
// A reserved key without a response belongs to a request still in flight.
type IdempotencyRecord struct {
	StatusCode int
	Body       []byte
	Completed  bool
}

// IdempotencyStore remembers request keys so that a retried mutating request
// is answered from the first attempt instead of executing twice
type IdempotencyStore interface {
	// Reserve claims the key for ttl.
	// Returns true if the key was newly claimed, false if it was already present.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete stores the response produced for a reserved key
	Complete(ctx context.Context, key string, record IdempotencyRecord, ttl time.Duration) error

	// Lookup returns the record for the key, or nil if the key is unknown or expired
	Lookup(ctx context.Context, key string) (*IdempotencyRecord, error)

	// Release forgets a reserved key so the request can be retried
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}
