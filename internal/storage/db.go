// Package storage is the key-value layer the wallet record lives in.
// Badger backs it on disk; MemoryDB serves tests and throwaway sessions.
package storage

import "errors"

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("key not found")

// DB is a minimal key-value store. Implementations copy keys and values
// on the way in and out, so callers may reuse their buffers.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	// Delete succeeds when the key is already absent.
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	Close() error
}
