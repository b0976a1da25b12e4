// Package store persists upload session headers so that sessions can be
// rebuilt after a process restart. Only the immutable header is stored;
// the received-set is always reconstructed from chunk enumeration, which
// keeps the durable record tiny and never stale.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no header exists for an upload id.
var ErrNotFound = errors.New("session header not found")

// Header is the durable part of an upload session.
type Header struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	TotalSize   int64     `json:"totalSize"`
	ChunkSize   int64     `json:"chunkSize"`
	TotalChunks int       `json:"totalChunks"`
	Checksum    string    `json:"checksum,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store persists session headers across restarts.
type Store interface {
	// Put stores or replaces the header under its upload id.
	Put(ctx context.Context, header Header) error

	// Get returns the header for id, or ErrNotFound.
	Get(ctx context.Context, id string) (Header, error)

	// Delete removes the header for id. Deleting an unknown id is a no-op.
	Delete(ctx context.Context, id string) error

	// List returns all stored headers in unspecified order.
	List(ctx context.Context) ([]Header, error)

	// Close releases the underlying database.
	Close() error
}
