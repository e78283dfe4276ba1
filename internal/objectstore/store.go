// Package objectstore is the client of the object-storage service that holds
// file blobs. It treats every blob as an opaque byte sequence and has no
// notion of whether the bytes are encrypted.
package objectstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OpaqueContentType is sent for every encrypted blob so the store never
// learns the real type of sensitive content.
const OpaqueContentType = "application/octet-stream"

// Store uploads, downloads and removes blobs by storage path.
type Store interface {
	// Put stores data under path and returns a locator the blob can later be
	// fetched from.
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)

	// Get returns the bytes previously stored under path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Delete removes the blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, path string) error
}

// NewStoragePath returns a unique, collision-free path for a new blob. The
// path contains nothing about the owner or the file.
func NewStoragePath(now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("records/%04d/%02d/%02d/%s", now.Year(), now.Month(), now.Day(), uuid.New())
}
