// Package objectstore provides blob storage addressed by key. Put returns
// an opaque location reference (a URL or path) that Get later resolves;
// job records carry only these references, never raw storage details.
package objectstore

import (
	"context"
	"errors"
	"io"
)

// ErrNoObject is returned by Get when no blob exists at the location.
var ErrNoObject = errors.New("objectstore: no object")

// Store is external blob storage reachable by reference.
type Store interface {
	// Put stores data under key and returns the location reference.
	Put(ctx context.Context, key string, data []byte) (string, error)

	// Get resolves a location reference to a readable byte stream. The
	// caller owns the stream and must close it.
	Get(ctx context.Context, location string) (io.ReadCloser, error)
}
