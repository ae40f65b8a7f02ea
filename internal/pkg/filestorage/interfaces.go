package filestorage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when no blob exists at the requested path
var ErrNotFound = errors.New("blob not found")

// BlobStore is an opaque store keyed by slash-separated relative paths
type BlobStore interface {
	// Save writes r under path. When path is already taken a short random
	// suffix is inserted before the extension; the path actually used is
	// returned together with the number of bytes written.
	Save(ctx context.Context, path string, r io.Reader) (storedPath string, written int64, err error)

	// Open returns a reader for the blob at path
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the blob; a missing blob is not an error
	Delete(ctx context.Context, path string) error

	// URL returns the public address of a stored path
	URL(path string) string
}
