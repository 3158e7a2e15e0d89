package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// FileInfo contains metadata about a stored object.
type FileInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
}

// Storage is the object store used for recording archives.
type Storage interface {
	// Upload writes data from reader to the given key.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Download returns a reader for the object. The caller closes it.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the object exists.
	Exists(ctx context.Context, key string) (bool, error)

	// List returns all objects whose key starts with prefix, sorted by key.
	List(ctx context.Context, prefix string) ([]FileInfo, error)
}

// UploadFile copies the file at path into s under key.
func UploadFile(ctx context.Context, s Storage, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("storage: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle
	return s.Upload(ctx, key, f)
}
