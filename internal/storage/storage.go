package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidPath is returned when a storage path escapes the base directory
// or is otherwise malformed.
var ErrInvalidPath = errors.New("invalid storage path")

// ErrFileNotFound is returned when a stored file does not exist.
var ErrFileNotFound = errors.New("file not found")

// Storage defines the interface for file storage operations.
type Storage interface {
	// Save stores a file at the given relative path.
	Save(ctx context.Context, path string, reader io.Reader) error

	// Open retrieves a stored file for reading.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a stored file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// Exists checks whether a file exists at the given path.
	Exists(ctx context.Context, path string) (bool, error)

	// Size returns the size of a stored file in bytes.
	Size(ctx context.Context, path string) (int64, error)
}
