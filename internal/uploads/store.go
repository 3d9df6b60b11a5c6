// Package uploads stores the raw images submitted for diagnosis.
package uploads

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound is returned when the named upload does not exist.
	ErrNotFound = errors.New("upload not found")
	// ErrInvalidName is returned for names that could escape the store.
	ErrInvalidName = errors.New("invalid upload name")
)

// Object describes a stored upload.
type Object struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Store persists uploads by their generated name.
type Store interface {
	// Save writes r under name. size may be -1 when unknown.
	Save(ctx context.Context, name string, r io.Reader, size int64) error
	// Open returns a reader for the named upload or ErrNotFound.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// List returns every stored upload.
	List(ctx context.Context) ([]Object, error)
	// Delete removes the named upload. Deleting a missing upload is not an error.
	Delete(ctx context.Context, name string) error
}
