package storage

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/artifactstore/errors"
)

// Backend persists blobs keyed by path. Implementations live in the
// storage/database, storage/s3 and storage/memory packages.
//
// Each Put is atomic on its own: a failed Put leaves no partial blob, and
// blobs stored by earlier successful calls stay visible. Nothing spans
// several calls.
type Backend interface {
	// Put stores b at b.Path, replacing any existing blob at that path.
	Put(ctx context.Context, b *Blob) error

	// Get returns the blob stored at path, or an error matching
	// ErrNotFound when nothing is stored there.
	Get(ctx context.Context, path string) (*Blob, error)

	// Exists reports whether a blob is stored at path.
	Exists(ctx context.Context, path string) (bool, error)
}

// Closer is implemented by backends that own a connection.
type Closer interface {
	Close() error
}

// ErrNotFound is matched by every error a Backend returns for an absent path.
var ErrNotFound = errors.New(errors.ErrCodeNotFound, "blob not found")

// IsNotFound reports whether err signals an absent blob.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// NotFound returns the absence error for path.
func NotFound(path string) error {
	return errors.NotFound("blob", path)
}
