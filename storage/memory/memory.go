// Package memory provides an in-process storage backend registered as
// provider "memory". It keeps blobs in a map and is used by tests and dry
// runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/artifactstore/errors"
	"github.com/kbukum/artifactstore/logger"
	"github.com/kbukum/artifactstore/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderMemory, func(_ storage.Config, session any, _ *logger.Logger) (storage.Backend, error) {
		if session != nil {
			if b, ok := session.(*Backend); ok {
				return b, nil
			}
			return nil, errors.InvalidConfig("memory: session must be *memory.Backend")
		}
		return New(), nil
	})
}

type memBlob struct {
	content []byte
	mime    string
	modTime time.Time
}

// Backend implements storage.Backend with a mutex-guarded map.
type Backend struct {
	mu     sync.RWMutex
	blobs  map[string]*memBlob
	order  []string
	failOn func(path string) error
}

var _ storage.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithFailure makes Put return the error fn produces for a path, if any,
// without storing anything.
func WithFailure(fn func(path string) error) Option {
	return func(b *Backend) { b.failOn = fn }
}

// New creates an empty backend.
func New(opts ...Option) *Backend {
	b := &Backend{blobs: make(map[string]*memBlob)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Put stores a copy of the blob's content.
func (b *Backend) Put(_ context.Context, blob *storage.Blob) error {
	if b.failOn != nil {
		if err := b.failOn(blob.Path); err != nil {
			return errors.WriteFailed(blob.Path, err)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[blob.Path] = &memBlob{
		content: append([]byte(nil), blob.Content...),
		mime:    blob.MIME,
		modTime: time.Now(),
	}
	b.order = append(b.order, blob.Path)
	return nil
}

// Get returns a copy of the stored blob.
func (b *Backend) Get(_ context.Context, path string) (*storage.Blob, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	m, ok := b.blobs[path]
	if !ok {
		return nil, storage.NotFound(path)
	}
	return &storage.Blob{
		Path:         path,
		Content:      append([]byte(nil), m.content...),
		MIME:         m.mime,
		Size:         int64(len(m.content)),
		LastModified: m.modTime,
	}, nil
}

// Exists reports whether path is stored.
func (b *Backend) Exists(_ context.Context, path string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.blobs[path]
	return ok, nil
}

// Len returns the number of stored blobs.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.blobs)
}

// PutOrder returns every successfully stored path in call order,
// including repeats.
func (b *Backend) PutOrder() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.order...)
}

// Reset drops all blobs.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs = make(map[string]*memBlob)
	b.order = nil
}
