package storage

import (
	"context"
	"time"

	"github.com/spf13/afero"

	"github.com/kbukum/artifactstore/logger"
	"github.com/kbukum/artifactstore/manifest"
	"github.com/kbukum/artifactstore/observability"
)

const instrumentationName = "github.com/kbukum/artifactstore/storage"

// Store is the single entry point to blob storage. It owns exactly one
// Backend, chosen when the Store is built and never re-evaluated.
type Store struct {
	backend  Backend
	provider string
	log      *logger.Logger
	metrics  *observability.StorageMetrics
	fs       afero.Fs
}

// Option configures a Store.
type Option func(*Store)

// WithFs sets the filesystem StoreAll walks. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(s *Store) { s.fs = fs }
}

// New builds a Store for cfg.Provider. session is handed to the provider's
// factory unchanged; see BackendFactory.
func New(cfg Config, session any, log *logger.Logger, opts ...Option) (*Store, error) {
	cfg.ApplyDefaults()
	l := log.WithComponent("storage")

	backend, err := NewBackend(cfg, session, l)
	if err != nil {
		return nil, err
	}

	l.Info("storage initialized", logger.Fields(logger.FieldProvider, cfg.Provider))
	return NewWithBackend(cfg.Provider, backend, log, opts...)
}

// NewWithBackend wraps an already constructed backend.
func NewWithBackend(provider string, backend Backend, log *logger.Logger, opts ...Option) (*Store, error) {
	metrics, err := observability.NewStorageMetrics(observability.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}
	s := &Store{
		backend:  backend,
		provider: provider,
		log:      log.WithComponent("storage"),
		metrics:  metrics,
		fs:       afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Provider returns the name of the active backend.
func (s *Store) Provider() string { return s.provider }

// Backend returns the active backend.
func (s *Store) Backend() Backend { return s.backend }

// Put stores b, replacing any blob already at b.Path. The caller's blob is
// left untouched; the backend receives a copy with the normalized key.
func (s *Store) Put(ctx context.Context, in *Blob) error {
	key, err := NormalizeKey(in.Path)
	if err != nil {
		return err
	}
	cp := *in
	cp.Path = key
	cp.Size = int64(len(cp.Content))
	b := &cp

	start := time.Now()
	err = s.backend.Put(ctx, b)
	outcome := observability.OutcomeOK
	if err != nil {
		outcome = observability.OutcomeError
	}
	s.metrics.RecordPut(ctx, s.provider, outcome, b.Size, time.Since(start))

	if err != nil {
		s.log.Warn("put failed", logger.MergeWithError(logger.Fields(logger.FieldPath, key), err))
		return err
	}
	s.log.Debug("blob stored", logger.Fields(
		logger.FieldPath, key,
		logger.FieldMIME, b.MIME,
		logger.FieldBytes, b.Size,
	))
	return nil
}

// Get returns the blob at path. An absent blob yields an error matching
// ErrNotFound.
func (s *Store) Get(ctx context.Context, path string) (*Blob, error) {
	key, err := NormalizeKey(path)
	if err != nil {
		return nil, err
	}
	b, err := s.backend.Get(ctx, key)
	switch {
	case err == nil:
		s.metrics.RecordGet(ctx, s.provider, observability.OutcomeOK)
	case IsNotFound(err):
		s.metrics.RecordGet(ctx, s.provider, observability.OutcomeNotFound)
	default:
		s.metrics.RecordGet(ctx, s.provider, observability.OutcomeError)
	}
	return b, err
}

// GetBlob is Get with absence reported as ok == false instead of an error.
func (s *Store) GetBlob(ctx context.Context, path string) (*Blob, bool, error) {
	b, err := s.Get(ctx, path)
	if IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Exists reports whether a blob is stored at path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	key, err := NormalizeKey(path)
	if err != nil {
		return false, err
	}
	return s.backend.Exists(ctx, key)
}

// StoreAll ingests every regular file under root, storing each at
// prefix/<relative path>, and returns the manifest. See Ingestor.
func (s *Store) StoreAll(ctx context.Context, root, prefix string) (manifest.Manifest, error) {
	return NewIngestor(s, s.fs, s.log).StoreAll(ctx, root, prefix)
}
