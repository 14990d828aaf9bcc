package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/artifactstore/contenttype"
	"github.com/kbukum/artifactstore/errors"
	"github.com/kbukum/artifactstore/logger"
	"github.com/kbukum/artifactstore/manifest"
	"github.com/kbukum/artifactstore/observability"
)

// Writer is the write half of a Backend. Both Store and any Backend
// satisfy it.
type Writer interface {
	Put(ctx context.Context, b *Blob) error
}

// Ingestor stores a directory tree one file at a time.
type Ingestor struct {
	w   Writer
	fs  afero.Fs
	log *logger.Logger
}

// NewIngestor creates an ingestor writing to w and reading from fs.
func NewIngestor(w Writer, fs afero.Fs, log *logger.Logger) *Ingestor {
	return &Ingestor{w: w, fs: fs, log: log.WithComponent("ingest")}
}

// StoreAll walks root and stores every regular file at
// path.Join(prefix, rel), where rel is the file's slash-separated path
// relative to root. root itself must resolve to a directory and is
// followed once if it is a symlink. Below root, entries are visited in
// lexical order per directory, symlinks are not followed, and anything that
// is not a regular file is skipped.
//
// The first walk, read or write error aborts the ingestion and no manifest
// is returned. Blobs stored before the failure remain stored. Context
// cancellation is checked before each file.
func (in *Ingestor) StoreAll(ctx context.Context, root, prefix string) (manifest.Manifest, error) {
	runID := uuid.NewString()
	log := in.log.WithFields(logger.Fields(logger.FieldRunID, runID))

	ctx, span := observability.StartSpan(ctx, observability.SpanStoreAll)
	defer span.End()
	span.SetAttributes(
		attribute.String(observability.AttrRoot, root),
		attribute.String(observability.AttrPrefix, prefix),
		attribute.String(observability.AttrRunID, runID),
	)

	start := time.Now()
	log.Info("ingestion started", logger.Fields("root", root, logger.FieldPrefix, prefix))

	builder := manifest.NewBuilder()
	walkRoot, err := resolveRoot(in.fs, root)
	if err == nil {
		err = afero.Walk(in.fs, walkRoot, in.visit(ctx, log, walkRoot, prefix, builder))
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
		log.Error("ingestion aborted", logger.MergeWithError(logger.Fields(
			logger.FieldCount, builder.Len(),
		), err))
		return nil, err
	}

	m := builder.Finish()
	span.SetAttributes(attribute.Int(observability.AttrCount, len(m)))
	log.Info("ingestion finished", logger.Fields(
		logger.FieldCount, len(m),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return m, nil
}

// resolveRoot stats root through any symlink and requires a directory.
// A symlinked root gets a trailing separator so Walk's lstat follows it.
func resolveRoot(fs afero.Fs, root string) (string, error) {
	info, err := fs.Stat(root)
	if err != nil {
		return "", errors.WalkFailed(root, err)
	}
	if !info.IsDir() {
		return "", errors.WalkFailed(root, fmt.Errorf("%s is not a directory", root))
	}
	if l, ok := fs.(afero.Lstater); ok {
		if li, _, err := l.LstatIfPossible(root); err == nil && li.Mode()&os.ModeSymlink != 0 {
			return root + string(filepath.Separator), nil
		}
	}
	return root, nil
}

// visit stores one walked entry.
func (in *Ingestor) visit(ctx context.Context, log *logger.Logger, root, prefix string, builder *manifest.Builder) filepath.WalkFunc {
	return func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return errors.WalkFailed(p, walkErr)
		}
		if info.IsDir() {
			return nil
		}
		if !info.Mode().IsRegular() {
			log.Debug("skipping non-regular file", logger.Fields(logger.FieldPath, p, "mode", info.Mode().String()))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return errors.WalkFailed(p, err)
		}
		rel = filepath.ToSlash(rel)

		mime, content, err := contenttype.DetectFile(in.fs, p)
		if err != nil {
			return errors.WriteFailed(rel, err)
		}

		key := path.Join(prefix, rel)
		if err := in.w.Put(ctx, NewBlob(key, content, mime)); err != nil {
			return err
		}
		builder.Add(mime, rel)
		log.Debug("file stored", logger.Fields(logger.FieldPath, key, logger.FieldMIME, mime))
		return nil
	}
}
