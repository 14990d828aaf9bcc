// Package database stores blobs as rows of a relational table and
// registers itself as storage provider "database".
//
// Every Put is a single upsert inside its own transaction, so a failed Put
// never leaves a partial row and earlier Puts stay committed. Content may
// be zstd-compressed; each row records its own compression and a blake3
// checksum that Get verifies.
package database

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/artifactstore/database"
	"github.com/kbukum/artifactstore/database/migration"
	"github.com/kbukum/artifactstore/errors"
	"github.com/kbukum/artifactstore/logger"
	"github.com/kbukum/artifactstore/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func init() {
	storage.RegisterFactory(storage.ProviderDatabase, func(cfg storage.Config, session any, log *logger.Logger) (storage.Backend, error) {
		ctx := context.Background()
		var (
			db    *database.DB
			owned bool
		)
		switch s := session.(type) {
		case nil:
			opened, err := database.Open(ctx, database.Config{
				Driver: cfg.Database.Driver,
				DSN:    cfg.Database.DSN,
			}, log)
			if err != nil {
				return nil, err
			}
			db, owned = opened, true
		case *database.DB:
			db = s
		case *gorm.DB:
			db = database.Wrap(s, log)
		default:
			return nil, errors.InvalidConfig(fmt.Sprintf("database: unsupported session type %T", session))
		}

		b, err := New(ctx, db, Options{
			Table:       cfg.Database.Table,
			Compression: cfg.Database.Compression,
		}, log)
		if err != nil {
			if owned {
				_ = db.Close()
			}
			return nil, err
		}
		b.owned = owned
		return b, nil
	})
}

// Options configures a Backend.
type Options struct {
	// Table holds the blobs. Defaults to storage.DefaultTable.
	Table string
	// Compression applied to new writes: storage.CompressionNone or
	// storage.CompressionZstd.
	Compression string
}

// row is one stored blob.
type row struct {
	Path        string    `gorm:"column:path;primaryKey"`
	MIME        string    `gorm:"column:mime;not null"`
	Content     []byte    `gorm:"column:content"`
	Size        int64     `gorm:"column:size;not null"`
	Compression string    `gorm:"column:compression;not null"`
	Checksum    string    `gorm:"column:checksum;not null"`
	DateUpdated time.Time `gorm:"column:date_updated;not null"`
}

// Backend implements storage.Backend on a GORM database.
type Backend struct {
	db          *database.DB
	table       string
	compression string
	owned       bool
	log         *logger.Logger
	enc         *zstd.Encoder
	dec         *zstd.Decoder
}

var (
	_ storage.Backend = (*Backend)(nil)
	_ storage.Closer  = (*Backend)(nil)
)

// New creates a backend on db and makes sure its table exists. The default
// table is created by the embedded versioned migrations; any other table
// name is created with GORM AutoMigrate. db stays owned by the caller.
func New(ctx context.Context, db *database.DB, opts Options, log *logger.Logger) (*Backend, error) {
	if opts.Table == "" {
		opts.Table = storage.DefaultTable
	}
	if opts.Compression == "" {
		opts.Compression = storage.CompressionNone
	}
	if opts.Compression != storage.CompressionNone && opts.Compression != storage.CompressionZstd {
		return nil, errors.InvalidConfig(fmt.Sprintf("database: unsupported compression %q", opts.Compression))
	}

	b := &Backend{
		db:          db,
		table:       opts.Table,
		compression: opts.Compression,
		log:         log.WithComponent("storage.database"),
	}
	if err := b.ensureSchema(ctx); err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("database: zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("database: zstd decoder: %w", err)
	}
	b.enc, b.dec = enc, dec
	return b, nil
}

func (b *Backend) ensureSchema(ctx context.Context) error {
	if b.table == storage.DefaultTable {
		if err := migration.MigrateUp(b.db.GormDB, migrationsFS, "migrations", migration.SQLite); err != nil {
			return database.FromDatabase(err, "schema", b.table)
		}
		return nil
	}
	if err := b.db.AutoMigrate(ctx, b.table, &row{}); err != nil {
		return database.FromDatabase(err, "schema", b.table)
	}
	return nil
}

// Put upserts the blob in one transaction.
func (b *Backend) Put(ctx context.Context, blob *storage.Blob) error {
	r := row{
		Path:        blob.Path,
		MIME:        blob.MIME,
		Content:     blob.Content,
		Size:        int64(len(blob.Content)),
		Compression: b.compression,
		Checksum:    blob.Checksum(),
		DateUpdated: time.Now().UTC(),
	}
	if b.compression == storage.CompressionZstd {
		r.Content = b.enc.EncodeAll(blob.Content, nil)
	}

	err := b.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.Table(b.table).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			UpdateAll: true,
		}).Create(&r).Error
	})
	if err != nil {
		return errors.WriteFailed(blob.Path, err)
	}
	return nil
}

// Get reads one row and returns its decoded, verified content.
func (b *Backend) Get(ctx context.Context, path string) (*storage.Blob, error) {
	var r row
	err := b.db.WithContext(ctx).Table(b.table).Where("path = ?", path).Take(&r).Error
	if database.IsNotFoundError(err) {
		return nil, storage.NotFound(path)
	}
	if err != nil {
		return nil, database.FromDatabase(err, "blob", path)
	}

	content := r.Content
	switch r.Compression {
	case storage.CompressionNone, "":
	case storage.CompressionZstd:
		if len(r.Content) == 0 {
			break
		}
		content, err = b.dec.DecodeAll(r.Content, nil)
		if err != nil {
			b.log.Error("zstd decode failed", logger.MergeWithError(logger.Fields(logger.FieldPath, path), err))
			return nil, errors.DataCorrupted(path).WithCause(err)
		}
	default:
		return nil, errors.DataCorrupted(path).WithDetail("compression", r.Compression)
	}
	if content == nil {
		content = []byte{}
	}

	if r.Checksum != "" && storage.Checksum(content) != r.Checksum {
		b.log.Error("checksum mismatch", logger.Fields(logger.FieldPath, path))
		return nil, errors.DataCorrupted(path)
	}

	return &storage.Blob{
		Path:         r.Path,
		Content:      content,
		MIME:         r.MIME,
		Size:         int64(len(content)),
		LastModified: r.DateUpdated,
	}, nil
}

// Exists reports whether a row for path exists.
func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	var count int64
	err := b.db.WithContext(ctx).Table(b.table).Where("path = ?", path).Limit(1).Count(&count).Error
	if err != nil {
		return false, database.FromDatabase(err, "blob", path)
	}
	return count > 0, nil
}

// Close releases the decoder and, when the backend opened the database
// itself, the connection.
func (b *Backend) Close() error {
	b.dec.Close()
	_ = b.enc.Close()
	if !b.owned {
		return nil
	}
	return b.db.Close()
}

// DB returns the underlying database.
func (b *Backend) DB() *database.DB { return b.db }
