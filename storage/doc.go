// Package storage stores generated artifacts as blobs behind one
// interchangeable Backend, and ingests whole directory trees into it.
//
// # Backends
//
//   - storage/database: one row per blob in a relational table (SQLite via GORM)
//   - storage/s3: one object per blob in an S3 or S3-compatible bucket
//   - storage/memory: in-process map, for tests and dry runs
//
// A backend package registers itself when imported. Store wraps the
// backend named by Config.Provider and adds key normalization, logging
// and metrics.
//
// # Configuration
//
//	storage:
//	  provider: "database"
//	  database:
//	    dsn: "artifacts.db"
//	    compression: "zstd"
//
// # Ingestion
//
// Store.StoreAll walks a directory, classifies each file with the
// contenttype package, stores it at prefix/<relative path> and returns
// a manifest.Manifest of (content type, relative path) pairs in the order
// the files were stored. Any failure aborts the run without a manifest;
// each individual Put is atomic, so blobs written before the failure
// remain.
package storage
