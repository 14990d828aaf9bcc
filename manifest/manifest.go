// Package manifest records which files an ingestion stored and with which
// content type, in the order they were stored.
package manifest

import (
	"encoding/json"
	"fmt"
)

// Entry is one stored file: its content type and its path relative to the
// ingested root, always slash-separated.
type Entry struct {
	MIME string
	Path string
}

// Manifest is the ordered list of entries produced by one ingestion.
// Order is the order files were stored, not sorted.
type Manifest []Entry

// MarshalJSON encodes the entry as a two-element array: ["text/html","a.html"].
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{e.MIME, e.Path})
}

// UnmarshalJSON decodes a two-element array into the entry.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("manifest: entry: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("manifest: entry must have 2 fields, got %d", len(pair))
	}
	e.MIME, e.Path = pair[0], pair[1]
	return nil
}

// MarshalJSON encodes an empty manifest as [] rather than null.
func (m Manifest) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Entry(m))
}

// Paths returns the relative paths in manifest order.
func (m Manifest) Paths() []string {
	paths := make([]string, len(m))
	for i, e := range m {
		paths[i] = e.Path
	}
	return paths
}

// Builder accumulates entries for one ingestion. It is single use: after
// Finish, further calls to Add or Finish panic.
type Builder struct {
	entries  Manifest
	finished bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{entries: Manifest{}}
}

// Add appends an entry.
func (b *Builder) Add(mime, path string) {
	if b.finished {
		panic("manifest: Add called after Finish")
	}
	b.entries = append(b.entries, Entry{MIME: mime, Path: path})
}

// Len returns the number of entries added so far.
func (b *Builder) Len() int { return len(b.entries) }

// Finish returns the manifest. The builder must not be used afterwards.
func (b *Builder) Finish() Manifest {
	if b.finished {
		panic("manifest: Finish called twice")
	}
	b.finished = true
	m := b.entries
	b.entries = nil
	return m
}
