package storage

import (
	"encoding/hex"
	"path"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/kbukum/artifactstore/errors"
)

// Blob is one stored artifact.
type Blob struct {
	// Path is the slash-separated storage key; see NormalizeKey.
	Path string
	// Content is the full payload.
	Content []byte
	// MIME is the content type recorded at write time.
	MIME string
	// Size is len(Content). Backends fill it on Get.
	Size int64
	// LastModified is set by the backend on Get; ignored on Put.
	LastModified time.Time
}

// NewBlob builds a blob for key with its size filled in.
func NewBlob(key string, content []byte, mime string) *Blob {
	return &Blob{Path: key, Content: content, MIME: mime, Size: int64(len(content))}
}

// Checksum returns the hex blake3 digest of the blob's content.
func (b *Blob) Checksum() string {
	return Checksum(b.Content)
}

// Checksum returns the hex blake3 digest of content.
func Checksum(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// NormalizeKey cleans a storage key. Keys are slash-separated and relative:
// a leading slash is dropped, "." segments and duplicate slashes collapse,
// and any key that is empty, contains a backslash or escapes upward with
// ".." is rejected with an INVALID_INPUT error.
func NormalizeKey(key string) (string, error) {
	if strings.ContainsRune(key, '\\') {
		return "", errors.InvalidInput("path", "key must use forward slashes: "+key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", errors.InvalidInput("path", "key must not contain '..': "+key)
		}
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+key), "/")
	if cleaned == "" {
		return "", errors.InvalidInput("path", "key is empty")
	}
	return cleaned, nil
}
