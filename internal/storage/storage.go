// Package storage archives uploaded catalog exports so past validation runs
// can be inspected or re-validated later.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"
)

// Metadata describes an archived export.
type Metadata struct {
	OriginalName string    `json:"originalName,omitempty"`
	ContentType  string    `json:"contentType,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt,omitempty"`
	RunID        int64     `json:"runId,omitempty"`
}

// FileInfo describes a stored file without its content.
type FileInfo struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	Checksum   string    `json:"checksum"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Metadata   *Metadata `json:"metadata,omitempty"`
}

// Archive stores and retrieves uploaded exports by key.
type Archive interface {
	Put(ctx context.Context, key string, content []byte, metadata *Metadata) error
	Get(ctx context.Context, key string) ([]byte, error)
	Info(ctx context.Context, key string) (*FileInfo, error)
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Checksum returns the SHA256 digest of content as hex.
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// BuildUploadKey builds the archive key for an uploaded export. The checksum
// prefix keeps re-uploads of the same file on the same day from colliding
// with different files that share a name.
func BuildUploadKey(filename, checksum string, when time.Time) string {
	short := checksum
	if len(short) > 12 {
		short = short[:12]
	}
	return fmt.Sprintf("uploads/%s/%s_%s", when.Format("2006-01-02"), short, filepath.Base(filename))
}
