package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalArchive stores exports on the local filesystem under a base directory.
type LocalArchive struct {
	basePath string
}

// NewLocalArchive creates the archive directory if needed.
func NewLocalArchive(basePath string) (*LocalArchive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", basePath, err)
	}
	return &LocalArchive{basePath: basePath}, nil
}

// Put writes content under key. Metadata, when given, is written to a
// sidecar file next to the content.
func (a *LocalArchive) Put(ctx context.Context, key string, content []byte, metadata *Metadata) error {
	fullPath := a.keyToPath(key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	if metadata != nil {
		metaBytes, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", key, err)
		}
		if err := os.WriteFile(fullPath+".meta", metaBytes, 0644); err != nil {
			return fmt.Errorf("failed to write metadata for %s: %w", key, err)
		}
	}
	return nil
}

// Get reads the content stored under key.
func (a *LocalArchive) Get(ctx context.Context, key string) ([]byte, error) {
	content, err := os.ReadFile(a.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("not archived: %s", key)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return content, nil
}

// Info returns size, checksum and metadata for a stored export.
func (a *LocalArchive) Info(ctx context.Context, key string) (*FileInfo, error) {
	fullPath := a.keyToPath(key)

	stat, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("not archived: %s", key)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", key, err)
	}

	checksum, err := fileChecksum(fullPath)
	if err != nil {
		return nil, err
	}

	info := &FileInfo{
		Key:        key,
		Size:       stat.Size(),
		Checksum:   checksum,
		ModifiedAt: stat.ModTime(),
	}

	if metaBytes, err := os.ReadFile(fullPath + ".meta"); err == nil {
		var metadata Metadata
		if err := json.Unmarshal(metaBytes, &metadata); err == nil {
			info.Metadata = &metadata
		}
	}
	return info, nil
}

// Exists reports whether anything is stored under key.
func (a *LocalArchive) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(a.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return true, nil
}

// List returns all stored keys under prefix in walk order.
func (a *LocalArchive) List(ctx context.Context, prefix string) ([]string, error) {
	root := a.keyToPath(prefix)
	if stat, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", prefix, err)
	} else if !stat.IsDir() {
		return []string{prefix}, nil
	}

	var keys []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".meta") {
			return nil
		}
		keys = append(keys, a.pathToKey(path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	return keys, nil
}

func (a *LocalArchive) keyToPath(key string) string {
	clean := strings.TrimPrefix(filepath.Clean("/"+key), "/")
	return filepath.Join(a.basePath, clean)
}

func (a *LocalArchive) pathToKey(path string) string {
	rel, err := filepath.Rel(a.basePath, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
