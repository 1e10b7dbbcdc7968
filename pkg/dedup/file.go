package dedup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore persists batch payloads as FASTA files named by content digest.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir.
// The directory and its parents are created if absent.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file path the key's payload is stored at.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, Digest(key)+".fasta")
}

// Has reports whether the key's file already exists.
func (s *FileStore) Has(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.Path(key))
	if err == nil {
		DedupHits.WithLabelValues("file").Inc()
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		DedupMisses.WithLabelValues("file").Inc()
		return false, nil
	}
	DedupErrors.WithLabelValues("has").Inc()
	return false, fmt.Errorf("stat %s: %w", s.Path(key), err)
}

// Put writes the payload to the key's file. An existing file is kept as is;
// batches are immutable once retrieved.
func (s *FileStore) Put(ctx context.Context, key string, data []byte) error {
	path := s.Path(key)

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		DedupErrors.WithLabelValues("put").Inc()
		return fmt.Errorf("write %s: %w", path, err)
	}

	DedupWrites.WithLabelValues("file").Inc()
	return nil
}
