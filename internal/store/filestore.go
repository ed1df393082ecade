package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps one JSON file per key under a data directory. It is
// the default backend and behaves like the browser's localStorage:
// single-session, whole-value overwrites, last write wins.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the value stored under key into out.
func (s *FileStore) Get(key string, out interface{}) error {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding stored value for %s: %w", key, err)
	}
	return nil
}

// Set replaces the value under key. The write goes to a temp file first
// and is renamed into place, so a crash mid-write never leaves a
// half-overwritten record behind.
func (s *FileStore) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value for %s: %w", key, err)
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

// Delete removes the value under key. Deleting a missing key is a no-op.
func (s *FileStore) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
