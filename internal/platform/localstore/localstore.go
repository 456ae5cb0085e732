// Package localstore provides durable key→blob storage on the local
// filesystem, standing in for the browser's local storage. Values are
// plain-text JSON blobs written atomically so a crash never leaves a
// half-written record.
package localstore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// ErrNotFound indicates no record exists for the requested key.
var ErrNotFound = errors.New("localstore: not found")

// ErrInvalidKey indicates the key cannot be mapped to a storage path.
var ErrInvalidKey = errors.New("localstore: invalid key")

const fileMode = 0o600

// Store persists blobs under a base directory, one file per key.
type Store struct {
	dir string
}

// New constructs a Store rooted at dir, creating it when absent.
func New(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("localstore: directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("localstore: create %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Get returns the stored blob for key, or ErrNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("localstore: read %s: %w", key, err)
	}
	return data, nil
}

// Set writes the blob for key atomically, replacing any previous value.
func (s *Store) Set(key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(value)); err != nil {
		return fmt.Errorf("localstore: write %s: %w", key, err)
	}
	// atomic.WriteFile inherits the temp file's mode; tighten it.
	_ = os.Chmod(path, fileMode)
	return nil
}

// Delete removes the record for key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("localstore: delete %s: %w", key, err)
	}
	return nil
}

// path maps a key onto a file inside the base directory. Keys must be simple
// names; anything that would escape the directory is rejected.
func (s *Store) path(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, `/\`) || key != filepath.Base(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}
