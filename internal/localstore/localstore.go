// Package localstore provides file-backed key-value persistence for
// structured values, serialized as JSON.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoValue is returned when no value is stored under a key.
var ErrNoValue = errors.New("no value stored for key")

type Store struct {
	rootDir string
}

func NewStore(rootDir string) (*Store, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll > %w", err)
	}
	return &Store{rootDir: rootDir}, nil
}

func (store *Store) filePath(key string) string {
	return filepath.Join(store.rootDir, key+".json")
}

// Set stores a value under the key, overwriting any previous value.
func (store *Store) Set(key string, value any) error {
	contents, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json.Marshal > %w", err)
	}
	if err := os.WriteFile(store.filePath(key), contents, 0o644); err != nil {
		return fmt.Errorf("os.WriteFile > %w", err)
	}
	return nil
}

// Remove deletes the value stored under the key. Removing a missing key is
// not an error.
func (store *Store) Remove(key string) error {
	if err := os.Remove(store.filePath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("os.Remove > %w", err)
	}
	return nil
}

// Exists reports whether a value is stored under the key.
func (store *Store) Exists(key string) bool {
	_, err := os.Stat(store.filePath(key))
	return err == nil
}

// Clear removes every stored value.
func (store *Store) Clear() error {
	entries, err := os.ReadDir(store.rootDir)
	if err != nil {
		return fmt.Errorf("os.ReadDir > %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(store.rootDir, entry.Name())); err != nil {
			return fmt.Errorf("os.Remove > %w", err)
		}
	}
	return nil
}

// Get reads the value stored under the key and decodes it into T.
func Get[T any](store *Store, key string) (T, error) {
	var value T

	contents, err := os.ReadFile(store.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return value, fmt.Errorf("key %q: %w", key, ErrNoValue)
		}
		return value, fmt.Errorf("os.ReadFile > %w", err)
	}
	if err := json.Unmarshal(contents, &value); err != nil {
		return value, fmt.Errorf("json.Unmarshal > %w", err)
	}
	return value, nil
}
