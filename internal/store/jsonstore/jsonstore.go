package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// JSON-backed storage of named records, one file per record under Dir.
// No locking; a single client process owns the directory.

// Store reads and writes named records.
type Store struct {
	Dir string
}

// New returns a store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// DefaultDir is ~/.dropwise unless DROPWISE_HOME says otherwise.
func DefaultDir() (string, error) {
	if d := strings.TrimSpace(os.Getenv("DROPWISE_HOME")); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".dropwise"), nil
}

// Path returns the file backing the record name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.Dir, name+".json")
}

// Load decodes the record into v. It reports false when no record exists.
func (s *Store) Load(name string, v any) (bool, error) {
	b, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read file: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return true, fmt.Errorf("json unmarshal: %w", err)
	}
	return true, nil
}

// Save writes v as the record name, owner-only.
func (s *Store) Save(name string, v any) error {
	// ensure the dir exists with 0700
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp := s.Path(name) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.Path(name)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Remove deletes the record. Missing records are not an error.
func (s *Store) Remove(name string) error {
	if err := os.Remove(s.Path(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}
