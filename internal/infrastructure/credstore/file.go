// Package credstore provides durable credential record storage. Both
// implementations honor the store contract: the triple is written as one
// logical transaction and cleared as one, so a crash never leaves a partial
// record at rest.
package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vitacare/clinic-ops/internal/core/domain"
)

// FileStore keeps the credential record as a single JSON document on disk,
// the per-workstation analog of browser local storage. Writes go through a
// temp file plus rename, atomic on POSIX filesystems.
type FileStore struct {
	path string
}

// NewFileStore creates a store at path, creating parent directories as
// needed. The file is mode 0600: it holds live tokens.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("credstore: creating directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load reads the persisted record. A missing file means no record; an
// unreadable or partial record is reported as corrupt so the caller can
// discard it.
func (s *FileStore) Load(_ context.Context) (*domain.Credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credstore: reading %s: %w", s.path, err)
	}

	var creds domain.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("credstore: corrupt record in %s: %w", s.path, err)
	}
	return &creds, nil
}

// Save writes the full record atomically.
func (s *FileStore) Save(_ context.Context, creds *domain.Credentials) error {
	if !creds.Complete() {
		return fmt.Errorf("credstore: refusing to persist a partial record")
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("credstore: encoding record: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("credstore: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("credstore: committing %s: %w", s.path, err)
	}
	return nil
}

// Clear removes the record. Clearing an absent record is not an error.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("credstore: removing %s: %w", s.path, err)
	}
	return nil
}
