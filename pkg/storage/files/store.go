// Package files stores uploaded attachments (student photos, school logos)
// under a local uploads directory. Paths persisted in the database are
// URL-style, rooted at /uploads/.
package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const publicPrefix = "/uploads/"

// Store resolves persisted attachment paths against the data directory.
type Store struct {
	root string
}

// NewStore creates the uploads directory if needed and returns a store
// rooted at it.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("uploads root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{root: root}, nil
}

// Resolve maps a persisted /uploads/... path to an absolute filesystem path.
// Paths outside the uploads namespace are rejected.
func (s *Store) Resolve(storedPath string) (string, error) {
	if !strings.HasPrefix(storedPath, publicPrefix) {
		return "", fmt.Errorf("path %q outside uploads namespace", storedPath)
	}
	rel := filepath.Clean(strings.TrimPrefix(storedPath, publicPrefix))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes uploads namespace", storedPath)
	}
	return filepath.Join(s.root, rel), nil
}

// Remove deletes the file behind a persisted path. A file that is already
// gone is not an error; record deletion must never be blocked by a missing
// attachment.
func (s *Store) Remove(storedPath string) error {
	full, err := s.Resolve(storedPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", storedPath, err)
	}
	return nil
}
