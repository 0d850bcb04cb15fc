package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/craftshop/core/internal/domain/entities"
)

// JSONFileStore keeps the whole craft collection in a single JSON file
type JSONFileStore struct {
	path string
}

// NewJSONFileStore creates a store backed by the file at path
func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

// Path returns the backing file path
func (s *JSONFileStore) Path() string {
	return s.path
}

// Load reads and parses the whole collection. A missing or blank file is an
// empty collection.
func (s *JSONFileStore) Load(ctx context.Context) ([]entities.Craft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []entities.Craft{}, nil
		}
		return nil, fmt.Errorf("read crafts file %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []entities.Craft{}, nil
	}

	var crafts []entities.Craft
	if err := json.Unmarshal(data, &crafts); err != nil {
		return nil, fmt.Errorf("parse crafts file %s: %w", s.path, err)
	}

	if crafts == nil {
		crafts = []entities.Craft{}
	}
	return crafts, nil
}

// Save overwrites the file with the full collection, indented by two spaces.
// The write goes through a temp file in the same directory and a rename.
func (s *JSONFileStore) Save(ctx context.Context, crafts []entities.Craft) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if crafts == nil {
		crafts = []entities.Craft{}
	}

	data, err := json.MarshalIndent(crafts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode crafts: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create crafts directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp crafts file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write crafts file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close crafts file: %w", err)
	}
	// Keep the mode of the file being replaced
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod crafts file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace crafts file %s: %w", s.path, err)
	}

	return nil
}
