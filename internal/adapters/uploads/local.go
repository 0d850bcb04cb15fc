package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/craftshop/core/internal/domain/entities"
)

// PublicPrefix is the URL path segment local uploads are served under. Stored
// paths are "<PublicPrefix>/<name>" whatever the directory on disk.
const PublicPrefix = "uploads"

// LocalStorage writes uploads into a directory on the local filesystem
type LocalStorage struct {
	dir     string
	maxSize int64
}

// NewLocalStorage creates a storage rooted at dir. maxSize <= 0 disables the cap.
func NewLocalStorage(dir string, maxSize int64) *LocalStorage {
	return &LocalStorage{dir: dir, maxSize: maxSize}
}

// Dir returns the upload directory
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Save writes r to <dir>/<uuid>-<filename> and returns "uploads/<uuid>-<filename>"
func (s *LocalStorage) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	name, err := storedName(filename)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload %s: %w", path, err)
	}

	if _, err := io.Copy(f, newCapReader(r, s.maxSize)); err != nil {
		f.Close()
		os.Remove(path)
		if errors.Is(err, entities.ErrUploadTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write upload %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload %s: %w", path, err)
	}

	return PublicPrefix + "/" + name, nil
}

// Delete removes an upload by the path Save returned. Anything else is rejected.
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, ok := strings.CutPrefix(path, PublicPrefix+"/")
	if !ok || name == "" || name == "." || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q is not a stored upload", entities.ErrInvalidFilename, path)
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", entities.ErrUploadNotFound, path)
		}
		return fmt.Errorf("remove upload %s: %w", path, err)
	}

	return nil
}
