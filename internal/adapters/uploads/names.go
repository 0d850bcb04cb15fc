// Package uploads stores images attached to craft creation requests.
package uploads

import (
	"io"

	"github.com/google/uuid"

	"github.com/craftshop/core/internal/domain/entities"
)

// storedName prefixes a clean filename with a random UUID
func storedName(filename string) (string, error) {
	name, err := entities.CleanFilename(filename)
	if err != nil {
		return "", err
	}
	return uuid.NewString() + "-" + name, nil
}

// capReader fails with ErrUploadTooLarge once more than max bytes are read
type capReader struct {
	r   io.Reader
	max int64
	n   int64
}

func newCapReader(r io.Reader, max int64) *capReader {
	return &capReader{r: r, max: max}
}

func (c *capReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.max > 0 && c.n > c.max {
		return n, entities.ErrUploadTooLarge
	}
	return n, err
}
