package ports

import (
	"context"
	"io"

	"github.com/craftshop/core/internal/domain/entities"
)

// CraftStore defines whole-collection persistence for craft records.
// Implementations never hold state between calls: Load always reads the
// current contents and Save always replaces them.
type CraftStore interface {
	Load(ctx context.Context) ([]entities.Craft, error)
	Save(ctx context.Context, crafts []entities.Craft) error
}

// UploadStorage defines the interface for persisting uploaded images
type UploadStorage interface {
	// Save stores r under a collision-safe name derived from filename and
	// returns the path to embed in the craft record.
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, path string) error
}
