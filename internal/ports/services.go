package ports

import (
	"context"
	"io"

	"github.com/craftshop/core/internal/domain/entities"
)

// CraftService interface for craft management operations
type CraftService interface {
	ListCrafts(ctx context.Context) ([]entities.Craft, error)
	CreateCraft(ctx context.Context, req CreateCraftRequest) (*entities.Craft, error)
	DeleteCraft(ctx context.Context, id int64) error
	ImportCrafts(ctx context.Context, crafts []entities.Craft) (int, error)
	Ping(ctx context.Context) error
}

// CreateCraftRequest carries a creation request before validation. Fields is
// the raw candidate document; only keys the client actually sent are present.
type CreateCraftRequest struct {
	Fields map[string]interface{}
	Upload *Upload
}

// Upload is an attached image file
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// CreateCraftInput is the typed record built once validation has passed
type CreateCraftInput struct {
	Name        string
	Image       string
	Description string
	Supplies    []string
}
