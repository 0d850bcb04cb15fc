package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/craftshop/core/internal/application/validation"
	"github.com/craftshop/core/internal/domain/entities"
	"github.com/craftshop/core/internal/infrastructure/logger"
	"github.com/craftshop/core/internal/ports"
)

// Recorder receives domain events for metrics
type Recorder interface {
	CraftCreated()
	CraftDeleted()
	StoreError(operation string)
}

type nopRecorder struct{}

func (nopRecorder) CraftCreated()     {}
func (nopRecorder) CraftDeleted()     {}
func (nopRecorder) StoreError(string) {}

// CraftServiceOptions tunes optional behavior of the craft service
type CraftServiceOptions struct {
	// AssignIDs gives newly created crafts max(id)+1
	AssignIDs bool
	Recorder  Recorder
}

// CraftService handles craft-related operations. All access to the store goes
// through mu so load-mutate-save sequences never interleave.
type CraftService struct {
	mu        sync.Mutex
	store     ports.CraftStore
	uploads   ports.UploadStorage
	validator *validation.CraftValidator
	logger    *logger.Logger
	recorder  Recorder
	assignIDs bool
}

// NewCraftService creates a new craft service
func NewCraftService(store ports.CraftStore, uploads ports.UploadStorage, validator *validation.CraftValidator, logger *logger.Logger, opts CraftServiceOptions) *CraftService {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &CraftService{
		store:     store,
		uploads:   uploads,
		validator: validator,
		logger:    logger.WithComponent("craft_service"),
		recorder:  recorder,
		assignIDs: opts.AssignIDs,
	}
}

// ListCrafts returns the full collection
func (s *CraftService) ListCrafts(ctx context.Context) ([]entities.Craft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// CreateCraft validates the request, stores the attached image and appends the
// new craft to the collection.
func (s *CraftService) CreateCraft(ctx context.Context, req ports.CreateCraftRequest) (*entities.Craft, error) {
	doc := candidate(req.Fields)

	doc["image"] = ""
	if req.Upload != nil {
		name, err := entities.CleanFilename(req.Upload.Filename)
		if err != nil {
			return nil, err
		}
		doc["image"] = name
	}

	input, err := s.validator.Input(doc)
	if err != nil {
		return nil, err
	}

	if req.Upload != nil {
		stored, err := s.storeUpload(ctx, req.Upload)
		if err != nil {
			return nil, err
		}
		input.Image = stored
	}

	craft, err := s.appendCraft(ctx, input)
	if err != nil {
		if req.Upload != nil {
			if delErr := s.uploads.Delete(context.WithoutCancel(ctx), input.Image); delErr != nil {
				s.logger.WithError(delErr).Warnw("Failed to remove orphaned upload", "path", input.Image)
			}
		}
		return nil, err
	}

	s.recorder.CraftCreated()
	s.logger.LogCraftAction("create", map[string]interface{}{
		"name":  craft.Name,
		"image": craft.Image,
	})

	return craft, nil
}

// DeleteCraft removes the first craft carrying id
func (s *CraftService) DeleteCraft(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	crafts, err := s.load(ctx)
	if err != nil {
		return err
	}

	idx := entities.IndexOf(crafts, id)
	if idx < 0 {
		return entities.ErrCraftNotFound
	}

	crafts = append(crafts[:idx], crafts[idx+1:]...)
	if err := s.save(ctx, crafts); err != nil {
		return err
	}

	s.recorder.CraftDeleted()
	s.logger.LogCraftAction("delete", map[string]interface{}{"id": id})

	return nil
}

// ImportCrafts validates every craft and appends them all in one write
func (s *CraftService) ImportCrafts(ctx context.Context, incoming []entities.Craft) (int, error) {
	for i, craft := range incoming {
		if err := s.validator.ValidateCraft(craft); err != nil {
			return 0, fmt.Errorf("%w: craft %d: %w", entities.ErrInvalidCraftData, i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	crafts, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	for _, craft := range incoming {
		c := craft.Clone()
		if c.ID == nil && s.assignIDs {
			c.ID = entities.Int64Ptr(entities.NextID(crafts))
		}
		crafts = append(crafts, c)
	}

	if err := s.save(ctx, crafts); err != nil {
		return 0, err
	}

	s.logger.LogCraftAction("import", map[string]interface{}{"count": len(incoming)})
	return len(incoming), nil
}

// Ping checks that the store can be read
func (s *CraftService) Ping(ctx context.Context) error {
	_, err := s.ListCrafts(ctx)
	return err
}

func (s *CraftService) appendCraft(ctx context.Context, input *ports.CreateCraftInput) (*entities.Craft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	crafts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	craft := entities.Craft{
		Name:        input.Name,
		Image:       input.Image,
		Description: input.Description,
		Supplies:    input.Supplies,
	}
	if s.assignIDs {
		craft.ID = entities.Int64Ptr(entities.NextID(crafts))
	}

	if err := s.save(ctx, append(crafts, craft)); err != nil {
		return nil, err
	}

	return &craft, nil
}

func (s *CraftService) storeUpload(ctx context.Context, upload *ports.Upload) (string, error) {
	rc, err := upload.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	stored, err := s.uploads.Save(ctx, upload.Filename, rc)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return stored, nil
}

// load and save must be called with mu held
func (s *CraftService) load(ctx context.Context) ([]entities.Craft, error) {
	start := time.Now()
	crafts, err := s.store.Load(ctx)
	s.logger.LogStoreOperation("load", len(crafts), time.Since(start), err)
	if err != nil {
		s.recorder.StoreError("load")
		return nil, fmt.Errorf("load crafts: %w", err)
	}
	return crafts, nil
}

func (s *CraftService) save(ctx context.Context, crafts []entities.Craft) error {
	start := time.Now()
	err := s.store.Save(ctx, crafts)
	s.logger.LogStoreOperation("save", len(crafts), time.Since(start), err)
	if err != nil {
		s.recorder.StoreError("save")
		return fmt.Errorf("save crafts: %w", err)
	}
	return nil
}

// candidate copies the client-settable fields, leaving out anything absent
func candidate(fields map[string]interface{}) map[string]interface{} {
	doc := make(map[string]interface{}, 4)
	for _, key := range []string{"name", "description", "supplies"} {
		if v, ok := fields[key]; ok {
			doc[key] = v
		}
	}
	return doc
}
