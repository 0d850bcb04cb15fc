package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/craftshop/core/internal/adapters/repository"
	"github.com/craftshop/core/internal/adapters/uploads"
	"github.com/craftshop/core/internal/application/services"
	"github.com/craftshop/core/internal/application/validation"
	"github.com/craftshop/core/internal/infrastructure/config"
	"github.com/craftshop/core/internal/infrastructure/database"
	"github.com/craftshop/core/internal/infrastructure/logger"
	"github.com/craftshop/core/internal/infrastructure/metrics"
	"github.com/craftshop/core/internal/ports"
)

// app holds the wired collaborators shared by the commands
type app struct {
	cfg     *config.Config
	logger  *logger.Logger
	db      *database.DB
	metrics *metrics.Metrics
	service *services.CraftService
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, logger: appLogger}
	if cfg.Metrics.Enabled {
		a.metrics = metrics.New()
	}

	store, err := a.openStore()
	if err != nil {
		a.Close()
		return nil, err
	}

	uploadStorage, err := openUploads(ctx, cfg.Uploads)
	if err != nil {
		a.Close()
		return nil, err
	}

	validator, err := validation.NewCraftValidator()
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := services.CraftServiceOptions{AssignIDs: cfg.Crafts.AssignIDs}
	if a.metrics != nil {
		opts.Recorder = a.metrics
	}
	a.service = services.NewCraftService(store, uploadStorage, validator, appLogger, opts)

	return a, nil
}

func (a *app) openStore() (ports.CraftStore, error) {
	switch a.cfg.Store.Driver {
	case "json":
		return repository.NewJSONFileStore(a.cfg.Store.Path), nil
	case "memory":
		return repository.NewMemoryStore(), nil
	case "sqlite", "postgres":
		db, err := database.New(a.cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.db = db

		if a.cfg.Store.AutoMigrate {
			if err := migrateUp(db, a.logger); err != nil {
				return nil, err
			}
		}
		return repository.NewSQLStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", a.cfg.Store.Driver)
	}
}

func openUploads(ctx context.Context, cfg config.UploadsConfig) (ports.UploadStorage, error) {
	switch cfg.Driver {
	case "local":
		return uploads.NewLocalStorage(cfg.Dir, cfg.MaxSizeBytes), nil
	case "s3":
		s, err := uploads.NewS3Storage(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 uploads: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported upload driver %q", cfg.Driver)
	}
}

func migrateUp(db *database.DB, appLogger *logger.Logger) error {
	m, err := database.NewMigrator(db)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	changed, err := m.Up()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if changed {
		appLogger.Info("Applied store migrations", "driver", db.Driver())
	}
	return nil
}

// Close releases the database and flushes the logger
func (a *app) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.logger != nil {
		// Sync on stdout returns EINVAL on some platforms
		_ = a.logger.Close()
	}
	return errors.Join(errs...)
}
