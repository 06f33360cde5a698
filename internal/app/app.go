// Package app wires the raidmeter components together: it opens the
// encounter database, brings the schema up to date, and hands out the
// store and uplink services.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/raidmeter/raidmeter/internal/config"
	"github.com/raidmeter/raidmeter/internal/migrate"
	"github.com/raidmeter/raidmeter/internal/store"
	"github.com/raidmeter/raidmeter/internal/uplink"
)

// App holds the wired service components.
type App struct {
	cfg *config.Config

	db     *store.DB
	store  *store.Store
	uplink *uplink.Service
}

// New validates the configuration and creates the application. Nothing
// is opened until Start.
func New(cfg *config.Config) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}
	return &App{cfg: cfg}, nil
}

// Start opens the database and runs the schema migration. The migration
// completes before the store is handed out, so every later call sees the
// current schema.
func (a *App) Start(ctx context.Context) error {
	db, err := store.Open(a.cfg.Database.Path, a.cfg.Database.ReadPoolSize)
	if err != nil {
		return err
	}

	if err := migrate.New(db.Writes()).Run(ctx); err != nil {
		db.Close()
		return err
	}

	a.db = db
	a.store = store.New(db)

	if a.cfg.Uplink.Enabled {
		objects, err := a.openUplink(ctx)
		if err != nil {
			db.Close()
			return err
		}
		a.uplink = uplink.NewService(objects, a.store)
	}

	log.Printf("app: database ready at %s", a.cfg.Database.Path)
	return nil
}

func (a *App) openUplink(ctx context.Context) (uplink.ObjectStore, error) {
	switch a.cfg.Uplink.Storage {
	case "s3":
		return uplink.NewS3Store(ctx, a.cfg.Uplink.S3, a.cfg.Uplink.S3.Bucket)
	default:
		return uplink.NewLocalStore(a.cfg.Uplink.Path)
	}
}

// Store returns the persistence and query surface.
func (a *App) Store() *store.Store {
	return a.store
}

// Uplink returns the uplink service, nil when disabled.
func (a *App) Uplink() *uplink.Service {
	return a.uplink
}

// Close releases the database pools.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
