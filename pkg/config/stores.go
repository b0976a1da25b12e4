package config

import (
	"context"
	"fmt"

	"github.com/harborml/longshore/pkg/archive"
	"github.com/harborml/longshore/pkg/catalog"
	sessionstore "github.com/harborml/longshore/pkg/upload/store"
)

// CreateCatalog creates a catalog backend from configuration.
func CreateCatalog(ctx context.Context, cfg catalog.Config) (catalog.Catalog, error) {
	switch cfg.Type {
	case catalog.BackendJSONFile, "":
		return catalog.NewJSONFileCatalog(cfg.JSONFile.Path)
	case catalog.BackendSQLite:
		return catalog.NewSQLiteCatalog(cfg.SQLite.Path)
	case catalog.BackendPostgres:
		return catalog.NewPostgresCatalog(ctx, &cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown catalog backend: %s (valid: jsonfile, sqlite, postgres)", cfg.Type)
	}
}

// CreateSessionStore creates the session header store from configuration.
// Returns (nil, nil) when persistence is disabled; the upload service
// treats a nil store as memory-only operation.
func CreateSessionStore(cfg SessionsConfig) (sessionstore.Store, error) {
	if !cfg.Persist {
		return nil, nil
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("session persistence requires path to be set")
	}
	store, err := sessionstore.NewBadgerStore(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return store, nil
}

// CreateArchiveUploader creates the S3 uploader for the archive sink.
// Returns (nil, nil) when archiving is disabled.
func CreateArchiveUploader(ctx context.Context, cfg ArchiveSinkConfig) (*archive.Uploader, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	uploader, err := archive.New(ctx, cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive uploader: %w", err)
	}
	return uploader, nil
}
