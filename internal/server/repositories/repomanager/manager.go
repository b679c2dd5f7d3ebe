// Package repomanager opens the configured credential store and vends its
// repositories. PostgreSQL, MongoDB and in-memory backends are supported.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/culturehub/internal/server/config"
	"github.com/dmitrijs2005/culturehub/internal/server/repositories/users"
)

// RepositoryManager owns a storage connection and the repositories built on it.
type RepositoryManager interface {
	// RunMigrations brings the schema (or indexes) up to date.
	RunMigrations(ctx context.Context) error
	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
	Users() users.Repository
	Close(ctx context.Context) error
}

// New opens the backend selected by cfg.Storage. Migrations are not run.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepositoryManager(db), nil
	case config.StorageMongo:
		m, err := OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.StorageMemory:
		return NewInMemoryRepositoryManager(), nil
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}
