// Package storage holds the backends of the remote document store.
package storage

import (
	"context"
	"fmt"

	"github.com/fatali-fataliyev/budget_planner/internal/auth"
	"github.com/fatali-fataliyev/budget_planner/internal/budget"
	"github.com/fatali-fataliyev/budget_planner/internal/config"
	"github.com/fatali-fataliyev/budget_planner/internal/ledger"
)

type Backend interface {
	auth.Storage
	budget.Storage
	ledger.Storage

	GetStorageType() string
	Close() error
}

var (
	_ Backend = (*InMemoryStorage)(nil)
	_ Backend = (*MySQLStorage)(nil)
	_ Backend = (*GormStorage)(nil)
)

// Open returns the backend selected by cfg.StorageType.
func Open(ctx context.Context, cfg config.Config) (Backend, error) {
	switch cfg.StorageType {
	case config.StorageInMemory:
		return NewInMemoryStorage(), nil
	case config.StorageMySQL:
		db, err := InitMySQL(ctx, cfg.MySQL)
		if err != nil {
			return nil, err
		}
		return NewMySQLStorage(db), nil
	case config.StorageSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.StoragePostgres:
		return OpenPostgres(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}
