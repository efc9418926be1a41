package stores

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
)

// DefaultSQLitePath is used when no connection is configured.
const DefaultSQLitePath = "fitcoach.sqlite"

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(config *StoreConfig, logger *zap.Logger) (*GORMStore, error) {
	if config.Type != "sqlite" {
		return nil, fmt.Errorf("invalid store type for SQLite store: %s", config.Type)
	}

	path := config.Connection
	if path == "" {
		path = DefaultSQLitePath
	}
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	return openGORMStore(sqlite.Open(path), "sqlite", config, logger)
}

// NewSQLiteStoreSimple creates a new SQLite store with just a file path
func NewSQLiteStoreSimple(dbPath string) (*GORMStore, error) {
	return NewSQLiteStore(NewStoreConfig("sqlite", dbPath), nil)
}
