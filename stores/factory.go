package stores

import (
	"fmt"

	"go.uber.org/zap"
)

// NewStore creates a new store based on the configuration
func NewStore(config *StoreConfig, logger *zap.Logger) (Store, error) {
	if config == nil {
		config = NewStoreConfig("sqlite", DefaultSQLitePath)
	}
	switch config.Type {
	case "", "sqlite":
		config.Type = "sqlite"
		return NewSQLiteStore(config, logger)
	case "postgres":
		return NewPostgresStore(config, logger)
	case "mysql":
		return NewMySQLStore(config, logger)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}
