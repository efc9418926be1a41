package stores

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
)

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(config *StoreConfig, logger *zap.Logger) (*GORMStore, error) {
	if config.Type != "postgres" {
		return nil, fmt.Errorf("invalid store type for PostgreSQL store: %s", config.Type)
	}
	if config.Connection == "" {
		return nil, fmt.Errorf("postgres store requires a DSN")
	}
	return openGORMStore(postgres.Open(config.Connection), "postgres", config, logger)
}

// NewPostgresStoreSimple creates a new PostgreSQL store with just a DSN
func NewPostgresStoreSimple(dsn string) (*GORMStore, error) {
	return NewPostgresStore(NewStoreConfig("postgres", dsn), nil)
}

// PostgresDSN builds a DSN from its parts.
func PostgresDSN(host, user, password, dbname string, port int) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)
}
