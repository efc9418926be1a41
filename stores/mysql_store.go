package stores

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
)

// NewMySQLStore creates a new MySQL store. The DSN should set parseTime=true.
func NewMySQLStore(config *StoreConfig, logger *zap.Logger) (*GORMStore, error) {
	if config.Type != "mysql" {
		return nil, fmt.Errorf("invalid store type for MySQL store: %s", config.Type)
	}
	if config.Connection == "" {
		return nil, fmt.Errorf("mysql store requires a DSN")
	}
	return openGORMStore(mysql.Open(config.Connection), "mysql", config, logger)
}
