package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Desarso/fitcoach/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// GORMStore implements Store on any gorm dialect.
type GORMStore struct {
	db      *gorm.DB
	dialect string
	logger  *zap.Logger
}

func openGORMStore(dialector gorm.Dialector, dialect string, config *StoreConfig, logger *zap.Logger) (*GORMStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	gcfg := &gorm.Config{}
	if config.Options["log_sql"] != "true" {
		gcfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}
	if n, err := strconv.Atoi(config.Options["max_open_conns"]); err == nil && n > 0 {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(n)
		}
	}

	// Auto-migrate the schema
	if err := db.AutoMigrate(&ProfileRecord{}, &GenerationTrace{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	logger.Debug("Store connected", zap.String("dialect", dialect))
	return &GORMStore{db: db, dialect: dialect, logger: logger}, nil
}

// Dialect names the underlying database ("sqlite", "postgres" or "mysql").
func (s *GORMStore) Dialect() string { return s.dialect }

// Close closes the database connection
func (s *GORMStore) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (s *GORMStore) Ping() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// LoadProfile returns the stored profile or ErrProfileNotFound.
func (s *GORMStore) LoadProfile(ctx context.Context) (*models.Profile, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	// Use Find with a limit to avoid "record not found" error logs
	var recs []ProfileRecord
	if err := s.db.WithContext(ctx).Where("record_key = ?", ProfileKey).Limit(1).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if len(recs) == 0 {
		return nil, ErrProfileNotFound
	}

	var p models.Profile
	if err := json.Unmarshal(recs[0].Payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode stored profile: %w", err)
	}
	return &p, nil
}

// SaveProfile validates p and upserts it under ProfileKey.
func (s *GORMStore) SaveProfile(ctx context.Context, p *models.Profile) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	rec := ProfileRecord{Key: ProfileKey, Payload: datatypes.JSON(payload)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.Assignments(map[string]any{"payload": rec.Payload, "updated_at": time.Now()}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	s.logger.Debug("Profile saved", zap.String("name", p.Name))
	return nil
}

// ClearProfile removes the stored profile. Clearing a missing profile is not
// an error.
func (s *GORMStore) ClearProfile(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	// Hard delete so a later save does not collide with a soft-deleted key
	if err := s.db.WithContext(ctx).Unscoped().Where("record_key = ?", ProfileKey).Delete(&ProfileRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear profile: %w", err)
	}
	return nil
}
