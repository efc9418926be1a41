package stores

import (
	"context"
	"errors"

	"github.com/Desarso/fitcoach/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProfileKey is the fixed key the single user profile is stored under.
const ProfileKey = "fitcoach_profile"

// ErrProfileNotFound is returned by LoadProfile before onboarding completes
// or after the profile is cleared.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRecord is one keyed JSON document. Only ProfileKey is used today.
type ProfileRecord struct {
	gorm.Model
	Key     string         `gorm:"column:record_key;uniqueIndex;size:64;not null"`
	Payload datatypes.JSON `gorm:"not null"`
}

// ProfileStore persists the user profile between runs.
type ProfileStore interface {
	LoadProfile(ctx context.Context) (*models.Profile, error)
	SaveProfile(ctx context.Context, p *models.Profile) error
	ClearProfile(ctx context.Context) error
}

// Store is the full persistence surface: profile plus generation traces.
type Store interface {
	ProfileStore
	TraceStore

	// Connection management
	Close() error

	// Health check
	Ping() error
}

// StoreConfig holds configuration for database stores
type StoreConfig struct {
	Type       string            `json:"type" yaml:"type"`             // "sqlite", "postgres", "mysql"
	Connection string            `json:"connection" yaml:"connection"` // path or DSN
	Options    map[string]string `json:"options" yaml:"options"`       // additional options
}

// NewStoreConfig creates a new store configuration
func NewStoreConfig(storeType, connection string) *StoreConfig {
	return &StoreConfig{
		Type:       storeType,
		Connection: connection,
		Options:    make(map[string]string),
	}
}

// WithOption adds an option to the store configuration
func (c *StoreConfig) WithOption(key, value string) *StoreConfig {
	if c.Options == nil {
		c.Options = make(map[string]string)
	}
	c.Options[key] = value
	return c
}
