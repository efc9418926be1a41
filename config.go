package fitcoach

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Desarso/fitcoach/gateway"
	"github.com/Desarso/fitcoach/stores"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultAddr is where the HTTP API listens when nothing else is configured.
const DefaultAddr = ":8080"

// Config holds configuration for the coach service and CLI.
type Config struct {
	Addr   string              `yaml:"addr"`
	APIKey string              `yaml:"api_key"`
	Store  stores.StoreConfig  `yaml:"store"`
	Models gateway.ModelSet    `yaml:"models"`
	Video  gateway.VideoPolicy `yaml:"video"`

	// MaxHistoryExchanges caps the chat context sent upstream. Zero sends all.
	MaxHistoryExchanges int `yaml:"max_history_exchanges"`

	// TipSchedule is the cron spec, with seconds, for the daily tip refresh.
	TipSchedule string `yaml:"tip_schedule"`
	// TraceRetention is how long generation traces are kept.
	TraceRetention time.Duration `yaml:"trace_retention"`
	// AllowOrigins lists CORS origins. Empty allows any origin.
	AllowOrigins []string `yaml:"allow_origins"`
}

// NewConfig creates a configuration with default values
func NewConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadConfig reads a YAML config file from path, applies environment
// overrides and returns a validated Config. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	// Missing .env is fine; the environment may already be populated
	_ = godotenv.Load()

	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return ParseConfig(data)
}

// ParseConfig unmarshals YAML bytes into a validated Config.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if key := envAPIKey(); key != "" {
		c.APIKey = key
	}
	if v := os.Getenv("FITCOACH_DB_TYPE"); v != "" {
		c.Store.Type = v
	}
	if v := os.Getenv("FITCOACH_DB_DSN"); v != "" {
		c.Store.Connection = v
	}
	if v := os.Getenv("FITCOACH_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("FITCOACH_MAX_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxHistoryExchanges = n
		}
	}
}

// applyDefaults fills in default values.
func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Store.Type == "" {
		c.Store.Type = "sqlite"
	}
	if c.Store.Type == "sqlite" && c.Store.Connection == "" {
		c.Store.Connection = stores.DefaultSQLitePath
	}
	if c.Store.Options == nil {
		c.Store.Options = make(map[string]string)
	}
	c.Models = mergeModels(c.Models, gateway.DefaultModels())
	d := gateway.DefaultVideoPolicy()
	if c.Video.PollInterval <= 0 {
		c.Video.PollInterval = d.PollInterval
	}
	if c.Video.MaxPolls <= 0 {
		c.Video.MaxPolls = d.MaxPolls
	}
	if c.Video.Timeout <= 0 {
		c.Video.Timeout = d.Timeout
	}
	if c.TipSchedule == "" {
		c.TipSchedule = "0 0 6 * * *"
	}
	if c.TraceRetention <= 0 {
		c.TraceRetention = 30 * 24 * time.Hour
	}
}

// validate checks that all fields are consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Store.Type {
	case "sqlite", "postgres", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("store.type %q is not one of sqlite, postgres, mysql", c.Store.Type))
	}
	if c.Store.Type != "sqlite" && c.Store.Connection == "" {
		errs = append(errs, "store.connection is required for "+c.Store.Type)
	}
	if c.MaxHistoryExchanges < 0 {
		errs = append(errs, "max_history_exchanges must not be negative")
	}
	if c.Video.PollInterval > c.Video.Timeout {
		errs = append(errs, "video.poll_interval must not exceed video.timeout")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func mergeModels(m, d gateway.ModelSet) gateway.ModelSet {
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return gateway.ModelSet{
		Chat:      pick(m.Chat, d.Chat),
		Fast:      pick(m.Fast, d.Fast),
		MealImage: pick(m.MealImage, d.MealImage),
		ImageEdit: pick(m.ImageEdit, d.ImageEdit),
		Video:     pick(m.Video, d.Video),
		Analysis:  pick(m.Analysis, d.Analysis),
	}
}

// WithAddr sets the HTTP listen address
func (c *Config) WithAddr(addr string) *Config {
	c.Addr = addr
	return c
}

// WithAPIKey sets the Gemini API key
func (c *Config) WithAPIKey(key string) *Config {
	c.APIKey = key
	return c
}

// WithChatModel sets the model used for conversation
func (c *Config) WithChatModel(model string) *Config {
	c.Models.Chat = model
	return c
}

// WithSQLiteStore uses a SQLite database at dbPath
func (c *Config) WithSQLiteStore(dbPath string) *Config {
	c.Store = *stores.NewStoreConfig("sqlite", dbPath)
	return c
}

// WithPostgresStore uses a PostgreSQL database with the given connection parameters
func (c *Config) WithPostgresStore(host, user, password, dbname string, port int) *Config {
	c.Store = *stores.NewStoreConfig("postgres", stores.PostgresDSN(host, user, password, dbname, port))
	return c
}

// WithMySQLStore uses a MySQL database reachable through dsn
func (c *Config) WithMySQLStore(dsn string) *Config {
	c.Store = *stores.NewStoreConfig("mysql", dsn)
	return c
}

// WithMaxHistory caps the conversation context sent upstream
func (c *Config) WithMaxHistory(exchanges int) *Config {
	c.MaxHistoryExchanges = exchanges
	return c
}

// WithVideoPolicy sets the video polling bounds
func (c *Config) WithVideoPolicy(p gateway.VideoPolicy) *Config {
	c.Video = p
	return c
}
