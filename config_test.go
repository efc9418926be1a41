package fitcoach

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Desarso/fitcoach/gateway"
	"github.com/Desarso/fitcoach/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "API_KEY", "FITCOACH_DB_TYPE", "FITCOACH_DB_DSN", "FITCOACH_ADDR", "FITCOACH_MAX_HISTORY"} {
		t.Setenv(k, "")
	}
}

func TestParseConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, stores.DefaultSQLitePath, cfg.Store.Connection)
	assert.Equal(t, gateway.DefaultModels(), cfg.Models)
	assert.Equal(t, gateway.DefaultVideoPolicy(), cfg.Video)
	assert.Equal(t, 0, cfg.MaxHistoryExchanges)
	assert.Equal(t, "0 0 6 * * *", cfg.TipSchedule)
	assert.Equal(t, 30*24*time.Hour, cfg.TraceRetention)
	assert.Empty(t, cfg.APIKey)
}

func TestParseConfigYAML(t *testing.T) {
	clearEnv(t)
	data := []byte(`
addr: ":9090"
api_key: yaml-key
store:
  type: postgres
  connection: host=db user=coach dbname=fit
models:
  chat: gemini-custom
video:
  poll_interval: 2s
  max_polls: 10
max_history_exchanges: 6
allow_origins: ["http://localhost:3000"]
`)
	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "yaml-key", cfg.APIKey)
	assert.Equal(t, "postgres", cfg.Store.Type)
	assert.Equal(t, "gemini-custom", cfg.Models.Chat)
	assert.Equal(t, gateway.DefaultModels().Fast, cfg.Models.Fast, "unset models keep their defaults")
	assert.Equal(t, 2*time.Second, cfg.Video.PollInterval)
	assert.Equal(t, 10, cfg.Video.MaxPolls)
	assert.Equal(t, 10*time.Minute, cfg.Video.Timeout)
	assert.Equal(t, 6, cfg.MaxHistoryExchanges)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowOrigins)
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "generic")
	t.Setenv("GEMINI_API_KEY", "gemini")
	t.Setenv("FITCOACH_DB_TYPE", "mysql")
	t.Setenv("FITCOACH_DB_DSN", "coach:pw@tcp(localhost:3306)/fit")
	t.Setenv("FITCOACH_ADDR", "127.0.0.1:7000")
	t.Setenv("FITCOACH_MAX_HISTORY", "4")

	cfg, err := ParseConfig([]byte("api_key: from-file\naddr: \":1\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.APIKey, "GEMINI_API_KEY wins over API_KEY and the file")
	assert.Equal(t, "mysql", cfg.Store.Type)
	assert.Equal(t, "coach:pw@tcp(localhost:3306)/fit", cfg.Store.Connection)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.Equal(t, 4, cfg.MaxHistoryExchanges)
}

func TestParseConfigValidation(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown store", "store:\n  type: mongo\n", "store.type"},
		{"postgres without dsn", "store:\n  type: postgres\n", "store.connection is required"},
		{"negative history", "max_history_exchanges: -1\n", "max_history_exchanges"},
		{"interval beyond timeout", "video:\n  poll_interval: 20m\n  timeout: 1m\n", "poll_interval"},
		{"bad yaml", "addr: [", "config: parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "fitcoach.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":8181\"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":8181", cfg.Addr)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigBuilders(t *testing.T) {
	cfg := NewConfig().
		WithAddr(":1234").
		WithAPIKey("k").
		WithChatModel("m").
		WithMaxHistory(3).
		WithPostgresStore("db", "u", "p", "fit", 5432)

	assert.Equal(t, ":1234", cfg.Addr)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, "m", cfg.Models.Chat)
	assert.Equal(t, 3, cfg.MaxHistoryExchanges)
	assert.Equal(t, "postgres", cfg.Store.Type)
	assert.Contains(t, cfg.Store.Connection, "host=db")

	cfg.WithSQLiteStore("x.sqlite")
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, "x.sqlite", cfg.Store.Connection)

	cfg.WithMySQLStore("dsn")
	assert.Equal(t, "mysql", cfg.Store.Type)

	p := gateway.VideoPolicy{PollInterval: time.Second, MaxPolls: 3, Timeout: time.Minute}
	assert.Equal(t, p, cfg.WithVideoPolicy(p).Video)
}

func TestEnvCredentials(t *testing.T) {
	clearEnv(t)
	ctx := context.Background()

	c := NewEnvCredentials("configured")
	key, err := c.APIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "configured", key)

	t.Setenv("GEMINI_API_KEY", "from-env")
	empty := NewEnvCredentials("")
	key, err = empty.APIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestEnvCredentialsReselectRereadsFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GEMINI_API_KEY=rotated\n"), 0o600))

	c := NewEnvCredentials("stale", envFile, filepath.Join(t.TempDir(), "absent.env"))
	key, err := c.Reselect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rotated", key)

	key, _ = c.APIKey(context.Background())
	assert.Equal(t, "rotated", key)
}

func TestEnvCredentialsReselectPrompts(t *testing.T) {
	clearEnv(t)
	c := NewEnvCredentials("")
	c.Prompt = func(context.Context) (string, error) { return "  typed  ", nil }

	key, err := c.Reselect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "typed", key)
}
