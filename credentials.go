package fitcoach

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// envAPIKey returns the Gemini key from the environment. GEMINI_API_KEY wins
// over the generic API_KEY.
func envAPIKey() string {
	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv("API_KEY"))
}

// PromptFunc asks the user for a new API key.
type PromptFunc func(ctx context.Context) (string, error)

// EnvCredentials supplies the API key from configuration or the environment.
// Reselect asks Prompt when set, otherwise it re-reads the env files so a key
// rotated on disk is picked up without a restart.
type EnvCredentials struct {
	Files  []string
	Prompt PromptFunc

	mu  sync.Mutex
	key string
}

// NewEnvCredentials seeds the source with key, which may be empty.
func NewEnvCredentials(key string, files ...string) *EnvCredentials {
	return &EnvCredentials{key: strings.TrimSpace(key), Files: files}
}

func (c *EnvCredentials) APIKey(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key != "" {
		return c.key, nil
	}
	return envAPIKey(), nil
}

func (c *EnvCredentials) Reselect(ctx context.Context) (string, error) {
	if c.Prompt != nil {
		key, err := c.Prompt(ctx)
		if err != nil {
			return "", err
		}
		c.set(key)
		return strings.TrimSpace(key), nil
	}

	files := c.Files
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Overload(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	key := envAPIKey()
	c.set(key)
	return key, nil
}

func (c *EnvCredentials) set(key string) {
	c.mu.Lock()
	c.key = strings.TrimSpace(key)
	c.mu.Unlock()
}
