// Package gateway dispatches coaching requests to the remote generation API
// and normalizes every result, or failure, into values the caller can render.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Desarso/fitcoach/models"
	"github.com/Desarso/fitcoach/models/gemini"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Backend is the remote generation contract the gateway depends on.
// *gemini.Backend implements it; tests substitute fakes.
type Backend interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
	GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation, config *genai.GetOperationConfig) (*genai.GenerateVideosOperation, error)
}

// CredentialSource supplies the API key and can be asked to select a new one
// when the current key is rejected.
type CredentialSource interface {
	APIKey(ctx context.Context) (string, error)
	Reselect(ctx context.Context) (string, error)
}

// Connector builds a Backend bound to apiKey.
type Connector func(ctx context.Context, apiKey string) (Backend, error)

// GeminiConnector connects to the Gemini API through genai.
func GeminiConnector(ctx context.Context, apiKey string) (Backend, error) {
	b, err := gemini.Connect(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ModelSet names the model used for each capability.
type ModelSet struct {
	Chat      string `yaml:"chat"`
	Fast      string `yaml:"fast"`
	MealImage string `yaml:"meal_image"`
	ImageEdit string `yaml:"image_edit"`
	Video     string `yaml:"video"`
	Analysis  string `yaml:"analysis"`
}

// DefaultModels returns the stock model identifiers.
func DefaultModels() ModelSet {
	return ModelSet{
		Chat:      gemini.ModelChat,
		Fast:      gemini.ModelFast,
		MealImage: gemini.ModelMealImage,
		ImageEdit: gemini.ModelImageEdit,
		Video:     gemini.ModelVideo,
		Analysis:  gemini.ModelAnalysis,
	}
}

func (m ModelSet) withDefaults() ModelSet {
	d := DefaultModels()
	if m.Chat == "" {
		m.Chat = d.Chat
	}
	if m.Fast == "" {
		m.Fast = d.Fast
	}
	if m.MealImage == "" {
		m.MealImage = d.MealImage
	}
	if m.ImageEdit == "" {
		m.ImageEdit = d.ImageEdit
	}
	if m.Video == "" {
		m.Video = d.Video
	}
	if m.Analysis == "" {
		m.Analysis = d.Analysis
	}
	return m
}

// VideoPolicy bounds the submit-then-poll video job.
type VideoPolicy struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxPolls     int           `yaml:"max_polls"`
	Timeout      time.Duration `yaml:"timeout"`
}

// DefaultVideoPolicy polls every 5s for at most 10 minutes.
func DefaultVideoPolicy() VideoPolicy {
	return VideoPolicy{
		PollInterval: 5 * time.Second,
		MaxPolls:     120,
		Timeout:      10 * time.Minute,
	}
}

func (p VideoPolicy) withDefaults() VideoPolicy {
	d := DefaultVideoPolicy()
	if p.PollInterval <= 0 {
		p.PollInterval = d.PollInterval
	}
	if p.MaxPolls <= 0 {
		p.MaxPolls = d.MaxPolls
	}
	if p.Timeout <= 0 {
		p.Timeout = d.Timeout
	}
	return p
}

type Options struct {
	Credentials CredentialSource
	Connect     Connector
	Models      ModelSet
	Video       VideoPolicy
	// MaxHistoryExchanges caps the chat context to the most recent exchanges.
	// Zero sends the full running history.
	MaxHistoryExchanges int
	Traces              TraceSink
	Logger              *zap.Logger

	// After replaces time.After in the video poll loop.
	After func(time.Duration) <-chan time.Time
}

type Gateway struct {
	mu      sync.RWMutex
	backend Backend
	apiKey  string

	creds      CredentialSource
	connect    Connector
	models     ModelSet
	video      VideoPolicy
	maxHistory int
	traces     TraceSink
	logger     *zap.Logger
	after      func(time.Duration) <-chan time.Time
	now        func() time.Time
}

// New builds a Gateway. The backend is connected lazily on first use so a
// missing key can be selected interactively at that point.
func New(opts Options) (*Gateway, error) {
	if opts.Credentials == nil {
		return nil, fmt.Errorf("gateway: credential source is required")
	}
	if opts.Connect == nil {
		return nil, fmt.Errorf("gateway: connector is required")
	}
	g := &Gateway{
		creds:      opts.Credentials,
		connect:    opts.Connect,
		models:     opts.Models.withDefaults(),
		video:      opts.Video.withDefaults(),
		maxHistory: opts.MaxHistoryExchanges,
		traces:     opts.Traces,
		logger:     opts.Logger,
		after:      opts.After,
		now:        time.Now,
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	if g.after == nil {
		g.after = time.After
	}
	return g, nil
}

// Models returns the resolved model identifiers.
func (g *Gateway) Models() ModelSet { return g.models }

// current returns the connected backend, selecting a credential first when
// none has been chosen yet.
func (g *Gateway) current(ctx context.Context) (Backend, string, error) {
	g.mu.RLock()
	backend, key := g.backend, g.apiKey
	g.mu.RUnlock()
	if backend != nil {
		return backend, key, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.backend != nil {
		return g.backend, g.apiKey, nil
	}

	key, err := g.creds.APIKey(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("read API key: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		g.logger.Info("No API key selected, requesting one")
		if key, err = g.creds.Reselect(ctx); err != nil {
			return nil, "", fmt.Errorf("select API key: %w", err)
		}
		if strings.TrimSpace(key) == "" {
			return nil, "", ErrNoCredential
		}
	}
	backend, err = g.connect(ctx, key)
	if err != nil {
		return nil, "", err
	}
	g.backend, g.apiKey = backend, key
	return backend, key, nil
}

// reauthenticate asks the credential source for a new key and rebinds the
// backend to it.
func (g *Gateway) reauthenticate(ctx context.Context) (Backend, string, error) {
	key, err := g.creds.Reselect(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("reselect API key: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return nil, "", ErrNoCredential
	}
	backend, err := g.connect(ctx, key)
	if err != nil {
		return nil, "", err
	}

	g.mu.Lock()
	g.backend, g.apiKey = backend, key
	g.mu.Unlock()
	return backend, key, nil
}

// call runs fn against the current backend. Errors and panics come back as
// *GenerationError, and every call leaves a trace.
func (g *Gateway) call(ctx context.Context, op string, mode models.Mode, model string, details map[string]any, fn func(Backend) error) (err error) {
	start := g.now()
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Generation panicked", zap.String("op", op), zap.Any("panic", r))
			err = &GenerationError{Op: op, Mode: mode, Err: fmt.Errorf("panic: %v", r)}
		}
		g.record(op, mode, model, start, details, err)
	}()

	backend, _, err := g.current(ctx)
	if err != nil {
		return &GenerationError{Op: op, Mode: mode, Err: err}
	}
	if err := fn(backend); err != nil {
		g.logger.Warn("Generation failed", zap.String("op", op), zap.String("model", model), zap.Error(err))
		return &GenerationError{Op: op, Mode: mode, Err: err}
	}
	return nil
}
