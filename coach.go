// Package fitcoach wires the profile store, the generation gateway and the
// live conversation registry into one Coach.
package fitcoach

import (
	"context"
	"errors"
	"fmt"

	"github.com/Desarso/fitcoach/gateway"
	"github.com/Desarso/fitcoach/models"
	"github.com/Desarso/fitcoach/sessions"
	"github.com/Desarso/fitcoach/stores"
	"go.uber.org/zap"
)

// Coach owns everything one running instance needs.
type Coach struct {
	Config   *Config
	Store    stores.Store
	Gateway  *gateway.Gateway
	Sessions *sessions.Registry
	Gates    *sessions.Gates
	Logger   *zap.Logger

	ownsStore bool
}

type coachOptions struct {
	store       stores.Store
	credentials gateway.CredentialSource
	connect     gateway.Connector
	prompt      PromptFunc
}

// CoachOption customizes NewCoach.
type CoachOption func(*coachOptions)

// WithStore uses an already open store. The Coach will not close it.
func WithStore(s stores.Store) CoachOption {
	return func(o *coachOptions) { o.store = s }
}

// WithCredentials replaces the environment-backed credential source.
func WithCredentials(c gateway.CredentialSource) CoachOption {
	return func(o *coachOptions) { o.credentials = c }
}

// WithConnector replaces the Gemini connector.
func WithConnector(c gateway.Connector) CoachOption {
	return func(o *coachOptions) { o.connect = c }
}

// WithKeyPrompt asks the user for a key whenever the current one is rejected.
func WithKeyPrompt(p PromptFunc) CoachOption {
	return func(o *coachOptions) { o.prompt = p }
}

// NewCoach opens the configured store and builds the gateway and registry.
func NewCoach(cfg *Config, logger *zap.Logger, opts ...CoachOption) (*Coach, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var o coachOptions
	for _, opt := range opts {
		opt(&o)
	}

	c := &Coach{Config: cfg, Logger: logger, Gates: sessions.NewGates()}

	c.Store = o.store
	if c.Store == nil {
		storeCfg := cfg.Store
		s, err := stores.NewStore(&storeCfg, logger.Named("store"))
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		c.Store, c.ownsStore = s, true
	}

	creds := o.credentials
	if creds == nil {
		env := NewEnvCredentials(cfg.APIKey)
		env.Prompt = o.prompt
		creds = env
	}
	connect := o.connect
	if connect == nil {
		connect = gateway.GeminiConnector
	}

	gw, err := gateway.New(gateway.Options{
		Credentials:         creds,
		Connect:             connect,
		Models:              cfg.Models,
		Video:               cfg.Video,
		MaxHistoryExchanges: cfg.MaxHistoryExchanges,
		Traces:              c.Store,
		Logger:              logger.Named("gateway"),
	})
	if err != nil {
		c.closeStore()
		return nil, err
	}
	c.Gateway = gw
	c.Sessions = sessions.NewRegistry(gw, logger.Named("sessions"))
	return c, nil
}

// Profile loads the stored profile. stores.ErrProfileNotFound means
// onboarding has not happened yet.
func (c *Coach) Profile(ctx context.Context) (*models.Profile, error) {
	return c.Store.LoadProfile(ctx)
}

// SaveProfile validates and persists p.
func (c *Coach) SaveProfile(ctx context.Context, p *models.Profile) error {
	return c.Store.SaveProfile(ctx, p)
}

// ResetProfile clears the stored profile and ends every live conversation,
// since each one was framed by the old profile.
func (c *Coach) ResetProfile(ctx context.Context) error {
	if err := c.Store.ClearProfile(ctx); err != nil {
		return err
	}
	c.Sessions.CloseAll()
	c.Logger.Info("Profile reset")
	return nil
}

// StartConversation opens a registry conversation for the stored profile.
func (c *Coach) StartConversation(ctx context.Context, opts ...sessions.Option) (*sessions.Conversation, error) {
	p, err := c.Profile(ctx)
	if err != nil {
		return nil, err
	}
	return c.Sessions.Create(p, opts...), nil
}

// Close ends live conversations and closes the store if NewCoach opened it.
func (c *Coach) Close() error {
	c.Sessions.CloseAll()
	return c.closeStore()
}

func (c *Coach) closeStore() error {
	if !c.ownsStore || c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// HasProfile reports whether onboarding has completed.
func (c *Coach) HasProfile(ctx context.Context) (bool, error) {
	_, err := c.Profile(ctx)
	if errors.Is(err, stores.ErrProfileNotFound) {
		return false, nil
	}
	return err == nil, err
}
