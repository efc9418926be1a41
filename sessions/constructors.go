package sessions

import (
	"context"
	"time"

	"github.com/Desarso/fitcoach/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Option customizes a Conversation.
type Option func(*Conversation)

func WithID(id string) Option {
	return func(c *Conversation) { c.ID = id }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Conversation) { c.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(c *Conversation) { c.now = now }
}

// WithObserver subscribes obs before the greeting is appended.
func WithObserver(obs Observer) Option {
	return func(c *Conversation) {
		c.observers[c.nextObs] = obs
		c.nextObs++
	}
}

// WithContext sets the parent of the context every dispatch runs under.
func WithContext(ctx context.Context) Option {
	return func(c *Conversation) { c.ctx = ctx }
}

// NewConversation creates a conversation seeded with the greeting turn. The
// greeting is shown but never sent to the model.
func NewConversation(profile *models.Profile, dispatcher Dispatcher, opts ...Option) *Conversation {
	c := &Conversation{
		ID:         uuid.NewString(),
		profile:    profile,
		dispatcher: dispatcher,
		observers:  map[int]Observer{},
		logger:     zap.NewNop(),
		now:        time.Now,
		ctx:        context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(c.ctx)
	c.logger = c.logger.With(zap.String("conversation", c.ID))
	c.CreatedAt = c.now()

	if profile != nil {
		greeting := c.newTurn(models.RoleModel, Greeting(profile), false)
		c.turns = append(c.turns, greeting)
		notify(c.observerList(), c.turnFrame(greeting))
	}
	return c
}
