package sessions

import (
	"context"
	"sync"

	"github.com/Desarso/fitcoach/models"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Registry tracks the live HTTP conversations by ID, plus the conversations
// bound to open WebSockets so they can be torn down together. Conversations
// are kept in memory only; closing one drops its transcript and history.
type Registry struct {
	dispatcher Dispatcher
	logger     *zap.Logger

	mu            sync.RWMutex
	conversations map[string]*Conversation
	sockets       map[string]*Conversation
}

func NewRegistry(dispatcher Dispatcher, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		dispatcher:    dispatcher,
		logger:        logger,
		conversations: make(map[string]*Conversation),
		sockets:       make(map[string]*Conversation),
	}
}

// Create starts a conversation for profile and registers it.
func (r *Registry) Create(profile *models.Profile, opts ...Option) *Conversation {
	opts = append([]Option{WithLogger(r.logger)}, opts...)
	c := NewConversation(profile, r.dispatcher, opts...)

	r.mu.Lock()
	r.conversations[c.ID] = c
	r.mu.Unlock()

	r.logger.Info("Conversation created", zap.String("conversation", c.ID))
	return c
}

// NewSocketSession binds conn to a fresh conversation tracked until its
// session ends. CloseAll drops the connection.
func (r *Registry) NewSocketSession(ctx context.Context, conn *websocket.Conn, profile *models.Profile) *SocketSession {
	s := NewSocketSession(ctx, conn, profile, r.dispatcher, r.logger)
	id := s.Conversation.ID

	r.mu.Lock()
	r.sockets[id] = s.Conversation
	r.mu.Unlock()
	s.release = func() {
		r.mu.Lock()
		delete(r.sockets, id)
		r.mu.Unlock()
	}
	return s
}

func (r *Registry) Get(id string) (*Conversation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conversations[id]
	return c, ok
}

// Close tears down and unregisters a conversation. It reports whether the
// conversation existed.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	c, ok := r.conversations[id]
	delete(r.conversations, id)
	r.mu.Unlock()

	if !ok {
		return false
	}
	c.Close()
	r.logger.Info("Conversation closed", zap.String("conversation", id))
	return true
}

// CloseAll tears down every live conversation, WebSocket ones included.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.conversations
	r.conversations = make(map[string]*Conversation)
	sockets := make([]*Conversation, 0, len(r.sockets))
	for _, c := range r.sockets {
		sockets = append(sockets, c)
	}
	r.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
	for _, c := range sockets {
		c.Close()
	}
}

// IDs lists the live conversation IDs.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.conversations))
	for id := range r.conversations {
		ids = append(ids, id)
	}
	return ids
}

// Sockets counts the conversations bound to open WebSockets.
func (r *Registry) Sockets() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sockets)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conversations)
}
