package fitcoach

import (
	"context"

	"github.com/Desarso/fitcoach/models"
	"github.com/Desarso/fitcoach/sessions"
	"github.com/gorilla/websocket"
)

// Re-export session types so callers only import the root package
type Conversation = sessions.Conversation
type SocketSession = sessions.SocketSession
type FeatureGate = sessions.FeatureGate
type Profile = models.Profile
type Turn = models.Turn

// NewSocketSession binds conn to a fresh conversation served by the coach's
// gateway. ResetProfile and Close end it along with the HTTP conversations.
func (c *Coach) NewSocketSession(ctx context.Context, conn *websocket.Conn, profile *models.Profile) *SocketSession {
	return c.Sessions.NewSocketSession(ctx, conn, profile)
}

// Gate returns the feature gate named name, creating it on first use.
func (c *Coach) Gate(name string) *FeatureGate {
	return c.Gates.Get(name)
}
