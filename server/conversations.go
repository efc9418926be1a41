package server

import (
	"net/http"

	"github.com/Desarso/fitcoach/models"
	"github.com/Desarso/fitcoach/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) conversation(c *gin.Context) (*sessions.Conversation, bool) {
	conv, ok := s.coach.Sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return nil, false
	}
	return conv, true
}

func (s *Server) createConversation(c *gin.Context) {
	conv, err := s.coach.StartConversation(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, conv.Snapshot())
}

func (s *Server) getConversation(c *gin.Context) {
	conv, ok := s.conversation(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, conv.Snapshot())
}

// postMessage submits text and waits for the exchange to resolve. If the
// client goes away first the exchange still completes in the background.
func (s *Server) postMessage(c *gin.Context) {
	conv, ok := s.conversation(c)
	if !ok {
		return
	}
	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resolved, err := conv.Submit(req.Text)
	if err != nil {
		s.fail(c, err)
		return
	}

	select {
	case turn := <-resolved:
		c.JSON(http.StatusOK, gin.H{"turn": turn, "conversation": conv.Snapshot()})
	case <-c.Request.Context().Done():
		s.logger.Debug("Client left before the reply", zap.String("conversation", conv.ID))
	}
}

func (s *Server) deleteConversation(c *gin.Context) {
	if !s.coach.Sessions.Close(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// conversationSocket upgrades to a WebSocket bound to a fresh conversation
// that lives as long as the connection.
func (s *Server) conversationSocket(c *gin.Context) {
	p, ok := s.profile(c)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	session := s.coach.NewSocketSession(c.Request.Context(), conn, p)
	if err := session.Run(); err != nil {
		s.logger.Debug("WebSocket session closed with error", zap.Error(err))
	}
}
