package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/Desarso/fitcoach/models"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SocketSession binds one WebSocket connection to one conversation. The
// conversation lives exactly as long as the connection.
type SocketSession struct {
	Conversation *Conversation
	Writer       *WebSocketWriter
	Logger       *zap.Logger

	release func()
}

// NewSocketSession creates a conversation whose every turn and busy change is
// written to conn as a models.SocketFrame, starting with the greeting.
func NewSocketSession(ctx context.Context, conn *websocket.Conn, profile *models.Profile, dispatcher Dispatcher, logger *zap.Logger) *SocketSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	writer := &WebSocketWriter{Conn: conn, Logger: logger, StartTime: time.Now()}
	s := &SocketSession{Writer: writer}

	s.Conversation = NewConversation(profile, dispatcher,
		WithContext(ctx),
		WithLogger(logger),
		WithObserver(func(frame models.SocketFrame) {
			if err := writer.WriteFrame(frame); err != nil {
				logger.Warn("Error writing frame", zap.String("type", frame.Type), zap.Error(err))
			}
		}),
	)
	s.Logger = logger.With(zap.String("conversation", s.Conversation.ID))
	writer.Logger = s.Logger
	return s
}

// Run reads submit frames until the client disconnects, then tears the
// conversation down. If the conversation is closed elsewhere first, the
// connection is closed and Run returns.
func (s *SocketSession) Run() error {
	defer s.Conversation.Close()
	if s.release != nil {
		defer s.release()
	}

	stop := make(chan struct{})
	watching := make(chan struct{})
	go s.closeOnTeardown(stop, watching)
	defer func() {
		close(stop)
		<-watching
	}()

	for {
		var req models.SubmitRequest
		if err := s.Writer.Conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.Logger.Warn("WebSocket error", zap.Error(err))
				return err
			}
			break
		}

		if req.Type != "" && req.Type != "submit" {
			s.Writer.WriteError(s.Conversation.ID, "unsupported frame type: "+req.Type)
			continue
		}

		if _, err := s.Conversation.Submit(req.Text); err != nil {
			switch {
			case errors.Is(err, ErrBlank):
				// Blank submissions are ignored
			case errors.Is(err, ErrBusy):
				s.Writer.WriteError(s.Conversation.ID, "still working on the previous message")
			default:
				s.Writer.WriteError(s.Conversation.ID, err.Error())
			}
		}
	}

	s.Logger.Info("WebSocket session ended", zap.Duration("duration", time.Since(s.Writer.StartTime)))
	return nil
}

func (s *SocketSession) closeOnTeardown(stop <-chan struct{}, watching chan<- struct{}) {
	defer close(watching)
	select {
	case <-s.Conversation.Done():
		s.Logger.Info("Conversation closed, dropping WebSocket")
		_ = s.Writer.WriteClose("conversation closed")
		_ = s.Writer.Conn.Close()
	case <-stop:
	}
}
