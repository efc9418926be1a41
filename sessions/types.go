package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Desarso/fitcoach/models"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrorText is the transcript notice shown when an exchange fails.
const ErrorText = "Sorry, I had trouble connecting to the gym server."

var (
	// ErrBusy rejects a submission while another exchange is in flight.
	ErrBusy = errors.New("conversation is busy")
	// ErrBlank rejects a submission with no visible text.
	ErrBlank = errors.New("message is blank")
	// ErrClosed rejects a submission after teardown.
	ErrClosed = errors.New("conversation is closed")
)

// Dispatcher turns one request into a reply. *gateway.Gateway implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req models.GenerationRequest, history []models.HistoryEntry, profile *models.Profile) (models.Reply, error)
}

// Observer is notified of every appended turn and every busy transition,
// in order, as "turn" and "busy" frames.
type Observer func(frame models.SocketFrame)

// WebSocketWriter handles all WebSocket communication
type WebSocketWriter struct {
	Conn      *websocket.Conn
	Logger    *zap.Logger
	StartTime time.Time
	mu        sync.Mutex
}

func (w *WebSocketWriter) WriteFrame(frame models.SocketFrame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteJSON(frame)
}

func (w *WebSocketWriter) WriteError(conversationID, message string) error {
	return w.WriteFrame(models.SocketFrame{Type: "error", ConversationID: conversationID, Error: message})
}

// WriteClose sends a normal closure control frame.
func (w *WebSocketWriter) WriteClose(reason string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	return w.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
