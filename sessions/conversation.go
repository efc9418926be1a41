package sessions

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Desarso/fitcoach/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conversation is the session store for one chat: its transcript, the
// model-visible history and the busy flag. At most one exchange is in flight.
//
// State machine: Idle -> Submitted -> (Success | Failure) -> Idle.
type Conversation struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	emitMu    sync.Mutex // orders observer frames; taken while mu is held
	turns     []models.Turn
	history   []models.HistoryEntry
	busy      bool
	closed    bool
	observers map[int]Observer
	nextObs   int

	profile    *models.Profile
	dispatcher Dispatcher
	logger     *zap.Logger
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Greeting is the opening model turn for profile.
func Greeting(p *models.Profile) string {
	return fmt.Sprintf("Hi %s! I'm your Gemini coach. How can I help you reach your goal to %s today?", p.Name, p.Goal.Words())
}

// Submit appends a user turn and dispatches it. The returned channel yields
// the resolving model turn exactly once, then closes.
// Blank text, a busy conversation and a closed one are rejected without any
// change to state.
func (c *Conversation) Submit(text string) (<-chan models.Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrBlank
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	userTurn := c.newTurn(models.RoleUser, text, false)
	c.turns = append(c.turns, userTurn)
	c.busy = true
	history := append([]models.HistoryEntry(nil), c.history...)
	observers := c.observerList()
	c.wg.Add(1)
	c.emitMu.Lock()
	c.mu.Unlock()

	notify(observers, c.turnFrame(userTurn), c.busyFrame(true))
	c.emitMu.Unlock()

	done := make(chan models.Turn, 1)
	go func() {
		defer c.wg.Done()
		defer close(done)
		done <- c.exchange(text, history)
	}()
	return done, nil
}

// exchange runs the dispatch and resolves it, converting a panicking
// dispatcher into a failure.
func (c *Conversation) exchange(text string, history []models.HistoryEntry) (turn models.Turn) {
	var (
		reply models.Reply
		err   error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("dispatch panicked: %v", r)
			}
		}()
		reply, err = c.dispatcher.Dispatch(c.ctx, models.GenerationRequest{Text: text}, history, c.profile)
	}()
	return c.resolve(text, reply, err)
}

// resolve appends exactly one model turn for the pending exchange, records
// the exchange in history on success only, and clears busy.
func (c *Conversation) resolve(userText string, reply models.Reply, err error) models.Turn {
	var turn models.Turn

	c.mu.Lock()
	if err != nil {
		c.logger.Warn("Exchange failed", zap.Error(err))
		turn = c.newTurn(models.RoleModel, ErrorText, true)
	} else {
		turn = c.newTurn(models.RoleModel, reply.Text, false)
		c.history = append(c.history,
			models.HistoryEntry{Role: models.RoleUser, Content: userText},
			models.HistoryEntry{Role: models.RoleModel, Content: reply.Text},
		)
		c.logger.Debug("Exchange resolved", zap.String("mode", string(reply.Mode)), zap.Int("history", len(c.history)))
	}
	if !c.closed {
		c.turns = append(c.turns, turn)
	}
	c.busy = false
	observers := c.observerList()
	c.emitMu.Lock()
	c.mu.Unlock()

	notify(observers, c.turnFrame(turn), c.busyFrame(false))
	c.emitMu.Unlock()
	return turn
}

// Subscribe registers obs and returns a func that removes it. Observers run
// synchronously and must not call back into the conversation.
func (c *Conversation) Subscribe(obs Observer) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = obs
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Turns returns a copy of the transcript.
func (c *Conversation) Turns() []models.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Turn(nil), c.turns...)
}

// History returns a copy of the model-visible history.
func (c *Conversation) History() []models.HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.HistoryEntry(nil), c.history...)
}

func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Conversation) Profile() *models.Profile { return c.profile }

// Snapshot renders the conversation for the HTTP API.
func (c *Conversation) Snapshot() models.ConversationResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.ConversationResponse{
		ConversationID: c.ID,
		Busy:           c.busy,
		Turns:          append([]models.Turn{}, c.turns...),
		CreatedAt:      c.CreatedAt,
	}
}

// Wait blocks until no exchange is in flight.
func (c *Conversation) Wait() {
	c.wg.Wait()
}

// Done is closed once the conversation is torn down.
func (c *Conversation) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close cancels any in-flight exchange, waits for it to resolve, and drops
// transcript and history. Closing twice is a no-op.
func (c *Conversation) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	c.mu.Lock()
	c.turns = nil
	c.history = nil
	c.observers = map[int]Observer{}
	c.mu.Unlock()
	c.logger.Debug("Conversation closed")
}

func (c *Conversation) newTurn(role models.Role, text string, isError bool) models.Turn {
	return models.Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: c.now(),
		IsError:   isError,
	}
}

func (c *Conversation) observerList() []Observer {
	if len(c.observers) == 0 {
		return nil
	}
	ids := make([]int, 0, len(c.observers))
	for id := range c.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids) // registration order
	out := make([]Observer, len(ids))
	for i, id := range ids {
		out[i] = c.observers[id]
	}
	return out
}

func (c *Conversation) turnFrame(t models.Turn) models.SocketFrame {
	return models.SocketFrame{Type: "turn", ConversationID: c.ID, Turn: &t}
}

func (c *Conversation) busyFrame(busy bool) models.SocketFrame {
	return models.SocketFrame{Type: "busy", ConversationID: c.ID, Busy: &busy}
}

func notify(observers []Observer, frames ...models.SocketFrame) {
	for _, f := range frames {
		for _, obs := range observers {
			obs(f)
		}
	}
}
