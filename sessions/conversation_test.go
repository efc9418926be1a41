package sessions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Desarso/fitcoach/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type dispatchCall struct {
	Req     models.GenerationRequest
	History []models.HistoryEntry
}

// fakeDispatcher answers with reply/err. When gate is non-nil each dispatch
// blocks until gate receives a value or ctx ends.
type fakeDispatcher struct {
	mu    sync.Mutex
	calls []dispatchCall
	reply func(text string) (models.Reply, error)
	gate  chan struct{}
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, req models.GenerationRequest, history []models.HistoryEntry, _ *models.Profile) (models.Reply, error) {
	f.mu.Lock()
	f.calls = append(f.calls, dispatchCall{Req: req, History: history})
	f.mu.Unlock()

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return models.Reply{}, ctx.Err()
		}
	}
	if f.reply == nil {
		return models.Reply{Mode: models.ModeChat, Text: "echo: " + req.Text}, nil
	}
	return f.reply(req.Text)
}

func (f *fakeDispatcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testProfile() *models.Profile {
	return &models.Profile{Name: "Sara", Age: 27, Weight: 60, Goal: models.GoalGainMuscle}
}

func await(t *testing.T, ch <-chan models.Turn) models.Turn {
	t.Helper()
	select {
	case turn, ok := <-ch:
		require.True(t, ok, "resolution channel closed without a turn")
		return turn
	case <-time.After(5 * time.Second):
		t.Fatal("exchange did not resolve")
	}
	return models.Turn{}
}

func TestGreeting(t *testing.T) {
	c := NewConversation(testProfile(), &fakeDispatcher{})
	defer c.Close()

	turns := c.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, models.RoleModel, turns[0].Role)
	assert.Equal(t, "Hi Sara! I'm your Gemini coach. How can I help you reach your goal to gain muscle today?", turns[0].Text)
	assert.Empty(t, c.History(), "greeting is not model context")
	assert.False(t, c.Busy())
}

func TestSubmitSuccess(t *testing.T) {
	d := &fakeDispatcher{}
	c := NewConversation(testProfile(), d)
	defer c.Close()

	ch, err := c.Submit("how do I deadlift?")
	require.NoError(t, err)
	turn := await(t, ch)

	assert.Equal(t, models.RoleModel, turn.Role)
	assert.Equal(t, "echo: how do I deadlift?", turn.Text)
	assert.False(t, turn.IsError)
	assert.False(t, c.Busy())

	turns := c.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, models.RoleUser, turns[1].Role)
	assert.Equal(t, turn.ID, turns[2].ID)

	assert.Equal(t, []models.HistoryEntry{
		{Role: models.RoleUser, Content: "how do I deadlift?"},
		{Role: models.RoleModel, Content: "echo: how do I deadlift?"},
	}, c.History())

	_, open := <-ch
	assert.False(t, open, "channel closes after the single turn")
}

func TestTranscriptGrowsByTwoPerAcceptedSubmit(t *testing.T) {
	d := &fakeDispatcher{}
	c := NewConversation(testProfile(), d)
	defer c.Close()

	for i := 0; i < 4; i++ {
		ch, err := c.Submit("question")
		require.NoError(t, err)
		await(t, ch)
		c.Wait()
	}
	assert.Len(t, c.Turns(), 1+4*2)
	assert.Len(t, c.History(), 4*2)

	// Each dispatch sees the history accumulated before it
	for i, call := range d.calls {
		assert.Len(t, call.History, i*2)
	}
}

func TestSubmitWhileBusyIsRejected(t *testing.T) {
	d := &fakeDispatcher{gate: make(chan struct{})}
	c := NewConversation(testProfile(), d)
	defer c.Close()

	ch, err := c.Submit("first")
	require.NoError(t, err)
	assert.True(t, c.Busy())

	_, err = c.Submit("second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, c.Turns(), 2, "rejected submission leaves the transcript alone")

	d.gate <- struct{}{}
	await(t, ch)
	c.Wait()
	assert.Equal(t, 1, d.callCount())
	assert.Len(t, c.Turns(), 3)
}

func TestBlankSubmitIsIgnored(t *testing.T) {
	d := &fakeDispatcher{}
	c := NewConversation(testProfile(), d)
	defer c.Close()

	for _, text := range []string{"", "   ", "\n\t"} {
		ch, err := c.Submit(text)
		assert.ErrorIs(t, err, ErrBlank)
		assert.Nil(t, ch)
	}
	assert.Len(t, c.Turns(), 1)
	assert.Equal(t, 0, d.callCount())
}

func TestFailureAppendsErrorTurnOnly(t *testing.T) {
	d := &fakeDispatcher{reply: func(string) (models.Reply, error) {
		return models.Reply{}, errors.New("upstream 503")
	}}
	c := NewConversation(testProfile(), d)
	defer c.Close()

	turn := await(t, mustSubmit(t, c, "hello"))
	assert.True(t, turn.IsError)
	assert.Equal(t, ErrorText, turn.Text)
	assert.Empty(t, c.History(), "failed exchanges never reach history")
	assert.Len(t, c.Turns(), 3)
	assert.False(t, c.Busy())
}

func TestDispatcherPanicResolvesAsFailure(t *testing.T) {
	d := &fakeDispatcher{reply: func(string) (models.Reply, error) {
		panic("nil map")
	}}
	c := NewConversation(testProfile(), d)
	defer c.Close()

	turn := await(t, mustSubmit(t, c, "hello"))
	assert.True(t, turn.IsError)
	assert.False(t, c.Busy())
}

func TestObserverFrameOrder(t *testing.T) {
	var (
		mu     sync.Mutex
		frames []models.SocketFrame
	)
	obs := func(f models.SocketFrame) {
		mu.Lock()
		frames = append(frames, f)
		mu.Unlock()
	}
	c := NewConversation(testProfile(), &fakeDispatcher{}, WithObserver(obs), WithID("conv-1"))
	defer c.Close()

	await(t, mustSubmit(t, c, "hi"))
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, frames, 5)
	kinds := make([]string, len(frames))
	for i, f := range frames {
		kinds[i] = f.Type
		assert.Equal(t, "conv-1", f.ConversationID)
	}
	assert.Equal(t, []string{"turn", "turn", "busy", "turn", "busy"}, kinds)
	assert.Equal(t, models.RoleUser, frames[1].Turn.Role)
	assert.True(t, *frames[2].Busy)
	assert.Equal(t, "echo: hi", frames[3].Turn.Text)
	assert.False(t, *frames[4].Busy)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	c := NewConversation(testProfile(), &fakeDispatcher{})
	defer c.Close()

	var count int
	var mu sync.Mutex
	unsubscribe := c.Subscribe(func(models.SocketFrame) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	await(t, mustSubmit(t, c, "one"))
	c.Wait()
	unsubscribe()
	await(t, mustSubmit(t, c, "two"))
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 4, count)
}

func TestCloseCancelsInFlight(t *testing.T) {
	d := &fakeDispatcher{gate: make(chan struct{})}
	c := NewConversation(testProfile(), d)

	ch, err := c.Submit("long question")
	require.NoError(t, err)

	c.Close()
	turn := await(t, ch)
	assert.True(t, turn.IsError, "cancelled exchange resolves as a failure")

	assert.Empty(t, c.Turns())
	assert.Empty(t, c.History())

	_, err = c.Submit("again")
	assert.ErrorIs(t, err, ErrClosed)
	c.Close()
}

func TestClock(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 7, 30, 0, 0, time.UTC)
	c := NewConversation(testProfile(), &fakeDispatcher{}, WithClock(func() time.Time { return fixed }))
	defer c.Close()

	assert.Equal(t, fixed, c.CreatedAt)
	assert.Equal(t, fixed, c.Turns()[0].Timestamp)
	snap := c.Snapshot()
	assert.Equal(t, c.ID, snap.ConversationID)
	assert.Len(t, snap.Turns, 1)
}

func mustSubmit(t *testing.T, c *Conversation, text string) <-chan models.Turn {
	t.Helper()
	ch, err := c.Submit(text)
	require.NoError(t, err)
	return ch
}
