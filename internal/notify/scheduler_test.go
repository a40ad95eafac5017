package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

type captureSender struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (c *captureSender) Send(_ context.Context, n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, n)
	return c.err
}

func (c *captureSender) Sent() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.sent...)
}

func newTestScheduler(t *testing.T) (*Scheduler, *captureSender, *clockwork.FakeClock) {
	t.Helper()
	sender := &captureSender{}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	return NewScheduler(sender, WithClock(clock)), sender, clock
}

func waitSent(t *testing.T, s *captureSender, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(s.Sent()) == n }, time.Second, 5*time.Millisecond)
}

func TestScheduler_FiresAtFireAt(t *testing.T) {
	s, sender, clock := newTestScheduler(t)
	ctx := context.Background()

	require.NoError(t, s.Schedule(ctx, Notification{Key: "a-complete", Title: "Timer Complete", FireAt: clock.Now().Add(time.Second)}))
	assert.True(t, s.Pending("a-complete"))

	clock.Advance(500 * time.Millisecond)
	assert.Empty(t, sender.Sent())

	clock.Advance(500 * time.Millisecond)
	waitSent(t, sender, 1)
	assert.False(t, s.Pending("a-complete"))
}

func TestScheduler_RescheduleReplacesPending(t *testing.T) {
	s, sender, clock := newTestScheduler(t)
	ctx := context.Background()

	require.NoError(t, s.Schedule(ctx, Notification{Key: "a-alert", Body: "first", FireAt: clock.Now().Add(time.Second)}))
	require.NoError(t, s.Schedule(ctx, Notification{Key: "a-alert", Body: "second", FireAt: clock.Now().Add(2 * time.Second)}))

	clock.Advance(3 * time.Second)
	waitSent(t, sender, 1)
	assert.Equal(t, "second", sender.Sent()[0].Body)
}

func TestScheduler_FiredKeyIsNotSentAgain(t *testing.T) {
	s, sender, clock := newTestScheduler(t)
	ctx := context.Background()
	n := Notification{Key: "a-complete", FireAt: clock.Now()}

	require.NoError(t, s.Schedule(ctx, n))
	clock.Advance(time.Millisecond)
	waitSent(t, sender, 1)

	require.NoError(t, s.Schedule(ctx, n))
	assert.False(t, s.Pending(n.Key))
	clock.Advance(time.Second)
	assert.Len(t, sender.Sent(), 1)

	s.Cancel(n.Key)
	require.NoError(t, s.Schedule(ctx, Notification{Key: n.Key, FireAt: clock.Now()}))
	clock.Advance(time.Millisecond)
	waitSent(t, sender, 2)
}

func TestScheduler_CancelPending(t *testing.T) {
	s, sender, clock := newTestScheduler(t)

	require.NoError(t, s.Schedule(context.Background(), Notification{Key: "a-complete", FireAt: clock.Now().Add(time.Second)}))
	s.Cancel("a-complete")
	s.Cancel("a-complete")

	clock.Advance(2 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, sender.Sent())
}

func TestScheduler_StopDropsEverything(t *testing.T) {
	s, sender, clock := newTestScheduler(t)
	ctx := context.Background()
	require.NoError(t, s.Schedule(ctx, Notification{Key: "a", FireAt: clock.Now().Add(time.Second)}))

	s.Stop()
	require.NoError(t, s.Schedule(ctx, Notification{Key: "b", FireAt: clock.Now()}))

	clock.Advance(2 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, sender.Sent())
}

func TestScheduler_CancelledContext(t *testing.T) {
	s, _, clock := newTestScheduler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Schedule(ctx, Notification{Key: "a", FireAt: clock.Now()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScheduler_SendFailureIsSwallowed(t *testing.T) {
	sender := &captureSender{err: errors.New("no notification daemon")}
	clock := clockwork.NewFakeClock()
	s := NewScheduler(sender, WithClock(clock))

	require.NoError(t, s.Schedule(context.Background(), Notification{Key: "a", FireAt: clock.Now()}))
	clock.Advance(time.Millisecond)
	waitSent(t, sender, 1)
}

func TestMulti_JoinsErrors(t *testing.T) {
	ok := &captureSender{}
	bad := &captureSender{err: errors.New("offline")}

	err := Multi{bad, ok}.Send(context.Background(), Notification{Key: "a"})

	assert.ErrorContains(t, err, "offline")
	assert.Len(t, ok.Sent(), 1, "one failing sender does not stop the others")
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "abc-complete", CompleteKey("abc"))
	assert.Equal(t, "abc-alert", AlertKey("abc"))
}

func TestMessages(t *testing.T) {
	half := 300
	at := time.Date(2024, 3, 1, 9, 0, 1, 0, time.UTC)

	c := Completion(timer.Timer{ID: "tea", Name: "Tea"}, at)
	assert.Equal(t, Notification{Key: "tea-complete", Title: "Timer Complete", Body: "Tea is complete!", FireAt: at}, c)

	a := Alert(timer.Timer{ID: "run", Name: "Run", Duration: 601, Remaining: 300, AlertAt: &half}, at)
	assert.Equal(t, "run-alert", a.Key)
	assert.Equal(t, "Run is halfway done!", a.Body)

	a = Alert(timer.Timer{ID: "run", Name: "Run", Duration: 900, Remaining: 75, AlertAt: new(int)}, at)
	assert.Equal(t, "Run has 01:15 remaining", a.Body)
}
