package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/TimerWarden/internal/dedup"
	"github.com/SoarinFerret/TimerWarden/internal/history"
	"github.com/SoarinFerret/TimerWarden/internal/kv"
	"github.com/SoarinFerret/TimerWarden/internal/notify"
	"github.com/SoarinFerret/TimerWarden/internal/state"
	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []notify.Notification
	cancelled []string
}

func (f *fakeScheduler) Schedule(_ context.Context, n notify.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, n)
	return nil
}

func (f *fakeScheduler) Cancel(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, key)
}

func (f *fakeScheduler) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for _, n := range f.scheduled {
		keys = append(keys, n.Key)
	}
	return keys
}

type harness struct {
	store      *state.Manager
	registry   *dedup.Registry
	history    *history.Log
	scheduler  *fakeScheduler
	modal      *Modal
	dispatcher *Dispatcher
	clock      *clockwork.FakeClock
}

func newHarness(t *testing.T, timers ...timer.Timer) *harness {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	h := &harness{
		store:     state.NewManager(timers, nil),
		registry:  dedup.NewRegistry(),
		history:   history.New(kv.NewMemory(), history.WithClock(clock)),
		scheduler: &fakeScheduler{},
		clock:     clock,
	}
	h.modal = NewModal(h.registry, h.store, nil)
	h.dispatcher = New(h.registry, h.history, h.scheduler, h.modal, WithClock(clock))
	h.store.Subscribe(h.dispatcher)
	return h
}

func (h *harness) tick(id string, n int) {
	for i := 0; i < n; i++ {
		h.store.Dispatch(timer.Tick(id))
	}
}

func TestTeaScenario(t *testing.T) {
	tea := timer.New("Tea", "Break", 180, 0)
	h := newHarness(t)

	h.store.Dispatch(timer.Add(tea))
	h.store.Dispatch(timer.Start(tea.ID))
	h.tick(tea.ID, 180)

	items := h.history.Items(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, "Tea", items[0].Name)
	assert.Equal(t, 180, items[0].Duration)
	assert.Equal(t, "Break", items[0].Category)

	assert.Equal(t, ModalState{Visible: true, TimerName: "Tea", TimerID: tea.ID}, h.modal.State())
	assert.Equal(t, []string{notify.CompleteKey(tea.ID)}, h.scheduler.keys())

	h.modal.Hide()

	assert.Empty(t, h.store.Timers())
	assert.Empty(t, timer.Active(h.store.Timers()))
	assert.False(t, h.modal.State().Visible)
	assert.Len(t, h.history.Items(context.Background()), 1)
}

func TestCompletionSideEffectsRunOnce(t *testing.T) {
	tea := timer.New("Tea", "Break", 2, 0)
	h := newHarness(t, tea)
	h.store.Dispatch(timer.Start(tea.ID))
	h.tick(tea.ID, 2)

	done, _ := h.store.Get(tea.ID)
	// a second path discovering the same completion
	assert.False(t, h.dispatcher.HandleCompletion(done))
	h.store.Dispatch(timer.Complete(tea.ID))
	h.store.Dispatch(timer.Load(h.store.Timers()))
	h.tick(tea.ID, 3)

	assert.Len(t, h.history.Items(context.Background()), 1)
	assert.Equal(t, []string{notify.CompleteKey(tea.ID)}, h.scheduler.keys())
}

func TestCompletionNotificationOffset(t *testing.T) {
	tea := timer.New("Tea", "Break", 1, 0)
	h := newHarness(t, tea)
	h.dispatcher = New(h.registry, h.history, h.scheduler, h.modal, WithClock(h.clock), WithOffsets(3*time.Second, 0))

	done := tea
	done.Status, done.Remaining = timer.StatusCompleted, 0
	require.True(t, h.dispatcher.HandleCompletion(done))

	require.Len(t, h.scheduler.scheduled, 1)
	n := h.scheduler.scheduled[0]
	assert.Equal(t, h.clock.Now().Add(3*time.Second), n.FireAt)
	assert.Equal(t, "Timer Complete", n.Title)
	assert.Equal(t, "Tea is complete!", n.Body)
}

func TestAlertFiresOncePerThresholdCrossing(t *testing.T) {
	read := timer.New("Read", "Study", 10, 4)
	h := newHarness(t, read)
	h.store.Dispatch(timer.Start(read.ID))

	h.tick(read.ID, 6)
	h.tick(read.ID, 2)

	assert.Equal(t, []string{notify.AlertKey(read.ID)}, h.scheduler.keys())
	n := h.scheduler.scheduled[0]
	assert.True(t, n.FireAt.After(h.clock.Now()), "alert must be scheduled in the future")
	assert.Equal(t, "Read has 00:04 remaining", n.Body)
}

func TestResetRearmsSideEffects(t *testing.T) {
	read := timer.New("Read", "Study", 4, 2)
	h := newHarness(t, read)
	h.store.Dispatch(timer.Start(read.ID))
	h.tick(read.ID, 4)
	require.True(t, h.registry.Has(dedup.Completed, read.ID))

	h.store.Dispatch(timer.Reset(read.ID))

	assert.False(t, h.registry.Has(dedup.Completed, read.ID))
	assert.False(t, h.registry.Has(dedup.Alert, read.ID))
	assert.False(t, h.registry.Has(dedup.Modal, read.ID))
	assert.Contains(t, h.scheduler.cancelled, notify.CompleteKey(read.ID))
	assert.Contains(t, h.scheduler.cancelled, notify.AlertKey(read.ID))

	h.store.Dispatch(timer.Start(read.ID))
	h.tick(read.ID, 4)

	assert.Equal(t, []string{
		notify.AlertKey(read.ID), notify.CompleteKey(read.ID),
		notify.AlertKey(read.ID), notify.CompleteKey(read.ID),
	}, h.scheduler.keys())
	assert.Len(t, h.history.Items(context.Background()), 1, "history is keyed by timer id")
}

func TestAcknowledgeSkipsSideEffects(t *testing.T) {
	tea := timer.Timer{ID: "tea", Name: "Tea", Category: "Break", Duration: 60, Status: timer.StatusCompleted}
	h := newHarness(t)

	h.dispatcher.Acknowledge(tea)

	assert.Empty(t, h.history.Items(context.Background()))
	assert.Empty(t, h.scheduler.keys())
	assert.True(t, h.modal.State().Visible)
	assert.False(t, h.dispatcher.HandleCompletion(tea))
}

func TestAcknowledgedTimersAreQuietOnLoad(t *testing.T) {
	four := 4
	restored := []timer.Timer{
		{ID: "tea", Name: "Tea", Category: "Break", Duration: 60, Status: timer.StatusCompleted},
		{ID: "read", Name: "Read", Category: "Study", Duration: 10, Remaining: 4, Status: timer.StatusPaused, AlertAt: &four, AlertTriggered: true},
	}
	h := newHarness(t)
	for _, tm := range restored {
		h.dispatcher.Acknowledge(tm)
	}

	h.store.Dispatch(timer.Load(restored))

	assert.Empty(t, h.scheduler.keys())
	assert.Empty(t, h.history.Items(context.Background()))
	assert.Equal(t, "tea", h.modal.State().TimerID)
}

type sentRecorder struct {
	mu   sync.Mutex
	keys []string
}

func (s *sentRecorder) Send(_ context.Context, n notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, n.Key)
	return nil
}

func (s *sentRecorder) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

func TestQuickDismissKeepsCompletionNotification(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	tea := timer.New("Tea", "Break", 2, 0)
	store := state.NewManager([]timer.Timer{tea}, nil)
	registry := dedup.NewRegistry()
	sender := &sentRecorder{}
	scheduler := notify.NewScheduler(sender, notify.WithClock(clock))
	t.Cleanup(scheduler.Stop)
	modal := NewModal(registry, store, nil)
	store.Subscribe(New(registry, history.New(kv.NewMemory(), history.WithClock(clock)), scheduler, modal, WithClock(clock)))

	store.Dispatch(timer.Start(tea.ID))
	store.Dispatch(timer.Tick(tea.ID))
	store.Dispatch(timer.Tick(tea.ID))
	require.True(t, modal.State().Visible)

	// dismissed before the completion offset elapses
	assert.Equal(t, []string{tea.ID}, modal.Hide())
	assert.False(t, registry.Has(dedup.Completed, tea.ID))

	clock.Advance(5 * time.Second)
	require.Eventually(t, func() bool { return len(sender.sent()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{notify.CompleteKey(tea.ID)}, sender.sent())
}

func TestResetHidesModalForThatTimer(t *testing.T) {
	tea := timer.New("Tea", "Break", 1, 0)
	h := newHarness(t, tea)
	h.store.Dispatch(timer.Start(tea.ID))
	h.tick(tea.ID, 1)
	require.Equal(t, tea.ID, h.modal.State().TimerID)

	h.store.Dispatch(timer.Reset(tea.ID))

	assert.Equal(t, ModalState{}, h.modal.State())
	assert.False(t, h.registry.Has(dedup.Modal, tea.ID))
}
