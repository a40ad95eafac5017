package state

import (
	"log/slog"
	"sync"

	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

// Observer is told about every change of the timer collection.
type Observer interface {
	OnChange(prev, next []timer.Timer, action timer.Action)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(prev, next []timer.Timer, action timer.Action)

func (f ObserverFunc) OnChange(prev, next []timer.Timer, action timer.Action) {
	f(prev, next, action)
}

type change struct {
	prev, next []timer.Timer
	action     timer.Action
}

// Manager owns the timer collection. Dispatches are applied one at a time;
// observers are called after the lock is released, in the order the changes
// happened, and may dispatch again.
type Manager struct {
	mu        sync.Mutex
	timers    []timer.Timer
	observers []Observer

	queue    []change
	draining bool

	log *slog.Logger
}

// NewManager starts with a copy of initial.
func NewManager(initial []timer.Timer, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		timers: timer.CloneAll(initial),
		log:    log,
	}
}

// Subscribe registers o for every later change.
func (m *Manager) Subscribe(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// Dispatch applies action and returns the resulting collection. Actions
// that change nothing are not reported to observers.
func (m *Manager) Dispatch(action timer.Action) []timer.Timer {
	m.mu.Lock()
	prev := m.timers
	next := timer.Reduce(prev, action)
	m.timers = next
	if sameSlice(prev, next) {
		m.mu.Unlock()
		return next
	}
	m.log.Debug("dispatch", "action", action.Type, "timer", action.ID, "timers", len(next))
	m.queue = append(m.queue, change{prev: prev, next: next, action: action})
	if m.draining {
		// the goroutine already draining will deliver it
		m.mu.Unlock()
		return next
	}
	m.draining = true
	m.mu.Unlock()

	m.drain()
	return next
}

func (m *Manager) drain() {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.draining = false
			m.mu.Unlock()
			return
		}
		c := m.queue[0]
		m.queue = m.queue[1:]
		observers := append([]Observer(nil), m.observers...)
		m.mu.Unlock()

		for _, o := range observers {
			o.OnChange(c.prev, c.next, c.action)
		}
	}
}

// Timers returns a copy of the current collection.
func (m *Manager) Timers() []timer.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return timer.CloneAll(m.timers)
}

// RunningIDs is read fresh on every call.
func (m *Manager) RunningIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return timer.RunningIDs(m.timers)
}

// Get returns a copy of the timer with id.
func (m *Manager) Get(id string) (timer.Timer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := timer.Find(m.timers, id)
	if t == nil {
		return timer.Timer{}, false
	}
	return t.Clone(), true
}

// sameSlice reports whether Reduce handed back its input untouched.
func sameSlice(a, b []timer.Timer) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
