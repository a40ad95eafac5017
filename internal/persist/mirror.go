package persist

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

// Mirror saves the timer collection to the primary slot off the caller's
// goroutine. Offers made while a write is in flight collapse into one: only
// the most recent collection is written next, so an older collection can
// never land after a newer one.
type Mirror struct {
	bridge *Bridge
	log    *slog.Logger

	mu      sync.Mutex
	pending []timer.Timer
	dirty   bool
	offered uint64
	written uint64
	done    chan struct{} // closed and replaced after each write

	signal chan struct{} // buffered, size 1
}

func NewMirror(bridge *Bridge, log *slog.Logger) *Mirror {
	if log == nil {
		log = slog.Default()
	}
	return &Mirror{
		bridge: bridge,
		log:    log,
		done:   make(chan struct{}),
		signal: make(chan struct{}, 1),
	}
}

// Offer queues timers for saving and returns immediately.
func (m *Mirror) Offer(timers []timer.Timer) {
	m.mu.Lock()
	m.pending = timers
	m.dirty = true
	m.offered++
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// OnChange lets the Mirror observe the timer store directly.
func (m *Mirror) OnChange(_, next []timer.Timer, _ timer.Action) {
	m.Offer(next)
}

// Run writes offered collections until ctx is done, then writes whatever is
// still pending.
func (m *Mirror) Run(ctx context.Context) {
	for {
		select {
		case <-m.signal:
			m.writePending(ctx)
		case <-ctx.Done():
			m.writePending(context.WithoutCancel(ctx))
			return
		}
	}
}

func (m *Mirror) writePending(ctx context.Context) {
	m.mu.Lock()
	if !m.dirty {
		m.mu.Unlock()
		return
	}
	timers := m.pending
	seq := m.offered
	m.pending = nil
	m.dirty = false
	m.mu.Unlock()

	if err := m.bridge.SaveTimers(ctx, timers); err != nil {
		m.log.Error("failed to save timers", "error", err)
	}

	m.mu.Lock()
	m.written = seq
	close(m.done)
	m.done = make(chan struct{})
	m.mu.Unlock()
}

// Flush blocks until everything offered before the call has been written
// or ctx is done.
func (m *Mirror) Flush(ctx context.Context) error {
	m.mu.Lock()
	target := m.offered
	m.mu.Unlock()

	for {
		m.mu.Lock()
		if m.written >= target {
			m.mu.Unlock()
			return nil
		}
		done := m.done
		m.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
