// Package ticker advances running timers once per second while the session
// is in the foreground.
package ticker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

const DefaultPeriod = time.Second

// Source is the timer store. RunningIDs is read on every firing so the
// ticker never works from a stale list.
type Source interface {
	RunningIDs() []string
	Dispatch(action timer.Action) []timer.Timer
}

type Ticker struct {
	src    Source
	clock  clockwork.Clock
	period time.Duration
	log    *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	restart chan struct{}
	done    chan struct{}
}

func New(src Source, clock clockwork.Clock, period time.Duration, log *slog.Logger) *Ticker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	if log == nil {
		log = slog.Default()
	}
	return &Ticker{src: src, clock: clock, period: period, log: log}
}

// Start begins ticking. On a ticker that is already running it restarts
// the period from now instead of starting a second loop.
func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		select {
		case t.restart <- struct{}{}:
		default:
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.restart = make(chan struct{}, 1)
	t.done = make(chan struct{})
	go t.loop(ctx, t.restart, t.done)
	t.log.Debug("foreground ticker started")
}

// Stop ends ticking. It is safe to call at any time, including from code
// running inside a tick, and does not wait for the loop to exit.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel == nil {
		return
	}
	t.cancel()
	t.cancel = nil
	t.log.Debug("foreground ticker stopped")
}

// Running reports whether a loop is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Wait blocks until the most recently started loop has exited or ctx is
// done.
func (t *Ticker) Wait(ctx context.Context) error {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Ticker) loop(ctx context.Context, restart <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	tk := t.clock.NewTicker(t.period)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-restart:
			tk.Reset(t.period)
		case <-tk.Chan():
			t.fire(ctx)
		}
	}
}

func (t *Ticker) fire(ctx context.Context) {
	for _, id := range t.src.RunningIDs() {
		if ctx.Err() != nil {
			return
		}
		t.src.Dispatch(timer.Tick(id))
	}
}
