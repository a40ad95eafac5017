package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/SoarinFerret/TimerWarden/internal/persist"
	"github.com/SoarinFerret/TimerWarden/internal/state"
	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

// Mode says which component advances running timers.
type Mode string

const (
	ModeForeground Mode = "foreground"
	ModeBackground Mode = "background"
)

// ParseMode accepts the mode names used on the command line.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeForeground, ModeBackground:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

type Ticker interface {
	Start()
	Stop()
	Running() bool
}

type Driver interface {
	Start(timers []timer.Timer) (bool, error)
	Stop()
	Active() bool
	Timers() []timer.Timer
}

// Completions is the part of the dispatcher used during reconciliation.
type Completions interface {
	HandleCompletion(t timer.Timer) bool
	Acknowledge(t timer.Timer)
}

type History interface {
	ClearedAt(ctx context.Context) time.Time
	Cleanup(ctx context.Context, retention time.Duration) (int, error)
}

// Engine switches between the foreground ticker and the background driver.
// EnterForeground and EnterBackground are the only places either is started
// or stopped, so the two never run at the same time.
type Engine struct {
	store       *state.Manager
	bridge      *persist.Bridge
	ticker      Ticker
	driver      Driver
	completions Completions
	history     History
	clock       clockwork.Clock
	log         *slog.Logger

	retention   time.Duration
	maintenance time.Duration

	mu   sync.Mutex
	mode atomic.Value // Mode

	// runners guards starting or stopping the ticker and driver together
	// with the mode check. It is never held across store.Dispatch.
	runners sync.Mutex
}

type Option func(*Engine)

func WithClock(c clockwork.Clock) Option { return func(e *Engine) { e.clock = c } }
func WithLogger(l *slog.Logger) Option   { return func(e *Engine) { e.log = l } }

// WithRetention sets how long history items are kept.
func WithRetention(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.retention = d
		}
	}
}

// WithMaintenanceInterval sets how often Run prunes history.
func WithMaintenanceInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.maintenance = d
		}
	}
}

// NewEngine wires the engine. It subscribes itself to store.
func NewEngine(store *state.Manager, bridge *persist.Bridge, tk Ticker, drv Driver, completions Completions, hist History, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		bridge:      bridge,
		ticker:      tk,
		driver:      drv,
		completions: completions,
		history:     hist,
		clock:       clockwork.NewRealClock(),
		log:         slog.Default(),
		retention:   30 * 24 * time.Hour,
		maintenance: time.Hour,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.mode.Store(ModeForeground)
	store.Subscribe(e)
	return e
}

func (e *Engine) Mode() Mode {
	return e.mode.Load().(Mode)
}

// Restore fills the store at start-up from the primary slot, then
// reconciles a fresh background snapshot over it as if returning to the
// foreground. A fresh snapshot means the daemon stopped while in the
// background, so its progress is newer than the primary slot.
func (e *Engine) Restore(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if timers := e.bridge.LoadPrimary(ctx); len(timers) > 0 {
		// completions in the primary slot were handled before the restart
		for _, t := range timers {
			e.completions.Acknowledge(t)
		}
		e.store.Dispatch(timer.Load(timers))
		e.log.Info("timers restored", "timers", len(timers))
	}
	e.reconcile(ctx, true)
	e.syncTicker()
}

// EnterBackground stops the ticker and hands the collection to the driver.
func (e *Engine) EnterBackground(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Mode() == ModeBackground {
		return nil
	}
	e.runners.Lock()
	e.ticker.Stop()
	e.mode.Store(ModeBackground)
	e.runners.Unlock()

	started, err := e.driver.Start(e.store.Timers())
	if err != nil {
		return fmt.Errorf("start background driver: %w", err)
	}
	e.log.Info("entered background", "driver", started)
	return nil
}

// EnterForeground stops the driver, folds its progress back into the store
// and resumes the ticker.
func (e *Engine) EnterForeground(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Mode() == ModeForeground {
		return nil
	}
	e.runners.Lock()
	e.driver.Stop()
	e.mode.Store(ModeForeground)
	e.runners.Unlock()

	e.reconcile(ctx, false)
	e.syncTicker()
	e.log.Info("entered foreground")
	return nil
}

// SetMode switches to m.
func (e *Engine) SetMode(ctx context.Context, m Mode) error {
	switch m {
	case ModeBackground:
		return e.EnterBackground(ctx)
	case ModeForeground:
		return e.EnterForeground(ctx)
	}
	return fmt.Errorf("unknown mode %q", m)
}

// reconcile merges the background snapshot into the store. Timers the
// snapshot shows as newly completed are passed to the dispatcher, unless
// the snapshot predates the last history clear, in which case they are only
// acknowledged. restoring adds snapshot timers the store does not know.
func (e *Engine) reconcile(ctx context.Context, restoring bool) {
	now := e.clock.Now()
	snap := e.bridge.LoadSnapshot(ctx, now)
	defer e.clearSnapshot(ctx)
	if snap == nil {
		return
	}

	caughtUp := persist.CatchUp(snap.Timers, now.Sub(snap.At()), e.bridge.Freshness())
	current := e.store.Timers()
	merged := merge(current, caughtUp, restoring)

	var completed []timer.Timer
	for _, t := range merged {
		if !t.IsCompleted() {
			continue
		}
		if old := timer.Find(current, t.ID); old != nil && old.IsCompleted() {
			continue
		}
		completed = append(completed, t)
	}

	suppress := snap.At().Before(e.history.ClearedAt(ctx))
	if suppress {
		for _, t := range completed {
			e.completions.Acknowledge(t)
		}
	}

	e.store.Dispatch(timer.Load(merged))
	if !suppress {
		for _, t := range completed {
			e.completions.HandleCompletion(t)
		}
	}
	e.log.Info("reconciled background progress", "timers", len(merged), "completed", len(completed), "age", now.Sub(snap.At()))
}

func (e *Engine) clearSnapshot(ctx context.Context) {
	if err := e.bridge.ClearSnapshot(ctx); err != nil {
		e.log.Error("failed to clear background snapshot", "error", err)
	}
}

// merge replaces store timers with their snapshot version by id. Snapshot
// timers the store no longer has were removed and are dropped, unless add
// is set.
func merge(current, snapshot []timer.Timer, add bool) []timer.Timer {
	byID := make(map[string]timer.Timer, len(snapshot))
	for _, t := range snapshot {
		byID[t.ID] = t
	}
	out := make([]timer.Timer, 0, len(current))
	for _, t := range current {
		if s, ok := byID[t.ID]; ok {
			out = append(out, s)
			delete(byID, t.ID)
			continue
		}
		out = append(out, t)
	}
	if add {
		for _, t := range snapshot {
			if _, ok := byID[t.ID]; ok {
				out = append(out, t)
			}
		}
	}
	return out
}

// OnChange keeps the active runner in step with store changes.
func (e *Engine) OnChange(prev, next []timer.Timer, action timer.Action) {
	if e.Mode() == ModeForeground {
		if !slices.Equal(timer.RunningIDs(prev), timer.RunningIDs(next)) {
			e.syncTicker()
		}
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Mode() != ModeBackground {
		e.syncTicker()
		return
	}
	// a change made while in the background, e.g. from twctl
	working := overlay(e.driver.Timers(), next, touched(action))
	if _, err := e.driver.Start(working); err != nil {
		e.log.Error("failed to restart background driver", "error", err)
	}
}

// overlay takes the store's version of touched timers and of timers the
// driver does not have; everything else keeps the driver's progress.
func overlay(driver, store []timer.Timer, touched map[string]bool) []timer.Timer {
	out := make([]timer.Timer, 0, len(store))
	for _, t := range store {
		if d := timer.Find(driver, t.ID); d != nil && !touched[t.ID] {
			out = append(out, *d)
			continue
		}
		out = append(out, t)
	}
	return out
}

func touched(a timer.Action) map[string]bool {
	ids := make(map[string]bool)
	if a.ID != "" {
		ids[a.ID] = true
	}
	if a.Timer.ID != "" {
		ids[a.Timer.ID] = true
	}
	for _, id := range a.IDs {
		ids[id] = true
	}
	for _, t := range a.Timers {
		ids[t.ID] = true
	}
	return ids
}

// syncTicker restarts the ticker when something runs and stops it
// otherwise. It only acts in the foreground.
func (e *Engine) syncTicker() {
	e.runners.Lock()
	defer e.runners.Unlock()
	if e.Mode() != ModeForeground {
		return
	}
	if len(e.store.RunningIDs()) > 0 {
		e.ticker.Start()
	} else {
		e.ticker.Stop()
	}
}

// Run prunes history periodically until ctx is done, then stops whichever
// runner is active. A background snapshot is left in place on shutdown.
func (e *Engine) Run(ctx context.Context) error {
	tk := e.clock.NewTicker(e.maintenance)
	defer tk.Stop()

	e.log.Info("timer engine started", "mode", e.Mode())
	e.maintain(ctx)

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			e.log.Info("timer engine shutting down")
			return nil
		case <-tk.Chan():
			e.maintain(ctx)
		}
	}
}

func (e *Engine) maintain(ctx context.Context) {
	removed, err := e.history.Cleanup(ctx, e.retention)
	if err != nil {
		e.log.Error("failed to clean up history", "error", err)
		return
	}
	if removed > 0 {
		e.log.Info("pruned history", "removed", removed)
	}
}

func (e *Engine) shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runners.Lock()
	defer e.runners.Unlock()
	e.ticker.Stop()
	e.driver.Stop()
}
