// Package persist moves the timer collection in and out of the kv store.
//
// Two slots are kept: the primary slot written after every change, and the
// background snapshot written by the background driver together with the
// time of its last step.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SoarinFerret/TimerWarden/internal/kv"
	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

const (
	KeyTimers   = "timers"
	KeySnapshot = "timer_state"

	// DefaultFreshness is how long a background snapshot stays usable.
	DefaultFreshness = 5 * time.Minute
)

// Snapshot is what the background driver leaves behind.
type Snapshot struct {
	Timers     []timer.Timer `json:"timers"`
	LastUpdate int64         `json:"lastUpdate"`
}

// At returns LastUpdate as a time.
func (s Snapshot) At() time.Time {
	return time.UnixMilli(s.LastUpdate)
}

// Bridge reads and writes both slots.
type Bridge struct {
	store     kv.Store
	freshness time.Duration
	log       *slog.Logger
}

type Option func(*Bridge)

func WithFreshness(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.freshness = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

func NewBridge(store kv.Store, opts ...Option) *Bridge {
	b := &Bridge{
		store:     store,
		freshness: DefaultFreshness,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bridge) Freshness() time.Duration { return b.freshness }

// SaveTimers overwrites the primary slot.
func (b *Bridge) SaveTimers(ctx context.Context, timers []timer.Timer) error {
	if timers == nil {
		timers = []timer.Timer{}
	}
	data, err := json.Marshal(timers)
	if err != nil {
		return fmt.Errorf("encode timers: %w", err)
	}
	return b.store.Set(ctx, KeyTimers, data)
}

// LoadTimers returns the primary slot. When it is empty the background
// snapshot is used instead, provided it is still fresh, with the time that
// passed since its last update applied. Storage and decode failures are
// logged and yield an empty collection.
func (b *Bridge) LoadTimers(ctx context.Context, now time.Time) []timer.Timer {
	if timers := b.LoadPrimary(ctx); len(timers) > 0 {
		return timers
	}

	snap := b.LoadSnapshot(ctx, now)
	if snap == nil {
		return []timer.Timer{}
	}
	b.log.Info("restoring timers from background snapshot", "timers", len(snap.Timers), "age", now.Sub(snap.At()))
	return CatchUp(snap.Timers, now.Sub(snap.At()), b.freshness)
}

// LoadPrimary returns the primary slot alone, empty when it is missing or
// unreadable.
func (b *Bridge) LoadPrimary(ctx context.Context) []timer.Timer {
	data, err := b.store.Get(ctx, KeyTimers)
	if err != nil {
		b.log.Error("failed to read timers", "error", err)
		return []timer.Timer{}
	}
	if len(data) == 0 {
		return []timer.Timer{}
	}
	var timers []timer.Timer
	if err := json.Unmarshal(data, &timers); err != nil {
		b.log.Error("failed to decode timers", "error", err)
		return []timer.Timer{}
	}
	return timers
}

// SaveSnapshot writes the background slot.
func (b *Bridge) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	if snap.Timers == nil {
		snap.Timers = []timer.Timer{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return b.store.Set(ctx, KeySnapshot, data)
}

// LoadSnapshot returns the background snapshot, or nil when it is absent,
// unreadable or at least as old as the freshness window.
func (b *Bridge) LoadSnapshot(ctx context.Context, now time.Time) *Snapshot {
	data, err := b.store.Get(ctx, KeySnapshot)
	if err != nil {
		b.log.Error("failed to read background snapshot", "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		b.log.Error("failed to decode background snapshot", "error", err)
		return nil
	}
	if age := now.Sub(snap.At()); age >= b.freshness {
		b.log.Debug("discarding stale background snapshot", "age", age)
		return nil
	}
	return &snap
}

func (b *Bridge) ClearSnapshot(ctx context.Context) error {
	return b.store.Remove(ctx, KeySnapshot)
}

// CatchUp advances running timers by the whole seconds in elapsed, capped
// at limit. Alerts follow the exact-threshold rule of timer.Advance, so a
// jump over the threshold does not trigger it.
func CatchUp(timers []timer.Timer, elapsed, limit time.Duration) []timer.Timer {
	if limit > 0 && elapsed > limit {
		elapsed = limit
	}
	n := int(elapsed / time.Second)
	out := timer.CloneAll(timers)
	if n <= 0 {
		return out
	}
	for i := range out {
		out[i] = timer.Advance(out[i], n)
	}
	return out
}
