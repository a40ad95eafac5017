// Package history records completed timers.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/SoarinFerret/TimerWarden/internal/kv"
)

const (
	Key          = "timer-history"
	KeyClearedAt = "timer-history-cleared-at"

	DefaultRetention = 30 * 24 * time.Hour
)

// Item is one completed timer. CompletedAt is epoch milliseconds.
type Item struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Duration    int    `json:"duration" yaml:"duration"`
	Category    string `json:"category" yaml:"category"`
	CompletedAt int64  `json:"completedAt" yaml:"completedAt"`
}

// Summary is what a completion reports to the log.
type Summary struct {
	ID       string
	Name     string
	Duration int
	Category string
}

// Log keeps items newest first under a single key.
type Log struct {
	store   kv.Store
	clock   clockwork.Clock
	log     *slog.Logger
	version string

	mu sync.Mutex
}

type Option func(*Log)

func WithClock(c clockwork.Clock) Option { return func(l *Log) { l.clock = c } }
func WithLogger(lg *slog.Logger) Option  { return func(l *Log) { l.log = lg } }
func WithAppVersion(v string) Option     { return func(l *Log) { l.version = v } }

func New(store kv.Store, opts ...Option) *Log {
	l := &Log{
		store:   store,
		clock:   clockwork.NewRealClock(),
		log:     slog.Default(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records a completion. A second delivery for the same id updates
// the descriptive fields in place and keeps the original completion time.
func (l *Log) Append(ctx context.Context, s Summary) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	items := l.read(ctx)
	for i := range items {
		if items[i].ID == s.ID {
			items[i].Name = s.Name
			items[i].Duration = s.Duration
			items[i].Category = s.Category
			return l.write(ctx, items)
		}
	}

	item := Item{
		ID:          s.ID,
		Name:        s.Name,
		Duration:    s.Duration,
		Category:    s.Category,
		CompletedAt: l.clock.Now().UnixMilli(),
	}
	return l.write(ctx, append([]Item{item}, items...))
}

// Items returns the log, newest first. Read failures yield an empty log.
func (l *Log) Items(ctx context.Context) []Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read(ctx)
}

// Clear drops every item and remembers when that happened.
func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Remove(ctx, Key); err != nil {
		return err
	}
	now := strconv.FormatInt(l.clock.Now().UnixMilli(), 10)
	return l.store.Set(ctx, KeyClearedAt, []byte(now))
}

// ClearedAt returns the time of the last Clear, or the zero time.
func (l *Log) ClearedAt(ctx context.Context) time.Time {
	data, err := l.store.Get(ctx, KeyClearedAt)
	if err != nil {
		l.log.Error("failed to read history clear time", "error", err)
		return time.Time{}
	}
	if len(data) == 0 {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		l.log.Error("failed to parse history clear time", "error", err)
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// Cleanup drops items that completed more than retention ago and returns
// how many were removed.
func (l *Log) Cleanup(ctx context.Context, retention time.Duration) (int, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	items := l.read(ctx)
	cutoff := l.clock.Now().Add(-retention).UnixMilli()
	kept := items[:0:0]
	for _, it := range items {
		if it.CompletedAt > cutoff {
			kept = append(kept, it)
		}
	}
	removed := len(items) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, l.write(ctx, kept)
}

func (l *Log) read(ctx context.Context) []Item {
	data, err := l.store.Get(ctx, Key)
	if err != nil {
		l.log.Error("failed to read history", "error", err)
		return []Item{}
	}
	if len(data) == 0 {
		return []Item{}
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		l.log.Error("failed to decode history", "error", err)
		return []Item{}
	}
	return items
}

func (l *Log) write(ctx context.Context, items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return l.store.Set(ctx, Key, data)
}
