// Package category manages the user's list of timer categories.
package category

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/SoarinFerret/TimerWarden/internal/kv"
	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

const Key = "categories"

// Defaults seed the list until the user changes it.
var Defaults = []string{"Work", "Study", "Break", "Exercise"}

var (
	ErrEmpty    = errors.New("category name cannot be empty")
	ErrExists   = errors.New("category already exists")
	ErrNotFound = errors.New("category not found")
	ErrInUse    = errors.New("category is used by a timer")
)

type List struct {
	store    kv.Store
	defaults []string
	log      *slog.Logger
	mu       sync.Mutex
}

func New(store kv.Store, defaults []string, log *slog.Logger) *List {
	if len(defaults) == 0 {
		defaults = Defaults
	}
	if log == nil {
		log = slog.Default()
	}
	return &List{store: store, defaults: defaults, log: log}
}

// List returns the categories in the order they were added.
func (l *List) List(ctx context.Context) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read(ctx)
}

// Add appends name and returns it as stored.
func (l *List) Add(ctx context.Context, name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return "", ErrEmpty
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	names := l.read(ctx)
	if indexOf(names, name) >= 0 {
		return "", fmt.Errorf("%w: %s", ErrExists, name)
	}
	return name, l.write(ctx, append(names, name))
}

// Remove deletes name unless one of timers still refers to it. History
// items keep their own copy of the name and are not checked.
func (l *List) Remove(ctx context.Context, name string, timers []timer.Timer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := l.read(ctx)
	i := indexOf(names, name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	for _, t := range timers {
		if sameName(t.Category, names[i]) {
			return fmt.Errorf("%w: %s", ErrInUse, names[i])
		}
	}
	return l.write(ctx, append(names[:i:i], names[i+1:]...))
}

func (l *List) read(ctx context.Context) []string {
	data, err := l.store.Get(ctx, Key)
	if err != nil {
		l.log.Error("failed to read categories", "error", err)
	}
	if len(data) == 0 {
		return append([]string(nil), l.defaults...)
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		l.log.Error("failed to decode categories", "error", err)
		return append([]string(nil), l.defaults...)
	}
	return names
}

func (l *List) write(ctx context.Context, names []string) error {
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	return l.store.Set(ctx, Key, data)
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if sameName(n, name) {
			return i
		}
	}
	return -1
}

// sameName compares names after Unicode normalization and case folding.
func sameName(a, b string) bool {
	fold := cases.Fold()
	return fold.String(norm.NFC.String(strings.TrimSpace(a))) == fold.String(norm.NFC.String(strings.TrimSpace(b)))
}
