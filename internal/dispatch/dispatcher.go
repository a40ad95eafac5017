// Package dispatch turns timer transitions into their one-time side
// effects: a history entry, a completion notification and the completion
// modal for every completion, and an alert notification when a timer
// reaches its alert threshold.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/SoarinFerret/TimerWarden/internal/dedup"
	"github.com/SoarinFerret/TimerWarden/internal/history"
	"github.com/SoarinFerret/TimerWarden/internal/notify"
	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

const (
	DefaultCompletionOffset = time.Second
	DefaultAlertOffset      = time.Second
)

// Store is the part of state.Manager the dispatcher and modal use.
type Store interface {
	Dispatch(action timer.Action) []timer.Timer
	Timers() []timer.Timer
}

type Scheduler interface {
	Schedule(ctx context.Context, n notify.Notification) error
	Cancel(key string)
}

type History interface {
	Append(ctx context.Context, s history.Summary) error
}

type Dispatcher struct {
	registry  *dedup.Registry
	history   History
	scheduler Scheduler
	modal     *Modal
	clock     clockwork.Clock
	log       *slog.Logger

	completionOffset time.Duration
	alertOffset      time.Duration
}

type Option func(*Dispatcher)

func WithClock(c clockwork.Clock) Option { return func(d *Dispatcher) { d.clock = c } }
func WithLogger(l *slog.Logger) Option   { return func(d *Dispatcher) { d.log = l } }

// WithOffsets sets how far in the future completion and alert
// notifications are scheduled. Non-positive values keep the defaults.
func WithOffsets(completion, alert time.Duration) Option {
	return func(d *Dispatcher) {
		if completion > 0 {
			d.completionOffset = completion
		}
		if alert > 0 {
			d.alertOffset = alert
		}
	}
}

func New(registry *dedup.Registry, hist History, scheduler Scheduler, modal *Modal, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:         registry,
		history:          hist,
		scheduler:        scheduler,
		modal:            modal,
		clock:            clockwork.NewRealClock(),
		log:              slog.Default(),
		completionOffset: DefaultCompletionOffset,
		alertOffset:      DefaultAlertOffset,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnChange is the state.Observer hook.
func (d *Dispatcher) OnChange(prev, next []timer.Timer, _ timer.Action) {
	d.Observe(prev, next)
}

// Observe compares two consecutive collections and performs whatever side
// effects the difference calls for.
func (d *Dispatcher) Observe(prev, next []timer.Timer) {
	before := make(map[string]timer.Timer, len(prev))
	for _, t := range prev {
		before[t.ID] = t
	}

	for _, t := range next {
		old, existed := before[t.ID]
		delete(before, t.ID)

		if existed && old.IsCompleted() && !t.IsCompleted() {
			d.forgetCompletion(t.ID)
		}
		if existed && old.AlertTriggered && !t.AlertTriggered {
			d.forgetAlert(t.ID)
		}

		if t.IsCompleted() && t.Remaining == 0 && (!existed || !old.IsCompleted()) {
			d.HandleCompletion(t)
		}
		if t.AlertTriggered && (!existed || !old.AlertTriggered) {
			d.handleAlert(t)
		}
	}

	// whatever is left was removed from the collection; notifications
	// already scheduled for it still go out
	for id := range before {
		d.modal.Forget(id)
		d.registry.ReleaseAll(id)
	}
}

// HandleCompletion runs the completion side effects for t unless they
// already ran. It reports whether this call performed them.
func (d *Dispatcher) HandleCompletion(t timer.Timer) bool {
	if !d.registry.TryClaim(dedup.Completed, t.ID) {
		return false
	}
	ctx := context.Background()

	d.log.Info("timer completed", "timer", t.ID, "name", t.Name)
	if err := d.history.Append(ctx, history.Summary{
		ID:       t.ID,
		Name:     t.Name,
		Duration: t.Duration,
		Category: t.Category,
	}); err != nil {
		d.log.Error("failed to record history", "timer", t.ID, "error", err)
	}

	if err := d.scheduler.Schedule(ctx, notify.Completion(t, d.clock.Now().Add(d.completionOffset))); err != nil {
		d.log.Warn("failed to schedule completion notification", "timer", t.ID, "error", err)
	}

	d.modal.Show(t.Name, t.ID)
	return true
}

// Acknowledge marks t's completion and alert as handled without recording
// or announcing them. A completed timer is still offered to the modal so it
// can be dismissed.
func (d *Dispatcher) Acknowledge(t timer.Timer) {
	if t.AlertTriggered {
		d.registry.TryClaim(dedup.Alert, t.ID)
	}
	if !t.IsCompleted() {
		return
	}
	if d.registry.TryClaim(dedup.Completed, t.ID) {
		d.log.Debug("completion acknowledged without side effects", "timer", t.ID)
	}
	d.modal.Show(t.Name, t.ID)
}

func (d *Dispatcher) handleAlert(t timer.Timer) {
	if !d.registry.TryClaim(dedup.Alert, t.ID) {
		return
	}
	d.log.Info("timer alert", "timer", t.ID, "remaining", t.Remaining)
	if err := d.scheduler.Schedule(context.Background(), notify.Alert(t, d.clock.Now().Add(d.alertOffset))); err != nil {
		d.log.Warn("failed to schedule alert notification", "timer", t.ID, "error", err)
	}
}

func (d *Dispatcher) forgetCompletion(id string) {
	d.registry.Release(dedup.Completed, id)
	d.modal.Forget(id)
	d.scheduler.Cancel(notify.CompleteKey(id))
}

func (d *Dispatcher) forgetAlert(id string) {
	d.registry.Release(dedup.Alert, id)
	d.scheduler.Cancel(notify.AlertKey(id))
}
