// Package background keeps timers counting down while the session is
// asleep or locked. It works on its own copy of the collection and leaves
// its progress in the background snapshot for the foreground to reconcile.
package background

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"github.com/SoarinFerret/TimerWarden/internal/dedup"
	"github.com/SoarinFerret/TimerWarden/internal/notify"
	"github.com/SoarinFerret/TimerWarden/internal/persist"
	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

const DefaultPeriod = time.Second

type Snapshotter interface {
	SaveSnapshot(ctx context.Context, snap persist.Snapshot) error
}

type Scheduler interface {
	Schedule(ctx context.Context, n notify.Notification) error
}

// Driver steps its working copy once per period on a gocron job.
type Driver struct {
	cron      gocron.Scheduler
	snapshots Snapshotter
	notifier  Scheduler
	clock     clockwork.Clock
	period    time.Duration
	offset    time.Duration
	log       *slog.Logger

	mu       sync.Mutex
	job      gocron.Job
	timers   []timer.Timer
	notified *dedup.Registry
}

type Option func(*Driver)

func WithClock(c clockwork.Clock) Option { return func(d *Driver) { d.clock = c } }
func WithLogger(l *slog.Logger) Option   { return func(d *Driver) { d.log = l } }

func WithPeriod(p time.Duration) Option {
	return func(d *Driver) {
		if p > 0 {
			d.period = p
		}
	}
}

// WithNotificationOffset sets how far ahead completion notifications are
// scheduled.
func WithNotificationOffset(o time.Duration) Option {
	return func(d *Driver) {
		if o > 0 {
			d.offset = o
		}
	}
}

// New creates the driver and its gocron scheduler. Close releases it.
func New(snapshots Snapshotter, notifier Scheduler, opts ...Option) (*Driver, error) {
	d := &Driver{
		snapshots: snapshots,
		notifier:  notifier,
		clock:     clockwork.NewRealClock(),
		period:    DefaultPeriod,
		offset:    time.Second,
		log:       slog.Default(),
		notified:  dedup.NewRegistry(),
	}
	for _, opt := range opts {
		opt(d)
	}

	cron, err := gocron.NewScheduler(gocron.WithClock(d.clock))
	if err != nil {
		return nil, fmt.Errorf("create background scheduler: %w", err)
	}
	d.cron = cron
	d.cron.Start()
	return d, nil
}

// Start copies timers, writes them to the snapshot and begins stepping
// them. It reports false, and schedules nothing, when no timer is running.
// A driver that is already active is stopped first.
func (d *Driver) Start(timers []timer.Timer) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.timers = timer.CloneAll(timers)
	if !timer.AnyRunning(timers) {
		// keep the snapshot in step with the collection even when idle
		d.persistLocked()
		d.timers = nil
		d.log.Debug("no running timers, background driver not started")
		return false, nil
	}

	for _, t := range d.timers {
		// a timer reset since the last run may complete again
		if !t.IsCompleted() {
			d.notified.Release(dedup.Completed, t.ID)
		}
		if !t.AlertTriggered {
			d.notified.Release(dedup.Alert, t.ID)
		}
	}
	d.persistLocked()

	job, err := d.cron.NewJob(
		gocron.DurationJob(d.period),
		gocron.NewTask(d.step),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		d.timers = nil
		return false, fmt.Errorf("schedule background job: %w", err)
	}
	d.job = job
	d.log.Info("background driver started", "running", len(timer.RunningIDs(d.timers)))
	return true, nil
}

// Stop halts stepping. Calling it when the driver is idle is a no-op. Once
// Stop returns no further step runs.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *Driver) stopLocked() {
	if d.job == nil {
		return
	}
	if err := d.cron.RemoveJob(d.job.ID()); err != nil {
		d.log.Warn("failed to remove background job", "error", err)
	}
	d.job = nil
	d.timers = nil
	d.log.Info("background driver stopped")
}

// Active reports whether a job is scheduled.
func (d *Driver) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.job != nil
}

// Timers returns a copy of the working set.
func (d *Driver) Timers() []timer.Timer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return timer.CloneAll(d.timers)
}

// Close stops the driver and shuts the scheduler down.
func (d *Driver) Close() error {
	d.Stop()
	return d.cron.Shutdown()
}

func (d *Driver) step() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.job == nil || !timer.AnyRunning(d.timers) {
		return
	}

	ctx := context.Background()
	now := d.clock.Now()
	for i, t := range d.timers {
		if !t.IsRunning() {
			continue
		}
		next := timer.Advance(t, 1)
		d.timers[i] = next

		if next.IsCompleted() && d.notified.TryClaim(dedup.Completed, t.ID) {
			d.log.Info("timer completed in background", "timer", t.ID, "name", t.Name)
			d.schedule(ctx, notify.Completion(next, now.Add(d.offset)))
		}
		if next.AlertTriggered && !t.AlertTriggered && d.notified.TryClaim(dedup.Alert, t.ID) {
			d.schedule(ctx, notify.Alert(next, now.Add(d.offset)))
		}
	}
	d.persistLocked()
}

func (d *Driver) schedule(ctx context.Context, n notify.Notification) {
	if err := d.notifier.Schedule(ctx, n); err != nil {
		d.log.Warn("failed to schedule notification", "key", n.Key, "error", err)
	}
}

func (d *Driver) persistLocked() {
	snap := persist.Snapshot{
		Timers:     timer.CloneAll(d.timers),
		LastUpdate: d.clock.Now().UnixMilli(),
	}
	if err := d.snapshots.SaveSnapshot(context.Background(), snap); err != nil {
		d.log.Error("failed to save background snapshot", "error", err)
	}
}
