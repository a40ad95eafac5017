package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
)

type pending struct {
	timer clockwork.Timer
	gen   uint64
}

// Scheduler holds notifications until they are due. Scheduling a key that
// is still pending replaces it. Scheduling a key that has already fired is
// ignored until the key is cancelled, so two code paths reporting the same
// completion produce one notification.
type Scheduler struct {
	sender Sender
	clock  clockwork.Clock
	log    *slog.Logger

	mu      sync.Mutex
	gen     uint64
	pending map[string]pending
	fired   map[string]struct{}
	stopped bool
}

type Option func(*Scheduler)

func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

func NewScheduler(sender Sender, opts ...Option) *Scheduler {
	s := &Scheduler{
		sender:  sender,
		clock:   clockwork.NewRealClock(),
		log:     slog.Default(),
		pending: make(map[string]pending),
		fired:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule arranges for n to be sent at n.FireAt, or immediately if that
// time has passed.
func (s *Scheduler) Schedule(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	if _, done := s.fired[n.Key]; done {
		s.log.Debug("notification already delivered", "key", n.Key)
		return nil
	}
	if p, ok := s.pending[n.Key]; ok {
		p.timer.Stop()
	}

	delay := n.FireAt.Sub(s.clock.Now())
	if delay < 0 {
		delay = 0
	}
	s.gen++
	gen := s.gen
	s.pending[n.Key] = pending{
		timer: s.clock.AfterFunc(delay, func() { s.fire(gen, n) }),
		gen:   gen,
	}
	s.log.Debug("notification scheduled", "key", n.Key, "in", delay)
	return nil
}

func (s *Scheduler) fire(gen uint64, n Notification) {
	s.mu.Lock()
	p, ok := s.pending[n.Key]
	if !ok || p.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.pending, n.Key)
	s.fired[n.Key] = struct{}{}
	s.mu.Unlock()

	if err := s.sender.Send(context.Background(), n); err != nil {
		s.log.Warn("failed to deliver notification", "key", n.Key, "error", err)
	}
}

// Cancel drops a pending notification and forgets that key ever fired.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pending[key]; ok {
		p.timer.Stop()
		delete(s.pending, key)
	}
	delete(s.fired, key)
}

// Pending reports whether key is waiting to fire.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// Stop cancels everything pending. Later calls to Schedule do nothing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, key)
	}
	s.stopped = true
}
