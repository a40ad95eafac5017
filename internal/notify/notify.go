// Package notify schedules user-facing notifications and delivers them
// through one or more senders.
package notify

import (
	"context"
	"errors"
	"time"
)

// Notification is one message due at FireAt. Key identifies it for
// rescheduling and cancellation, e.g. "<timer id>-complete".
type Notification struct {
	Key    string
	Title  string
	Body   string
	FireAt time.Time
}

// Sender delivers a notification right away.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// CompleteKey and AlertKey name the two notifications a timer can raise.
func CompleteKey(id string) string { return id + "-complete" }
func AlertKey(id string) string    { return id + "-alert" }

// Multi delivers to every sender and joins their errors.
type Multi []Sender

func (m Multi) Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
