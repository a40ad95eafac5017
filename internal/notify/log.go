package notify

import (
	"context"
	"log/slog"
)

// LogSender writes notifications to the log. It is always part of the
// daemon's sender set so a notification is never lost silently.
type LogSender struct {
	Log *slog.Logger
}

func (l LogSender) Send(ctx context.Context, n Notification) error {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "notification", "key", n.Key, "title", n.Title, "body", n.Body)
	return nil
}
