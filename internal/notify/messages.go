package notify

import (
	"fmt"
	"time"

	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

// Completion is the message sent when t finishes.
func Completion(t timer.Timer, at time.Time) Notification {
	return Notification{
		Key:    CompleteKey(t.ID),
		Title:  "Timer Complete",
		Body:   fmt.Sprintf("%s is complete!", t.Name),
		FireAt: at,
	}
}

// Alert is the message sent when t reaches its alert threshold.
func Alert(t timer.Timer, at time.Time) Notification {
	body := fmt.Sprintf("%s has %s remaining", t.Name, timer.FormatSeconds(t.Remaining))
	if t.AlertAt != nil && *t.AlertAt == t.Duration/2 {
		body = fmt.Sprintf("%s is halfway done!", t.Name)
	}
	return Notification{
		Key:    AlertKey(t.ID),
		Title:  "Timer Alert",
		Body:   body,
		FireAt: at,
	}
}
