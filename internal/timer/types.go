package timer

import "github.com/google/uuid"

// Status is the lifecycle state of a Timer.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Timer is a named countdown. Durations are whole seconds.
type Timer struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Category       string `json:"category" yaml:"category"`
	Duration       int    `json:"duration" yaml:"duration"`
	Remaining      int    `json:"remaining" yaml:"remaining"`
	Status         Status `json:"status" yaml:"status"`
	AlertAt        *int   `json:"alertAt,omitempty" yaml:"alertAt,omitempty"`
	AlertTriggered bool   `json:"alertTriggered" yaml:"alertTriggered"`
}

// New builds an idle timer with a fresh id. alertAt <= 0 means no alert.
func New(name, category string, duration, alertAt int) Timer {
	t := Timer{
		ID:        NewID(),
		Name:      name,
		Category:  category,
		Duration:  duration,
		Remaining: duration,
		Status:    StatusIdle,
	}
	if alertAt > 0 {
		t.AlertAt = &alertAt
	}
	return t
}

// NewID returns a time-sortable UUIDv7 string.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func (t Timer) IsRunning() bool {
	return t.Status == StatusRunning
}

func (t Timer) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// Clone returns a copy that shares no memory with t.
func (t Timer) Clone() Timer {
	if t.AlertAt != nil {
		v := *t.AlertAt
		t.AlertAt = &v
	}
	return t
}

// Equal compares by value, including the AlertAt threshold.
func (t Timer) Equal(o Timer) bool {
	if (t.AlertAt == nil) != (o.AlertAt == nil) {
		return false
	}
	if t.AlertAt != nil && *t.AlertAt != *o.AlertAt {
		return false
	}
	t.AlertAt, o.AlertAt = nil, nil
	return t == o
}

// CloneAll deep-copies a collection. A nil input yields an empty slice.
func CloneAll(timers []Timer) []Timer {
	out := make([]Timer, len(timers))
	for i, t := range timers {
		out[i] = t.Clone()
	}
	return out
}

// ActionType names a transition of the timer collection.
type ActionType string

const (
	ActionAdd              ActionType = "ADD_TIMER"
	ActionStart            ActionType = "START_TIMER"
	ActionPause            ActionType = "PAUSE_TIMER"
	ActionReset            ActionType = "RESET_TIMER"
	ActionTick             ActionType = "TICK"
	ActionComplete         ActionType = "COMPLETE_TIMER"
	ActionCompleteMultiple ActionType = "COMPLETE_MULTIPLE_TIMERS"
	ActionLoad             ActionType = "LOAD_TIMERS"
	ActionRemove           ActionType = "REMOVE_TIMERS"
)

// Action is the input of Reduce. Which fields are read depends on Type:
// ID for single-timer actions, IDs for the batch ones, Timer for ADD and
// Timers for LOAD.
type Action struct {
	Type   ActionType
	ID     string
	IDs    []string
	Timer  Timer
	Timers []Timer
}

func Add(t Timer) Action        { return Action{Type: ActionAdd, Timer: t} }
func Start(id string) Action    { return Action{Type: ActionStart, ID: id} }
func Pause(id string) Action    { return Action{Type: ActionPause, ID: id} }
func Reset(id string) Action    { return Action{Type: ActionReset, ID: id} }
func Tick(id string) Action     { return Action{Type: ActionTick, ID: id} }
func Complete(id string) Action { return Action{Type: ActionComplete, ID: id} }
func CompleteMultiple(ids ...string) Action {
	return Action{Type: ActionCompleteMultiple, IDs: ids}
}
func Load(timers []Timer) Action  { return Action{Type: ActionLoad, Timers: timers} }
func Remove(ids ...string) Action { return Action{Type: ActionRemove, IDs: ids} }
