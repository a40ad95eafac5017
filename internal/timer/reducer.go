package timer

// Reduce applies action to timers and returns the new collection. The input
// slice and its timers are never modified.
func Reduce(timers []Timer, action Action) []Timer {
	switch action.Type {
	case ActionAdd:
		if Find(timers, action.Timer.ID) != nil {
			return timers
		}
		t := action.Timer.Clone()
		t.Status = StatusIdle
		t.Remaining = t.Duration
		t.AlertTriggered = false
		out := make([]Timer, 0, len(timers)+1)
		out = append(out, timers...)
		return append(out, t)

	case ActionStart:
		return update(timers, action.ID, func(t Timer) Timer {
			if t.Status == StatusIdle || t.Status == StatusPaused {
				t.Status = StatusRunning
			}
			return t
		})

	case ActionPause:
		return update(timers, action.ID, func(t Timer) Timer {
			if t.Status == StatusRunning {
				t.Status = StatusPaused
			}
			return t
		})

	case ActionReset:
		return update(timers, action.ID, func(t Timer) Timer {
			t.Status = StatusIdle
			t.Remaining = t.Duration
			t.AlertTriggered = false
			return t
		})

	case ActionTick:
		return update(timers, action.ID, func(t Timer) Timer {
			if t.Status != StatusRunning {
				return t
			}
			return Advance(t, 1)
		})

	case ActionComplete:
		return update(timers, action.ID, complete)

	case ActionCompleteMultiple:
		out := timers
		for _, id := range action.IDs {
			out = update(out, id, complete)
		}
		return out

	case ActionLoad:
		return CloneAll(action.Timers)

	case ActionRemove:
		drop := make(map[string]struct{}, len(action.IDs))
		for _, id := range action.IDs {
			drop[id] = struct{}{}
		}
		out := make([]Timer, 0, len(timers))
		for _, t := range timers {
			if _, ok := drop[t.ID]; !ok {
				out = append(out, t)
			}
		}
		if len(out) == len(timers) {
			return timers
		}
		return out
	}
	return timers
}

// Advance moves a running timer forward by n seconds in one step. The alert
// fires only when the new remaining value lands exactly on AlertAt; a batch
// that jumps over the threshold does not trigger it.
func Advance(t Timer, n int) Timer {
	if t.Status != StatusRunning || n <= 0 {
		return t
	}
	remaining := t.Remaining - n
	if remaining < 0 {
		remaining = 0
	}
	if t.AlertAt != nil && !t.AlertTriggered && remaining == *t.AlertAt {
		t.AlertTriggered = true
	}
	if remaining <= 0 {
		t.Status = StatusCompleted
		t.Remaining = 0
		return t
	}
	t.Remaining = remaining
	return t
}

func complete(t Timer) Timer {
	t.Status = StatusCompleted
	t.Remaining = 0
	return t
}

// update copies timers, replacing the one matching id with fn's result.
// An unknown id, or an fn that changes nothing, returns the input slice.
func update(timers []Timer, id string, fn func(Timer) Timer) []Timer {
	for i := range timers {
		if timers[i].ID != id {
			continue
		}
		t := fn(timers[i].Clone())
		if t.Equal(timers[i]) {
			return timers
		}
		out := make([]Timer, len(timers))
		copy(out, timers)
		out[i] = t
		return out
	}
	return timers
}
