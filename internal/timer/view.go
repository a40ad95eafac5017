package timer

import "fmt"

// Find returns a pointer into timers for id, or nil.
func Find(timers []Timer, id string) *Timer {
	for i := range timers {
		if timers[i].ID == id {
			return &timers[i]
		}
	}
	return nil
}

// RunningIDs lists running timers in collection order.
func RunningIDs(timers []Timer) []string {
	var ids []string
	for _, t := range timers {
		if t.IsRunning() {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// CompletedIDs lists completed timers in collection order.
func CompletedIDs(timers []Timer) []string {
	var ids []string
	for _, t := range timers {
		if t.IsCompleted() {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func AnyRunning(timers []Timer) bool {
	for _, t := range timers {
		if t.IsRunning() {
			return true
		}
	}
	return false
}

// Active drops completed timers; they only show up in history.
func Active(timers []Timer) []Timer {
	out := make([]Timer, 0, len(timers))
	for _, t := range timers {
		if !t.IsCompleted() {
			out = append(out, t)
		}
	}
	return out
}

// Group is the timers of one category.
type Group struct {
	Category  string  `json:"category"`
	Timers    []Timer `json:"timers"`
	Running   int     `json:"running"`
	Completed int     `json:"completed"`
}

// GroupByCategory groups timers keeping the order in which each category
// first appears.
func GroupByCategory(timers []Timer) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, t := range timers {
		i, ok := index[t.Category]
		if !ok {
			i = len(groups)
			index[t.Category] = i
			groups = append(groups, Group{Category: t.Category})
		}
		g := &groups[i]
		g.Timers = append(g.Timers, t)
		switch t.Status {
		case StatusRunning:
			g.Running++
		case StatusCompleted:
			g.Completed++
		}
	}
	return groups
}

// InCategory returns the ids of timers in category.
func InCategory(timers []Timer, category string) []string {
	var ids []string
	for _, t := range timers {
		if t.Category == category {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// FormatSeconds renders seconds as mm:ss. Minutes are not wrapped into hours.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
