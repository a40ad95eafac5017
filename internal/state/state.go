package state

import "github.com/SoarinFerret/TimerWarden/internal/timer"

// Summary counts timers by status.
type Summary struct {
	Total     int `json:"total"`
	Idle      int `json:"idle"`
	Running   int `json:"running"`
	Paused    int `json:"paused"`
	Completed int `json:"completed"`
}

func Summarize(timers []timer.Timer) Summary {
	s := Summary{Total: len(timers)}
	for _, t := range timers {
		switch t.Status {
		case timer.StatusIdle:
			s.Idle++
		case timer.StatusRunning:
			s.Running++
		case timer.StatusPaused:
			s.Paused++
		case timer.StatusCompleted:
			s.Completed++
		}
	}
	return s
}

func (m *Manager) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Summarize(m.timers)
}
