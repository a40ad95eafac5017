package state

import (
	"errors"
	"fmt"

	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

// ErrNotFound is returned for an unknown timer id.
var ErrNotFound = errors.New("timer not found")

func (m *Manager) HandleAdd(t timer.Timer) string {
	m.Dispatch(timer.Add(t))
	return t.ID
}

func (m *Manager) HandleStart(id string) error {
	return m.dispatchKnown(id, timer.Start(id))
}

func (m *Manager) HandlePause(id string) error {
	return m.dispatchKnown(id, timer.Pause(id))
}

func (m *Manager) HandleReset(id string) error {
	return m.dispatchKnown(id, timer.Reset(id))
}

func (m *Manager) HandleRemove(id string) error {
	return m.dispatchKnown(id, timer.Remove(id))
}

// HandleCategory applies fn to every timer in category and returns how many
// timers it touched.
func (m *Manager) HandleCategory(category string, fn func(id string) timer.Action) int {
	ids := timer.InCategory(m.Timers(), category)
	for _, id := range ids {
		m.Dispatch(fn(id))
	}
	return len(ids)
}

// PurgeCompleted removes every completed timer in one step and returns their ids.
func (m *Manager) PurgeCompleted() []string {
	ids := timer.CompletedIDs(m.Timers())
	if len(ids) > 0 {
		m.Dispatch(timer.Remove(ids...))
	}
	return ids
}

func (m *Manager) dispatchKnown(id string, action timer.Action) error {
	if _, ok := m.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.Dispatch(action)
	return nil
}
