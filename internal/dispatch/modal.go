package dispatch

import (
	"log/slog"
	"sync"

	"github.com/SoarinFerret/TimerWarden/internal/dedup"
	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

// ModalState is what the presentation layer renders.
type ModalState struct {
	Visible   bool   `json:"visible"`
	TimerName string `json:"timerName"`
	TimerID   string `json:"timerId,omitempty"`
}

// Modal is the "timer complete" prompt. It shows the first pending
// completion; dismissing it clears every completed timer at once.
type Modal struct {
	registry *dedup.Registry
	store    Store
	log      *slog.Logger

	mu    sync.Mutex
	state ModalState
}

func NewModal(registry *dedup.Registry, store Store, log *slog.Logger) *Modal {
	if log == nil {
		log = slog.Default()
	}
	return &Modal{registry: registry, store: store, log: log}
}

// Show asks for the modal for timer id. Each id is offered at most once
// until it is dismissed. It reports whether the request was new.
func (m *Modal) Show(name, id string) bool {
	if !m.registry.TryClaim(dedup.Modal, id) {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Visible {
		m.state = ModalState{Visible: true, TimerName: name, TimerID: id}
	}
	return true
}

// Hide dismisses the modal, removes every completed timer from the store in
// one step and forgets all tracking for them. It returns the purged ids.
func (m *Modal) Hide() []string {
	m.mu.Lock()
	shown := m.state.TimerID
	m.state = ModalState{}
	m.mu.Unlock()

	if shown != "" {
		m.registry.Release(dedup.Modal, shown)
	}
	ids := timer.CompletedIDs(m.store.Timers())
	if len(ids) == 0 {
		return nil
	}
	m.store.Dispatch(timer.Remove(ids...))
	m.registry.ReleaseAll(ids...)
	m.log.Info("completions dismissed", "timers", len(ids))
	return ids
}

// Forget releases the modal claim for id and hides the modal if it is
// showing id.
func (m *Modal) Forget(id string) {
	m.registry.Release(dedup.Modal, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Visible && m.state.TimerID == id {
		m.state = ModalState{}
	}
}

func (m *Modal) State() ModalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
