package state

import (
	"errors"
	"testing"

	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

func TestHandleStartPauseReset(t *testing.T) {
	tea := timer.New("Tea", "Break", 180, 0)
	m := tempManager(t, tea)

	if err := m.HandleStart(tea.ID); err != nil {
		t.Fatalf("HandleStart: %v", err)
	}
	m.Dispatch(timer.Tick(tea.ID))
	if err := m.HandlePause(tea.ID); err != nil {
		t.Fatalf("HandlePause: %v", err)
	}
	got, _ := m.Get(tea.ID)
	if got.Status != timer.StatusPaused || got.Remaining != 179 {
		t.Errorf("after pause got %s/%d, want paused/179", got.Status, got.Remaining)
	}

	if err := m.HandleReset(tea.ID); err != nil {
		t.Fatalf("HandleReset: %v", err)
	}
	got, _ = m.Get(tea.ID)
	if got.Status != timer.StatusIdle || got.Remaining != 180 {
		t.Errorf("after reset got %s/%d, want idle/180", got.Status, got.Remaining)
	}
}

func TestHandleUnknownTimer(t *testing.T) {
	m := tempManager(t)
	for name, fn := range map[string]func(string) error{
		"start":  m.HandleStart,
		"pause":  m.HandlePause,
		"reset":  m.HandleReset,
		"remove": m.HandleRemove,
	} {
		if err := fn("nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: got %v, want ErrNotFound", name, err)
		}
	}
}

func TestHandleCategory(t *testing.T) {
	a := timer.New("A", "Work", 10, 0)
	b := timer.New("B", "Work", 10, 0)
	c := timer.New("C", "Break", 10, 0)
	m := tempManager(t, a, b, c)

	if n := m.HandleCategory("Work", timer.Start); n != 2 {
		t.Errorf("HandleCategory touched %d timers, want 2", n)
	}
	running := m.RunningIDs()
	if len(running) != 2 || running[0] != a.ID || running[1] != b.ID {
		t.Errorf("running = %v, want Work timers only", running)
	}
}

func TestPurgeCompleted(t *testing.T) {
	a := timer.New("A", "Work", 10, 0)
	b := timer.New("B", "Work", 10, 0)
	c := timer.New("C", "Break", 10, 0)
	m := tempManager(t, a, b, c)
	m.Dispatch(timer.CompleteMultiple(a.ID, c.ID))

	purged := m.PurgeCompleted()

	if len(purged) != 2 {
		t.Fatalf("purged %v, want two ids", purged)
	}
	left := m.Timers()
	if len(left) != 1 || left[0].ID != b.ID {
		t.Errorf("left = %+v, want only B", left)
	}
	if again := m.PurgeCompleted(); len(again) != 0 {
		t.Errorf("second purge removed %v", again)
	}
}

func TestHandleRemove(t *testing.T) {
	a := timer.New("A", "Work", 10, 0)
	m := tempManager(t, a)
	if err := m.HandleRemove(a.ID); err != nil {
		t.Fatalf("HandleRemove: %v", err)
	}
	if len(m.Timers()) != 0 {
		t.Errorf("timer still present after remove")
	}
}
