package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func running(id string, duration, remaining int) Timer {
	return Timer{ID: id, Name: id, Category: "Work", Duration: duration, Remaining: remaining, Status: StatusRunning}
}

func TestReduce_AddNormalizesNewTimer(t *testing.T) {
	in := Timer{ID: "a", Name: "Tea", Category: "Break", Duration: 180, Remaining: 3, Status: StatusRunning, AlertTriggered: true}

	out := Reduce(nil, Add(in))

	require.Len(t, out, 1)
	assert.Equal(t, StatusIdle, out[0].Status)
	assert.Equal(t, 180, out[0].Remaining)
	assert.False(t, out[0].AlertTriggered)
}

func TestReduce_AddIgnoresDuplicateID(t *testing.T) {
	state := Reduce(nil, Add(Timer{ID: "a", Duration: 5}))
	out := Reduce(state, Add(Timer{ID: "a", Duration: 9}))
	require.Len(t, out, 1)
	assert.Equal(t, 5, out[0].Duration)
}

func TestReduce_StartPauseTransitions(t *testing.T) {
	tests := []struct {
		name   string
		from   Status
		action func(string) Action
		want   Status
	}{
		{"start idle", StatusIdle, Start, StatusRunning},
		{"start paused", StatusPaused, Start, StatusRunning},
		{"start running is no-op", StatusRunning, Start, StatusRunning},
		{"start completed is no-op", StatusCompleted, Start, StatusCompleted},
		{"pause running", StatusRunning, Pause, StatusPaused},
		{"pause idle is no-op", StatusIdle, Pause, StatusIdle},
		{"pause completed is no-op", StatusCompleted, Pause, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remaining := 10
			if tt.from == StatusCompleted {
				remaining = 0
			}
			state := []Timer{{ID: "a", Duration: 10, Remaining: remaining, Status: tt.from}}
			out := Reduce(state, tt.action("a"))
			assert.Equal(t, tt.want, out[0].Status)
			assert.Equal(t, remaining, out[0].Remaining)
		})
	}
}

func TestReduce_StartCompletedLeavesStateUnchanged(t *testing.T) {
	state := []Timer{{ID: "a", Duration: 10, Remaining: 0, Status: StatusCompleted, AlertAt: intPtr(4), AlertTriggered: true}}
	out := Reduce(state, Start("a"))
	assert.Equal(t, state, out)
}

func TestReduce_ResetFromEveryState(t *testing.T) {
	for _, status := range []Status{StatusIdle, StatusRunning, StatusPaused, StatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			state := []Timer{{ID: "a", Duration: 30, Remaining: 0, Status: status, AlertAt: intPtr(10), AlertTriggered: true}}
			out := Reduce(state, Reset("a"))
			assert.Equal(t, StatusIdle, out[0].Status)
			assert.Equal(t, 30, out[0].Remaining)
			assert.False(t, out[0].AlertTriggered)
		})
	}
}

func TestReduce_TickOnlyAffectsRunning(t *testing.T) {
	state := []Timer{
		{ID: "idle", Duration: 5, Remaining: 5, Status: StatusIdle},
		{ID: "paused", Duration: 5, Remaining: 3, Status: StatusPaused},
	}
	out := Reduce(state, Tick("idle"))
	out = Reduce(out, Tick("paused"))
	assert.Equal(t, state, out)
}

func TestReduce_TickCompletesAtZero(t *testing.T) {
	state := []Timer{running("a", 2, 2)}

	state = Reduce(state, Tick("a"))
	assert.Equal(t, 1, state[0].Remaining)
	assert.Equal(t, StatusRunning, state[0].Status)

	state = Reduce(state, Tick("a"))
	assert.Equal(t, 0, state[0].Remaining)
	assert.Equal(t, StatusCompleted, state[0].Status)

	state = Reduce(state, Tick("a"))
	assert.Equal(t, 0, state[0].Remaining)
	assert.Equal(t, StatusCompleted, state[0].Status)
}

func TestReduce_RemainingZeroIffCompleted(t *testing.T) {
	state := []Timer{running("a", 3, 3), running("b", 7, 7), running("c", 1, 1)}
	for i := 0; i < 10; i++ {
		for _, id := range []string{"a", "b", "c"} {
			state = Reduce(state, Tick(id))
			for _, tm := range state {
				assert.Equal(t, tm.Remaining == 0, tm.Status == StatusCompleted, "timer %s", tm.ID)
			}
		}
	}
}

func TestReduce_AlertTriggersOnceAtThreshold(t *testing.T) {
	tm := running("a", 10, 10)
	tm.AlertAt = intPtr(4)
	state := []Timer{tm}

	triggeredAt := -1
	for i := 0; i < 6; i++ {
		before := state[0].AlertTriggered
		state = Reduce(state, Tick("a"))
		if !before && state[0].AlertTriggered {
			require.Equal(t, -1, triggeredAt, "alert flipped twice")
			triggeredAt = state[0].Remaining
		}
	}

	assert.Equal(t, 4, triggeredAt)
	assert.True(t, state[0].AlertTriggered)
}

func TestReduce_TickDoesNotMutateInput(t *testing.T) {
	tm := running("a", 10, 5)
	tm.AlertAt = intPtr(4)
	state := []Timer{tm}

	out := Reduce(state, Tick("a"))

	assert.Equal(t, 5, state[0].Remaining)
	assert.False(t, state[0].AlertTriggered)
	assert.Equal(t, 4, out[0].Remaining)
	assert.True(t, out[0].AlertTriggered)
}

func TestReduce_CompleteAndCompleteMultiple(t *testing.T) {
	state := []Timer{running("a", 10, 5), {ID: "b", Duration: 4, Remaining: 4, Status: StatusPaused}, running("c", 3, 3)}

	out := Reduce(state, Complete("a"))
	assert.Equal(t, StatusCompleted, out[0].Status)
	assert.Equal(t, 0, out[0].Remaining)

	out = Reduce(state, CompleteMultiple("b", "c", "missing"))
	assert.Equal(t, StatusRunning, out[0].Status)
	for _, tm := range out[1:] {
		assert.Equal(t, StatusCompleted, tm.Status)
		assert.Equal(t, 0, tm.Remaining)
	}
}

func TestReduce_LoadReplacesCollection(t *testing.T) {
	state := []Timer{running("a", 10, 5)}
	loaded := []Timer{running("b", 3, 2)}

	out := Reduce(state, Load(loaded))

	assert.Equal(t, loaded, out)
	loaded[0].Remaining = 99
	assert.Equal(t, 2, out[0].Remaining, "load must copy its input")
}

func TestReduce_RemoveDropsListedIDs(t *testing.T) {
	state := []Timer{running("a", 1, 1), running("b", 1, 1), running("c", 1, 1)}
	out := Reduce(state, Remove("a", "c"))
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)
	assert.Len(t, state, 3)
}

func TestAdvance_BatchSkipsThreshold(t *testing.T) {
	tm := running("a", 60, 30)
	tm.AlertAt = intPtr(20)

	jumped := Advance(tm, 15)
	assert.Equal(t, 15, jumped.Remaining)
	assert.False(t, jumped.AlertTriggered)

	landed := Advance(tm, 10)
	assert.True(t, landed.AlertTriggered)

	done := Advance(tm, 500)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, 0, done.Remaining)
}

func TestReduce_UnknownIDIsNoop(t *testing.T) {
	state := []Timer{running("a", 10, 5)}
	for _, action := range []Action{Start("x"), Pause("x"), Reset("x"), Tick("x"), Complete("x")} {
		assert.Equal(t, state, Reduce(state, action), string(action.Type))
	}
}
