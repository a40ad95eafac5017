package arg

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/TimerWarden/internal/history"
	"github.com/SoarinFerret/TimerWarden/internal/ipc"
	"github.com/SoarinFerret/TimerWarden/internal/state"
	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

func TestParseAddArgs(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		alert    time.Duration
		halfway  bool
		duration int
		alertAt  int
		wantErr  bool
	}{
		{"minutes", "3m", 0, false, 180, 0, false},
		{"bare seconds", "90", 0, false, 90, 0, false},
		{"alert", "25m", 5 * time.Minute, false, 1500, 300, false},
		{"halfway", "25m", 0, true, 1500, 750, false},
		{"halfway odd", "7", 0, true, 7, 3, false},
		{"both", "25m", time.Minute, true, 0, 0, true},
		{"garbage", "soon", 0, false, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			duration, alertAt, err := parseAddArgs(tt.raw, tt.alert, tt.halfway)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.duration, duration)
			assert.Equal(t, tt.alertAt, alertAt)
		})
	}
}

func TestPrintGroups(t *testing.T) {
	alert := 60
	groups := []timer.Group{{
		Category: "Break",
		Timers: []timer.Timer{
			{ID: "tea", Name: "Tea", Category: "Break", Duration: 180, Remaining: 95, Status: timer.StatusRunning, AlertAt: &alert},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, printGroups(&buf, groups))
	out := buf.String()
	assert.Contains(t, out, "Break\n")
	assert.Contains(t, out, "Tea")
	assert.Contains(t, out, "01:35")
	assert.Contains(t, out, "alert at 01:00")

	buf.Reset()
	require.NoError(t, printGroups(&buf, nil))
	assert.Equal(t, "No timers.\n", buf.String())
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printHistory(&buf, []history.Item{
		{ID: "tea", Name: "Tea", Category: "Break", Duration: 180, CompletedAt: time.Now().UnixMilli()},
	}))
	assert.Contains(t, buf.String(), "COMPLETED")
	assert.Contains(t, buf.String(), "03:00")
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printStatus(&buf, ipc.Status{
		Mode:   "background",
		Timers: state.Summary{Total: 3, Running: 1, Idle: 2},
	}))
	assert.Equal(t, "Mode: background\nTimers: 3 total, 1 running, 0 paused, 2 idle, 0 completed\n", buf.String())
}

func TestRootRejectsUnknownFormat(t *testing.T) {
	rootCmd.SetArgs([]string{"--format", "xml", "mode", "foreground"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		outputFormat = "text"
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
