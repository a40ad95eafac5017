package arg

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/SoarinFerret/TimerWarden/internal/history"
	"github.com/SoarinFerret/TimerWarden/internal/ipc"
	"github.com/SoarinFerret/TimerWarden/internal/timer"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printGroups(w io.Writer, groups []timer.Group) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "No timers.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\n", g.Category)
		for _, t := range g.Timers {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
				t.ID, t.Name, t.Status, timer.FormatSeconds(t.Remaining), alertLabel(t))
		}
	}
	return tw.Flush()
}

func alertLabel(t timer.Timer) string {
	if t.AlertAt == nil {
		return ""
	}
	label := "alert at " + timer.FormatSeconds(*t.AlertAt)
	if t.AlertTriggered {
		label += " (sent)"
	}
	return label
}

func printHistory(w io.Writer, items []history.Item) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No completed timers.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPLETED\tNAME\tCATEGORY\tDURATION")
	for _, it := range items {
		at := time.UnixMilli(it.CompletedAt).Local().Format("2006-01-02 15:04")
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", at, it.Name, it.Category, timer.FormatSeconds(it.Duration))
	}
	return tw.Flush()
}

func printStatus(w io.Writer, s ipc.Status) error {
	_, err := fmt.Fprintf(w, "Mode: %s\nTimers: %d total, %d running, %d paused, %d idle, %d completed\n",
		s.Mode, s.Timers.Total, s.Timers.Running, s.Timers.Paused, s.Timers.Idle, s.Timers.Completed)
	return err
}
