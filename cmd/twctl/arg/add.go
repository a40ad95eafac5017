package arg

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/TimerWarden/internal/ipc"
)

var (
	addCategory string
	addAlert    time.Duration
	addHalfway  bool
	addStart    bool
)

var addCmd = &cobra.Command{
	Use:   "add <name> <duration>",
	Short: "Add a timer, e.g. twctl add Tea 3m --category Break",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, alertAt, err := parseAddArgs(args[1], addAlert, addHalfway)
		if err != nil {
			return err
		}
		return withClient(func(c *ipc.Client) error {
			id, err := c.AddTimer(args[0], addCategory, duration, alertAt)
			if err != nil {
				return err
			}
			if addStart {
				if err := c.StartTimer(id); err != nil {
					return err
				}
			}
			if outputFormat == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{"id": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", args[0], id)
			return nil
		})
	},
}

// parseAddArgs turns "3m" or "180" into seconds and resolves the alert.
func parseAddArgs(raw string, alert time.Duration, halfway bool) (int, int, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		secs, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return 0, 0, fmt.Errorf("invalid duration %q: use 90s, 25m or a number of seconds", raw)
		}
		d = time.Duration(secs) * time.Second
	}
	duration := int(d / time.Second)

	alertAt := int(alert / time.Second)
	if halfway {
		if alert != 0 {
			return 0, 0, fmt.Errorf("--alert and --halfway are exclusive")
		}
		alertAt = duration / 2
	}
	return duration, alertAt, nil
}

func init() {
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "Work", "category of the timer")
	addCmd.Flags().DurationVar(&addAlert, "alert", 0, "alert when this much time remains")
	addCmd.Flags().BoolVar(&addHalfway, "halfway", false, "alert at the halfway point")
	addCmd.Flags().BoolVarP(&addStart, "start", "s", false, "start the timer right away")
	rootCmd.AddCommand(addCmd)
}
