package arg

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/TimerWarden/internal/ipc"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show completed timers, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *ipc.Client) error {
			items, err := c.History()
			if err != nil {
				return err
			}
			if outputFormat == "json" {
				return printJSON(cmd.OutOrStdout(), items)
			}
			return printHistory(cmd.OutOrStdout(), items)
		})
	},
}

var clearHistoryCmd = &cobra.Command{
	Use:   "clear-history",
	Short: "Delete the completion history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *ipc.Client) error {
			if err := c.ClearHistory(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return nil
		})
	},
}

var clearAllYes bool

var clearAllCmd = &cobra.Command{
	Use:   "clear-all",
	Short: "Delete every timer, the history and custom categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearAllYes {
			return fmt.Errorf("refusing to delete all data without --yes")
		}
		return withClient(func(c *ipc.Client) error {
			return c.ClearAllData()
		})
	},
}

func init() {
	clearAllCmd.Flags().BoolVar(&clearAllYes, "yes", false, "confirm")
	rootCmd.AddCommand(historyCmd, clearHistoryCmd, clearAllCmd)
}
