package arg

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/TimerWarden/internal/ipc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check if TimerWarden is running and show the timer summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *ipc.Client) error {
			status, err := c.GetStatus()
			if err != nil {
				return err
			}
			modal, err := c.GetModal()
			if err != nil {
				return err
			}
			if outputFormat == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{"status": status, "modal": modal})
			}
			if err := printStatus(cmd.OutOrStdout(), status); err != nil {
				return err
			}
			if modal.Visible {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is complete! Run 'twctl dismiss' to clear.\n", modal.TimerName)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
