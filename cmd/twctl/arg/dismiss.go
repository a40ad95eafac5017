package arg

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/TimerWarden/internal/ipc"
)

var dismissCmd = &cobra.Command{
	Use:   "dismiss",
	Short: "Dismiss the completion prompt and clear completed timers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *ipc.Client) error {
			ids, err := c.DismissCompletion()
			if err != nil {
				return err
			}
			if outputFormat == "json" {
				return printJSON(cmd.OutOrStdout(), ids)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d completed timer(s) cleared\n", len(ids))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dismissCmd)
}
