package arg

import (
	"github.com/spf13/cobra"

	"github.com/SoarinFerret/TimerWarden/internal/ipc"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List timers grouped by category",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *ipc.Client) error {
			if listAll {
				timers, err := c.GetTimers()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), timers)
			}
			groups, err := c.ListTimers()
			if err != nil {
				return err
			}
			if outputFormat == "json" {
				return printJSON(cmd.OutOrStdout(), groups)
			}
			return printGroups(cmd.OutOrStdout(), groups)
		})
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "dump every timer, completed ones included, as JSON")
	rootCmd.AddCommand(listCmd)
}
