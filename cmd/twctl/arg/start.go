package arg

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/TimerWarden/internal/ipc"
)

// timerAction builds the start, pause and reset commands, which act on a
// timer id or, with --category, on every timer in a category.
func timerAction(use, short, method string, single func(c *ipc.Client, id string) error) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (category == "") == (len(args) == 0) {
				return fmt.Errorf("give either a timer id or --category")
			}
			return withClient(func(c *ipc.Client) error {
				if category != "" {
					n, err := c.CategoryAction(method, category)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d timer(s) in %s affected\n", n, category)
					return nil
				}
				return single(c, args[0])
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "act on every timer in this category")
	return cmd
}

func init() {
	rootCmd.AddCommand(timerAction("start", "Start or resume a timer", "StartCategory", (*ipc.Client).StartTimer))
}
