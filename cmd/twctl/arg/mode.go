package arg

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/TimerWarden/internal/ipc"
)

var modeCmd = &cobra.Command{
	Use:       "mode <foreground|background>",
	Short:     "Switch who advances running timers",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"foreground", "background"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *ipc.Client) error {
			if err := c.SetMode(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mode set to %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(modeCmd)
}
