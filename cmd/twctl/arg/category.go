package arg

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/TimerWarden/internal/ipc"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "List and edit timer categories",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *ipc.Client) error {
			names, err := c.Categories()
			if err != nil {
				return err
			}
			if outputFormat == "json" {
				return printJSON(cmd.OutOrStdout(), names)
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		})
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *ipc.Client) error {
			added, err := c.AddCategory(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %s\n", added)
			return nil
		})
	},
}

var categoryRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a category no timer uses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *ipc.Client) error {
			return c.RemoveCategory(args[0])
		})
	},
}

func init() {
	categoryCmd.AddCommand(categoryAddCmd, categoryRmCmd)
	rootCmd.AddCommand(categoryCmd)
}
