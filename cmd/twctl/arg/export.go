package arg

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/TimerWarden/internal/ipc"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export [json|yaml]",
	Short: "Export history and current timers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := "json"
		if len(args) == 1 {
			format = args[0]
		}
		return withClient(func(c *ipc.Client) error {
			doc, err := c.Export(format)
			if err != nil {
				return err
			}
			if exportOutput == "" {
				fmt.Fprintln(cmd.OutOrStdout(), doc)
				return nil
			}
			return os.WriteFile(exportOutput, []byte(doc), 0o644)
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
